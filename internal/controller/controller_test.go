package controller

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/textclip/internal/encode"
	"github.com/ivlev/textclip/internal/pipeline"
	"github.com/ivlev/textclip/internal/style"
)

type stubProber struct {
	out string
	err error
}

func (s *stubProber) Encoders(ctx context.Context) (string, error) {
	return s.out, s.err
}

func supportedProber() *stubProber {
	return &stubProber{out: " V..... libvpx-vp9\n"}
}

type stubEncoder struct {
	mu        sync.Mutex
	opened    int
	frames    int
	finalized int
	aborted   int
}

func (s *stubEncoder) Open(ctx context.Context, spec encode.StreamSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	return nil
}

func (s *stubEncoder) WriteFrame(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	return nil
}

func (s *stubEncoder) Finalize() (*encode.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized++
	return &encode.Artifact{Data: []byte("clip"), MIME: "video/webm; codecs=vp9", Ext: ".webm"}, nil
}

func (s *stubEncoder) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted++
}

func (s *stubEncoder) counts() (opened, frames, finalized, aborted int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.frames, s.finalized, s.aborted
}

func newTestController(t *testing.T, enc pipeline.Encoder, p encode.Prober) *Controller {
	t.Helper()
	c, err := New(Options{Prober: p, Encoder: enc, Width: 160, Height: 90})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestEndToEndGeneration(t *testing.T) {
	enc := &stubEncoder{}
	c := newTestController(t, enc, supportedProber())

	req := pipeline.Request{
		Script:   "One short line. Another short line. A third one.",
		Duration: 200 * time.Millisecond,
		Style:    style.Default(),
	}
	if err := c.Start(req); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.Wait()

	st := c.Status()
	if st.State != StateIdle {
		t.Errorf("Expected idle after completion, got %s", st.State)
	}
	if st.Err != nil {
		t.Errorf("Unexpected session error: %v", st.Err)
	}
	if st.Artifact == nil || st.Artifact.MIME != "video/webm; codecs=vp9" {
		t.Fatalf("Expected negotiated artifact, got %+v", st.Artifact)
	}
	if st.Progress != 100 {
		t.Errorf("Expected final progress 100, got %d", st.Progress)
	}

	opened, _, finalized, _ := enc.counts()
	if opened != 1 || finalized != 1 {
		t.Errorf("Expected exactly one processing pass: opened=%d finalized=%d", opened, finalized)
	}
}

func TestStartWhileActiveIsNoOp(t *testing.T) {
	enc := &stubEncoder{}
	c := newTestController(t, enc, supportedProber())

	req := pipeline.Request{Script: "hello", Duration: time.Second, Style: style.Default()}
	if err := c.Start(req); err != nil {
		t.Fatalf("First start failed: %v", err)
	}

	if err := c.Start(req); !errors.Is(err, ErrSessionActive) {
		t.Errorf("Expected ErrSessionActive, got %v", err)
	}

	c.Cancel()
	c.Wait()

	opened, _, _, _ := enc.counts()
	if opened != 1 {
		t.Errorf("Expected one session, got %d opens", opened)
	}
	// The conflict must not be recorded as the session error.
	if err := c.Status().Err; errors.Is(err, ErrSessionActive) {
		t.Errorf("Conflict leaked into last error: %v", err)
	}
}

func TestUnsupportedCapabilityRejectedBeforeRecording(t *testing.T) {
	enc := &stubEncoder{}
	c := newTestController(t, enc, &stubProber{out: "no video encoders here"})

	err := c.Start(pipeline.Request{Script: "hello", Duration: time.Second, Style: style.Default()})
	if !errors.Is(err, encode.ErrUnsupportedCapability) {
		t.Fatalf("Expected ErrUnsupportedCapability, got %v", err)
	}

	st := c.Status()
	if st.State != StateIdle {
		t.Errorf("Expected idle, got %s", st.State)
	}
	if !errors.Is(st.Err, encode.ErrUnsupportedCapability) {
		t.Errorf("Expected capability error recorded, got %v", st.Err)
	}

	opened, _, _, _ := enc.counts()
	if opened != 0 {
		t.Errorf("Recording must not start without a capability, got %d opens", opened)
	}
}

func TestCancelReleasesResourcesBeforeIdle(t *testing.T) {
	enc := &stubEncoder{}
	c := newTestController(t, enc, supportedProber())

	if err := c.Start(pipeline.Request{Script: "hello", Duration: 10 * time.Second, Style: style.Default()}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let a few frames through before canceling.
	time.Sleep(80 * time.Millisecond)
	c.Cancel()

	_, frames, finalized, aborted := enc.counts()
	if frames == 0 {
		t.Fatal("Expected captured frames before cancel")
	}
	if finalized+aborted == 0 {
		t.Error("Capture resource not released by the time Cancel returned")
	}
	if got := c.Status().State; got != StateIdle {
		t.Errorf("Expected idle after cancel, got %s", got)
	}
}

func TestArtifactSupersededOnNextRun(t *testing.T) {
	enc := &stubEncoder{}
	c := newTestController(t, enc, supportedProber())

	req := pipeline.Request{Script: "first", Duration: 100 * time.Millisecond, Style: style.Default()}
	if err := c.Start(req); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.Wait()
	first := c.Status().Artifact

	if err := c.Start(req); err != nil {
		t.Fatalf("Second start failed: %v", err)
	}
	c.Wait()
	second := c.Status().Artifact

	if second == nil || second == first {
		t.Error("Expected a fresh artifact on the second run")
	}
	if first.Data != nil {
		t.Error("Expected superseded artifact to be released")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:       "idle",
		StateRecording:  "recording",
		StateProcessing: "processing",
	}
	for st, want := range cases {
		if st.String() != want {
			t.Errorf("State(%d).String(): expected %q, got %q", st, want, st.String())
		}
	}
}
