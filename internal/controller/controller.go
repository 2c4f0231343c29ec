// Package controller exposes clip generation as a start/cancel state
// machine with observable progress.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/ivlev/textclip/internal/encode"
	"github.com/ivlev/textclip/internal/pipeline"
	"github.com/ivlev/textclip/internal/render"
)

// ErrSessionActive is returned when Start is requested while a session
// is running. It is a silent conflict: the request is a no-op and is
// not recorded as the session error.
var ErrSessionActive = errors.New("a generation session is already active")

// State is the controller's phase within a run.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	default:
		return "idle"
	}
}

// Status is a snapshot of the observables: current state, integer
// progress, the last error and the last artifact.
type Status struct {
	State    State
	Progress int
	Err      error
	Artifact *encode.Artifact
}

// Options wires the controller's collaborators.
type Options struct {
	// Prober answers the capability query. Defaults to the ffmpeg
	// prober.
	Prober encode.Prober

	// Encoder is the capture/encode session implementation. Defaults
	// to a reusable ffmpeg session.
	Encoder pipeline.Encoder

	Width   int
	Height  int
	FPS     int
	Quality int
}

// Controller runs at most one generation session at a time.
type Controller struct {
	prober encode.Prober
	pipe   *pipeline.Pipeline

	mu       sync.Mutex
	state    State
	progress int
	lastErr  error
	artifact *encode.Artifact
	cancel   context.CancelFunc
	done     chan struct{}
}

// New builds a controller, acquiring the rendering surface up front.
// Surface acquisition failure surfaces as render.ErrSurfaceUnavailable.
func New(opts Options) (*Controller, error) {
	surface, err := render.NewSurface()
	if err != nil {
		return nil, err
	}

	if opts.Prober == nil {
		opts.Prober = &encode.FFmpegProber{}
	}
	if opts.Encoder == nil {
		opts.Encoder = encode.NewFFmpegSession()
	}

	c := &Controller{prober: opts.Prober}
	c.pipe = pipeline.New(pipeline.Options{
		Encoder:      opts.Encoder,
		Surface:      surface,
		Width:        opts.Width,
		Height:       opts.Height,
		FPS:          opts.FPS,
		Quality:      opts.Quality,
		OnProgress:   c.setProgress,
		OnProcessing: c.toProcessing,
	})
	return c, nil
}

// Capability answers the external capability query: the negotiated
// container/codec pair, or ErrUnsupportedCapability.
func (c *Controller) Capability(ctx context.Context) (encode.Capability, error) {
	return encode.Negotiate(ctx, c.prober)
}

// Start begins a generation session. It is a no-op returning
// ErrSessionActive when a session is already running. A failed
// capability negotiation is reported immediately without entering
// the recording state.
func (c *Controller) Start(req pipeline.Request) error {
	capability, err := encode.Negotiate(context.Background(), c.prober)
	if err != nil {
		c.mu.Lock()
		if c.state == StateIdle {
			c.lastErr = err
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.state = StateRecording
	c.progress = 0
	c.lastErr = nil
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.run(ctx, req, capability, done)
	return nil
}

func (c *Controller) run(ctx context.Context, req pipeline.Request, capability encode.Capability, done chan struct{}) {
	art, err := c.pipe.Run(ctx, req, capability)

	c.mu.Lock()
	if err != nil {
		// The previous artifact stays; a partial one is never exposed.
		c.lastErr = err
	} else {
		c.artifact.Release()
		c.artifact = art
	}
	c.state = StateIdle
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	close(done)
}

// Cancel stops the active session, if any, and waits for its resources
// to be released before returning.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the active session reaches a terminal state.
// Returns immediately when idle.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Status returns a snapshot of the observables.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:    c.state,
		Progress: c.progress,
		Err:      c.lastErr,
		Artifact: c.artifact,
	}
}

func (c *Controller) setProgress(pct int) {
	c.mu.Lock()
	if pct > c.progress {
		c.progress = pct
	}
	c.mu.Unlock()
}

func (c *Controller) toProcessing() {
	c.mu.Lock()
	if c.state == StateRecording {
		c.state = StateProcessing
	}
	c.mu.Unlock()
}
