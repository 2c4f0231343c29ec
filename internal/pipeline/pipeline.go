// Package pipeline drives the frame renderer against a wall clock,
// streams frames into an encode session, and assembles the artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/textclip/internal/encode"
	"github.com/ivlev/textclip/internal/render"
	"github.com/ivlev/textclip/internal/script"
	"github.com/ivlev/textclip/internal/style"
	"github.com/ivlev/textclip/internal/system"
)

// Encoder is the capture/encode session the pipeline feeds. The ffmpeg
// implementation lives in internal/encode; tests substitute a stub.
type Encoder interface {
	Open(ctx context.Context, spec encode.StreamSpec) error
	WriteFrame(img *image.RGBA) error
	Finalize() (*encode.Artifact, error)
	Abort()
}

// Request describes one generation run.
type Request struct {
	Script    string
	Duration  time.Duration
	Style     style.Preset
	ShareLink string // optional; rendered as a QR badge in the closing frames
}

// Options wires the pipeline's collaborators and callbacks.
type Options struct {
	Encoder Encoder
	Surface *render.Surface

	Width  int
	Height int
	FPS    int

	// Quality is the CRF handed to the encoder; 0 keeps the
	// per-encoder default.
	Quality int

	// Tick is the drive-loop interval, the fastest scheduling rate the
	// environment offers. Defaults to the frame interval at FPS.
	Tick time.Duration

	// OnProgress receives the monotonically non-decreasing percentage.
	OnProgress func(pct int)

	// OnProcessing fires once when capture ends and the encoder flush
	// begins.
	OnProcessing func()

	// Now is the wall clock, injectable for tests.
	Now func() time.Time
}

// Pipeline produces one clip at a time. It is not safe for concurrent
// Run calls; the controller serializes sessions.
type Pipeline struct {
	opts Options
}

func New(opts Options) *Pipeline {
	if opts.Width <= 0 {
		opts.Width = render.DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = render.DefaultHeight
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second / time.Duration(opts.FPS)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{opts: opts}
}

// session is the ephemeral per-run state. It is owned exclusively by
// the drive loop; observers only see it through the callbacks.
type session struct {
	id       string
	duration time.Duration
	start    time.Time

	lastNorm float64 // last submitted progress; submissions never go backwards
	maxPct   int     // running maximum of reported percentage
	frames   int
}

// Run performs one full generation: negotiate nothing (the capability
// is decided by the caller), open the encoder, drive frames until
// progress reaches 1, then flush. On cancellation after at least one
// captured frame the session still flushes what it has; otherwise it
// discards cleanly. The encode session is torn down on every exit
// path.
func (p *Pipeline) Run(ctx context.Context, req Request, capability encode.Capability) (*encode.Artifact, error) {
	if req.Duration <= 0 {
		return nil, fmt.Errorf("invalid duration %v", req.Duration)
	}

	lines := script.Segment(req.Script)

	opts := render.Options{
		Width:   p.opts.Width,
		Height:  p.opts.Height,
		Surface: p.opts.Surface,
	}
	if req.ShareLink != "" {
		badge, err := render.Badge(req.ShareLink, p.opts.Height)
		if err != nil {
			log.Printf("[!] Share badge skipped: %v", err)
		} else {
			opts.Badge = badge
		}
	}

	system.CheckMemory()

	spec := encode.StreamSpec{
		Width:      p.opts.Width,
		Height:     p.opts.Height,
		FPS:        p.opts.FPS,
		Capability: capability,
		Threads:    system.EncoderThreads(),
		Quality:    p.opts.Quality,
	}
	if err := p.opts.Encoder.Open(ctx, spec); err != nil {
		return nil, err
	}

	sess := &session{
		id:       uuid.New().String(),
		duration: req.Duration,
	}
	log.Printf("[*] Session %s: %s/%s, %.0fs @ %dfps", sess.id, capability.Name, capability.Container,
		req.Duration.Seconds(), p.opts.FPS)

	finalized := false
	defer func() {
		if !finalized {
			p.opts.Encoder.Abort()
		}
	}()

	g, driveCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.drive(driveCtx, sess, lines, req.Style, opts)
	})
	err := g.Wait()

	switch {
	case err == nil:
		// Natural completion: the progress-1 frame is already written.
	case errors.Is(err, context.Canceled) && sess.frames > 0:
		// Canceled mid-recording: flush what was captured.
		log.Printf("[*] Session %s canceled after %d frames, flushing", sess.id, sess.frames)
	default:
		return nil, err
	}

	if p.opts.OnProcessing != nil {
		p.opts.OnProcessing()
	}

	art, err := p.opts.Encoder.Finalize()
	finalized = true
	if err != nil {
		return nil, err
	}
	log.Printf("[>] Session %s: artifact ready (%d bytes, %s)", sess.id, len(art.Data), art.MIME)
	return art, nil
}

// drive invokes step on every scheduling tick until the run completes
// or the context is canceled.
func (p *Pipeline) drive(ctx context.Context, sess *session, lines []string, st style.Preset, opts render.Options) error {
	ticker := time.NewTicker(p.opts.Tick)
	defer ticker.Stop()

	sess.start = p.opts.Now()
	bounds := image.Rect(0, 0, p.opts.Width, p.opts.Height)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			buf := system.GetImage(bounds)
			done, err := p.step(sess, p.opts.Now().Sub(sess.start), lines, st, opts, buf)
			system.PutImage(buf)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// step is the scheduling-agnostic driver: given an elapsed wall-clock
// sample it renders and submits exactly one frame. Frames are
// submitted in non-decreasing normalized order even when successive
// samples jitter backwards.
func (p *Pipeline) step(sess *session, elapsed time.Duration, lines []string, st style.Preset, opts render.Options, buf *image.RGBA) (bool, error) {
	norm := clamp01(elapsed.Seconds() / sess.duration.Seconds())
	if norm < sess.lastNorm {
		norm = sess.lastNorm
	}
	sess.lastNorm = norm

	render.FrameInto(buf, norm, lines, st, opts)
	if err := p.opts.Encoder.WriteFrame(buf); err != nil {
		return false, err
	}
	sess.frames++

	p.report(sess, norm)
	return norm >= 1, nil
}

// report converts normalized progress to a percentage, kept as a
// running maximum so observers never see it decrease.
func (p *Pipeline) report(sess *session, norm float64) {
	pct := int(math.Round(norm * 100))
	if pct < sess.maxPct {
		pct = sess.maxPct
	}
	sess.maxPct = pct

	if p.opts.OnProgress != nil {
		p.opts.OnProgress(pct)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
