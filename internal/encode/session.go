package encode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// StreamSpec fixes the encode parameters for one session.
type StreamSpec struct {
	Width, Height int
	FPS           int
	Capability    Capability
	Threads       int
	Quality       int // CRF; 0 selects a per-encoder default
}

// EncoderError is a mid-session encode or flush failure, carrying the
// underlying cause and the collected ffmpeg output.
type EncoderError struct {
	Op     string
	Output string
	Err    error
}

func (e *EncoderError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("encoder %s: %v\nffmpeg: %s", e.Op, e.Err, e.Output)
	}
	return fmt.Sprintf("encoder %s: %v", e.Op, e.Err)
}

func (e *EncoderError) Unwrap() error { return e.Err }

// DefaultFlushTimeout bounds how long Finalize waits for the encoder
// to drain the frame stream and close the container.
const DefaultFlushTimeout = 30 * time.Second

// FFmpegSession streams raw RGBA frames into an ffmpeg process over
// stdin and collects the finished container file. A session instance
// is reusable: each Open starts a fresh process and temp directory.
type FFmpegSession struct {
	spec    StreamSpec
	tmpDir  string
	outPath string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	log     bytes.Buffer
	open    bool

	// FlushTimeout overrides DefaultFlushTimeout when positive.
	FlushTimeout time.Duration
}

func NewFFmpegSession() *FFmpegSession {
	return &FFmpegSession{}
}

// Open starts the ffmpeg process for one capture session.
func (s *FFmpegSession) Open(ctx context.Context, spec StreamSpec) error {
	if s.open {
		return &EncoderError{Op: "open", Err: fmt.Errorf("session already open")}
	}
	if err := ctx.Err(); err != nil {
		return &EncoderError{Op: "open", Err: err}
	}

	tmpDir, err := os.MkdirTemp("", "textclip_")
	if err != nil {
		return &EncoderError{Op: "open", Err: err}
	}

	s.spec = spec
	s.tmpDir = tmpDir
	s.outPath = filepath.Join(tmpDir, "clip"+spec.Capability.Ext)
	s.log.Reset()

	// The process is deliberately not bound to ctx: a canceled capture
	// must still be able to flush the frames already written, so the
	// session owns the process lifetime. Abandoned sessions are torn
	// down through Abort.
	cmd := exec.Command("ffmpeg", buildArgs(spec, s.outPath)...)
	cmd.Stdout = &s.log
	cmd.Stderr = &s.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.RemoveAll(tmpDir)
		return &EncoderError{Op: "open", Err: err}
	}

	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return &EncoderError{Op: "open", Err: err}
	}

	s.cmd = cmd
	s.stdin = stdin
	s.open = true
	return nil
}

// WriteFrame streams one frame as raw RGBA.
func (s *FFmpegSession) WriteFrame(img *image.RGBA) error {
	if !s.open {
		return &EncoderError{Op: "write", Err: fmt.Errorf("session not open")}
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return &EncoderError{Op: "write", Output: s.log.String(), Err: err}
	}
	return nil
}

// Finalize closes the frame stream, waits for ffmpeg to flush the
// container, and returns the artifact. The temp directory is removed
// on every path.
func (s *FFmpegSession) Finalize() (*Artifact, error) {
	if !s.open {
		return nil, &EncoderError{Op: "finalize", Err: fmt.Errorf("session not open")}
	}
	defer s.cleanup()

	s.stdin.Close()

	timeout := s.FlushTimeout
	if timeout <= 0 {
		timeout = DefaultFlushTimeout
	}
	waitErr := make(chan error, 1)
	go func() { waitErr <- s.cmd.Wait() }()
	select {
	case err := <-waitErr:
		if err != nil {
			return nil, &EncoderError{Op: "finalize", Output: s.log.String(), Err: err}
		}
	case <-time.After(timeout):
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		<-waitErr
		return nil, &EncoderError{Op: "finalize", Output: s.log.String(), Err: fmt.Errorf("no flush within %s", timeout)}
	}

	data, err := os.ReadFile(s.outPath)
	if err != nil {
		return nil, &EncoderError{Op: "finalize", Err: err}
	}

	return &Artifact{
		Data: data,
		MIME: s.spec.Capability.MIME,
		Ext:  s.spec.Capability.Ext,
	}, nil
}

// Abort kills the encode process and discards the partial output.
// Safe to call on an unopened session.
func (s *FFmpegSession) Abort() {
	if !s.open {
		return
	}
	s.stdin.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	s.cleanup()
}

func (s *FFmpegSession) cleanup() {
	os.RemoveAll(s.tmpDir)
	s.open = false
	s.cmd = nil
	s.stdin = nil
}

func buildArgs(spec StreamSpec, outPath string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-framerate", fmt.Sprintf("%d", spec.FPS),
		"-i", "-",
		"-r", fmt.Sprintf("%d", spec.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", spec.Capability.Encoder,
	}

	if spec.Threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", spec.Threads))
	}

	quality := spec.Quality
	switch spec.Capability.Encoder {
	case "libvpx-vp9":
		if quality == 0 {
			quality = 32
		}
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-b:v", "0", "-deadline", "realtime")
	case "libvpx":
		if quality == 0 {
			quality = 10
		}
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-b:v", "2M", "-deadline", "realtime")
	default: // libx264
		if quality == 0 {
			quality = 23
		}
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "veryfast")
	}

	args = append(args, "-f", spec.Capability.Container, outPath)
	return args
}

// writeRawRGBA normalizes the image to a tightly packed RGBA buffer
// and writes its pixels.
func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min.X != 0 || bounds.Min.Y != 0 {
		tight := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(tight, tight.Rect, img, bounds.Min, draw.Src)
		img = tight
	}
	_, err := w.Write(img.Pix)
	return err
}
