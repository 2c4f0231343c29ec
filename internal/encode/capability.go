// Package encode negotiates a container/codec pair and drives the
// ffmpeg encode session that turns rendered frames into a clip.
package encode

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
)

// ErrUnsupportedCapability means no entry of the container/codec
// preference list is supported by the host. Callers must check
// capabilities before starting a generation.
var ErrUnsupportedCapability = errors.New("no supported container/codec pair")

// Capability is one negotiable container/codec pair.
type Capability struct {
	Name      string // short label, e.g. "vp9"
	Encoder   string // ffmpeg encoder name
	Container string // ffmpeg container format
	MIME      string // declared mime/container type of the artifact
	Ext       string // suggested filename extension
}

// Preferences is the ordered capability list, most modern first, with
// a baseline fallback last.
var Preferences = []Capability{
	{Name: "vp9", Encoder: "libvpx-vp9", Container: "webm", MIME: "video/webm; codecs=vp9", Ext: ".webm"},
	{Name: "vp8", Encoder: "libvpx", Container: "webm", MIME: "video/webm; codecs=vp8", Ext: ".webm"},
	{Name: "h264", Encoder: "libx264", Container: "mp4", MIME: "video/mp4; codecs=avc1.42E01E", Ext: ".mp4"},
}

// Prober reports which encoders the host supports. It is injectable so
// negotiation is testable without ffmpeg.
type Prober interface {
	Encoders(ctx context.Context) (string, error)
}

// FFmpegProber asks ffmpeg for its encoder list. The probe runs once
// and is cached for the process lifetime.
type FFmpegProber struct {
	once sync.Once
	out  string
	err  error
}

func (p *FFmpegProber) Encoders(ctx context.Context) (string, error) {
	p.once.Do(func() {
		out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		p.out, p.err = string(out), err
	})
	return p.out, p.err
}

// Negotiate returns the first supported capability from Preferences,
// or ErrUnsupportedCapability when none is available (including when
// ffmpeg itself is missing).
func Negotiate(ctx context.Context, p Prober) (Capability, error) {
	out, err := p.Encoders(ctx)
	if err != nil {
		return Capability{}, ErrUnsupportedCapability
	}
	for _, c := range Preferences {
		if strings.Contains(out, c.Encoder) {
			return c, nil
		}
	}
	return Capability{}, ErrUnsupportedCapability
}
