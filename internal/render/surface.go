// Package render synthesizes the animated frames of a clip.
//
// Frame is a pure function of (progress, lines, preset): identical
// inputs always produce an identical image. Progress is the only
// temporal input; there is no hidden clock or random source.
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrSurfaceUnavailable signals that the drawing surface could not be
// constructed. Frame itself has no error conditions; the surface must
// be acquired at pipeline setup.
var ErrSurfaceUnavailable = errors.New("render surface unavailable")

// Surface holds the resources Frame needs but must not construct
// itself: a parsed font. Build one per process at pipeline setup.
type Surface struct {
	font *sfnt.Font
}

// NewSurface parses the embedded typeface. Failure is reported as
// ErrSurfaceUnavailable.
func NewSurface() (*Surface, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font: %v", ErrSurfaceUnavailable, err)
	}
	return &Surface{font: f}, nil
}

// face builds a font.Face for the given pixel size. Sizes vary per
// frame because of the text scale pulse.
func (s *Surface) face(size float64) (font.Face, error) {
	return opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Options carries the per-session rendering inputs that are fixed for
// the whole run: dimensions, the surface, and the optional share badge.
type Options struct {
	Width   int
	Height  int
	Surface *Surface

	// Badge, when set, is composited into the bottom-right corner of
	// the closing frames. Precomputed once per session so Frame stays
	// deterministic.
	Badge image.Image
}

// Badge renders a share-link QR code sized for a frame of the given
// height.
func Badge(link string, frameHeight int) (image.Image, error) {
	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("share badge: %w", err)
	}
	return q.Image(frameHeight / 6), nil
}
