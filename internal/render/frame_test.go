package render

import (
	"bytes"
	"image"
	"math"
	"testing"

	"github.com/ivlev/textclip/internal/style"
)

// testOptions returns small-frame options so pixel loops stay cheap.
func testOptions(t *testing.T) Options {
	t.Helper()
	surface, err := NewSurface()
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	return Options{Width: 320, Height: 180, Surface: surface}
}

func TestFrameDeterministic(t *testing.T) {
	opts := testOptions(t)
	lines := []string{"First line", "Second line", "Third line"}
	st := style.Default()

	for _, p := range []float64{0, 0.33, 0.5, 0.97, 1} {
		a := Frame(p, lines, st, opts)
		b := Frame(p, lines, st, opts)
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("Frame(%f) not deterministic", p)
		}
	}
}

func TestFrameIntoOverwritesReusedBuffer(t *testing.T) {
	opts := testOptions(t)
	lines := []string{"Reuse me"}
	st := style.Default()

	fresh := Frame(0.6, lines, st, opts)

	dirty := image.NewRGBA(fresh.Rect)
	for i := range dirty.Pix {
		dirty.Pix[i] = 0xAB
	}
	FrameInto(dirty, 0.6, lines, st, opts)

	if !bytes.Equal(fresh.Pix, dirty.Pix) {
		t.Error("FrameInto on a dirty buffer differs from a fresh render")
	}
}

func TestFrameTextRevealBoundaries(t *testing.T) {
	opts := testOptions(t)
	lines := []string{"First line", "Second line", "Third line"}
	st := style.Default()

	// At progress 0 no line has positive local progress, so the frame
	// must be identical to one rendered with no text at all.
	withText := Frame(0, lines, st, opts)
	noText := Frame(0, nil, st, opts)
	if !bytes.Equal(withText.Pix, noText.Pix) {
		t.Error("Frame(0): text visible before segment 0 starts")
	}

	// At progress 1 the last line is fully opaque: text must change
	// the composite.
	withText = Frame(1, lines, st, opts)
	noText = Frame(1, nil, st, opts)
	if bytes.Equal(withText.Pix, noText.Pix) {
		t.Error("Frame(1): text layer missing")
	}
}

func TestFrameProgressTrackFill(t *testing.T) {
	opts := testOptions(t)
	st := style.Default()

	// Sample the middle of the track near its right end. It is only
	// covered by the fill at progress 1.
	w, h := opts.Width, opts.Height
	trackW := w * 6 / 10
	x := (w-trackW)/2 + trackW - 2
	y := h*86/100 + 1

	empty := Frame(0, nil, st, opts)
	full := Frame(1, nil, st, opts)

	le := luma(empty, x, y)
	lf := luma(full, x, y)
	if lf <= le {
		t.Errorf("Expected filled track brighter at progress 1: %f vs %f", lf, le)
	}
}

func luma(img *image.RGBA, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

func TestEaseInOutCubic(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
	}
	for _, c := range cases {
		got := easeInOutCubic(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("easeInOutCubic(%f): expected %f, got %f", c.in, c.want, got)
		}
	}
	if easeInOutCubic(0.25) >= 0.25 {
		t.Error("Expected slow start below linear")
	}
	if easeInOutCubic(0.75) <= 0.75 {
		t.Error("Expected fast finish above linear")
	}
}

func TestLineWindow(t *testing.T) {
	// Three lines: line 1 owns [1/3, 2/3).
	if lw := lineWindow(0, 1, 3); lw > 0 {
		t.Errorf("Line 1 at progress 0: expected non-positive local progress, got %f", lw)
	}
	if lw := lineWindow(0.5, 1, 3); lw <= 0 || lw >= 1 {
		t.Errorf("Line 1 at progress 0.5: expected mid-reveal, got %f", lw)
	}
	if lw := lineWindow(1, 2, 3); lw < 1 {
		t.Errorf("Last line at progress 1: expected fully revealed, got %f", lw)
	}
}

func TestBadge(t *testing.T) {
	badge, err := Badge("https://example.com/clip/abc", 720)
	if err != nil {
		t.Fatalf("Badge failed: %v", err)
	}
	if badge.Bounds().Dx() != 120 {
		t.Errorf("Expected 120px badge, got %d", badge.Bounds().Dx())
	}
}

func TestHSLToRGB(t *testing.T) {
	cases := []struct {
		h, s, l float64
		r, g, b uint8
	}{
		{0, 1, 0.5, 255, 0, 0},
		{120, 1, 0.5, 0, 255, 0},
		{240, 1, 0.5, 0, 0, 255},
		{0, 0, 1, 255, 255, 255},
		{-120, 1, 0.5, 0, 0, 255}, // negative hue wraps
	}
	for _, c := range cases {
		r, g, b := hslToRGB(c.h, c.s, c.l)
		if r != c.r || g != c.g || b != c.b {
			t.Errorf("hslToRGB(%f,%f,%f): expected (%d,%d,%d), got (%d,%d,%d)",
				c.h, c.s, c.l, c.r, c.g, c.b, r, g, b)
		}
	}
}
