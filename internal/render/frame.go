package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ivlev/textclip/internal/style"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	// DefaultWidth and DefaultHeight are the fixed clip resolution.
	DefaultWidth  = 1280
	DefaultHeight = 720

	trailCount    = 12
	trailDelta    = 0.015
	fontScale     = 0.09 // font size as a fraction of frame height
	lineHeightMul = 1.18
)

// Frame composites one clip frame for the given progress. Layers are
// drawn bottom-up: gradient, wave overlay, radial highlight, motion
// trails, vignette, text, progress track, share badge.
func Frame(progress float64, lines []string, st style.Preset, opts Options) *image.RGBA {
	w, h := opts.dims()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	FrameInto(img, progress, lines, st, opts)
	return img
}

func (o Options) dims() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// FrameInto renders into a caller-owned buffer, typically recycled
// between ticks. Every pixel of dst is overwritten, so a reused buffer
// yields the same image as a fresh one.
func FrameInto(img *image.RGBA, progress float64, lines []string, st style.Preset, opts Options) {
	progress = clamp01(progress)
	wave := math.Sin(2 * math.Pi * progress)

	primary := math.Mod(st.BaseHue+progress*st.HueCycle, 360)
	secondary := math.Mod(primary+st.HueCycle*0.6, 360)

	drawGradient(img, primary, secondary)
	drawWaveOverlay(img, primary, wave, st.OverlayStrength)
	drawHighlight(img, wave)
	drawTrails(img, progress)
	drawVignette(img)
	drawText(img, progress, lines, opts.Surface)
	drawProgressTrack(img, progress)
	drawBadge(img, progress, opts.Badge)
}

// drawGradient fills the frame with a diagonal linear gradient between
// the primary and secondary hues. The color only depends on x+y, so a
// per-diagonal lookup table covers every pixel.
func drawGradient(img *image.RGBA, primary, secondary float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()

	pr, pg, pb := hslToRGB(primary, 0.72, 0.45)
	sr, sg, sb := hslToRGB(secondary, 0.68, 0.35)

	steps := w + h - 1
	lut := make([][3]uint8, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		lut[i] = [3]uint8{
			uint8(float64(pr)*(1-t) + float64(sr)*t),
			uint8(float64(pg)*(1-t) + float64(sg)*t),
			uint8(float64(pb)*(1-t) + float64(sb)*t),
		}
	}

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			c := lut[x+y]
			p := row[x*4 : x*4+4 : x*4+4]
			p[0], p[1], p[2], p[3] = c[0], c[1], c[2], 255
		}
	}
}

// drawWaveOverlay fills one rotated ellipse whose radii and rotation
// ride the progress sine, simulating slow luminous motion.
func drawWaveOverlay(img *image.RGBA, primary, wave, strength float64) {
	if strength <= 0 {
		return
	}
	w, h := float64(img.Rect.Dx()), float64(img.Rect.Dy())

	cx, cy := w*0.5, h*0.46
	rx := w * (0.34 + 0.10*wave)
	ry := h * (0.22 + 0.06*wave)
	theta := 0.4 * wave
	sin, cos := math.Sin(-theta), math.Cos(-theta)

	er, eg, eb := hslToRGB(primary+40, 0.85, 0.72)

	// Bounding box wide enough for any rotation.
	maxR := math.Max(rx, ry)
	x0, x1 := int(cx-maxR), int(math.Ceil(cx+maxR))
	y0, y1 := int(cy-maxR), int(math.Ceil(cy+maxR))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			ux := dx*cos - dy*sin
			uy := dx*sin + dy*cos
			if (ux*ux)/(rx*rx)+(uy*uy)/(ry*ry) <= 1 {
				blendPx(img, x, y, er, eg, eb, strength)
			}
		}
	}
}

// drawHighlight composites a soft radial glow with additive blending,
// centered slightly above frame center with a small vertical
// oscillation.
func drawHighlight(img *image.RGBA, wave float64) {
	w, h := float64(img.Rect.Dx()), float64(img.Rect.Dy())

	cx := w * 0.5
	cy := h * (0.38 + 0.02*wave)
	radius := h * 0.55

	x0, x1 := int(cx-radius), int(math.Ceil(cx+radius))
	y0, y1 := int(cy-radius), int(math.Ceil(cy+radius))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			d := math.Sqrt(dx*dx + dy*dy)
			if d >= radius {
				continue
			}
			f := 1 - d/radius
			addPx(img, x, y, 255, 240, 220, 0.35*f*f)
		}
	}
}

// drawTrails strokes a fixed count of curved arcs, each lagging the
// current progress by a small delta with linearly decaying alpha.
func drawTrails(img *image.RGBA, progress float64) {
	w, h := float64(img.Rect.Dx()), float64(img.Rect.Dy())
	samples := img.Rect.Dx() / 6
	if samples < 8 {
		samples = 8
	}

	for i := 0; i < trailCount; i++ {
		tp := clamp01(progress - trailDelta*float64(i))
		alpha := 0.30 * (1 - float64(i)/trailCount)

		for s := 0; s <= samples; s++ {
			u := float64(s) / float64(samples)
			px := w * (0.12 + 0.76*u)
			py := h * (0.52 - 0.16*math.Sin(u*math.Pi+2*math.Pi*tp))
			stampDot(img, int(px), int(py), alpha)
		}
	}
}

// stampDot blends a small white disc, the stroke "brush".
func stampDot(img *image.RGBA, cx, cy int, alpha float64) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dx*dx+dy*dy > 4 {
				continue
			}
			blendPx(img, cx+dx, cy+dy, 255, 255, 255, alpha)
		}
	}
}

// drawVignette darkens the bottom fifth of the frame for legibility.
func drawVignette(img *image.RGBA) {
	h := img.Rect.Dy()
	band := image.Rect(0, h*4/5, img.Rect.Dx(), h)
	fillRect(img, band, 10, 12, 18, 0.45)
}

// drawText reveals each line within its own temporal segment of the
// run, with eased opacity and a slight scale pulse. The block is
// vertically centered.
func drawText(img *image.RGBA, progress float64, lines []string, surface *Surface) {
	if surface == nil || len(lines) == 0 {
		return
	}

	w, h := float64(img.Rect.Dx()), float64(img.Rect.Dy())
	fontSize := fontScale * h
	lineHeight := lineHeightMul * fontSize
	blockTop := (h - lineHeight*float64(len(lines))) / 2

	for i, line := range lines {
		local := lineWindow(progress, i, len(lines))
		if local <= 0 {
			continue
		}
		alpha := easeInOutCubic(clamp01(local))

		pulse := 1 + 0.015*math.Sin(2*math.Pi*progress+float64(i))
		face, err := surface.face(fontSize * pulse)
		if err != nil {
			continue
		}

		drawer := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: uint8(math.Round(alpha * 255))}),
			Face: face,
		}

		adv := drawer.MeasureString(line)
		baseline := blockTop + lineHeight*float64(i) + float64(face.Metrics().Ascent.Round())
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(int(w/2)) - adv/2,
			Y: fixed.I(int(math.Round(baseline))),
		}
		drawer.DrawString(line)
		face.Close()
	}
}

// drawProgressTrack renders the centered progress bar above the
// vignette band.
func drawProgressTrack(img *image.RGBA, progress float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()

	trackW := w * 6 / 10
	x0 := (w - trackW) / 2
	y0 := h * 86 / 100
	thickness := h / 120
	if thickness < 4 {
		thickness = 4
	}

	fillRect(img, image.Rect(x0, y0, x0+trackW, y0+thickness), 255, 255, 255, 0.25)

	fillW := int(math.Round(float64(trackW) * progress))
	fillRect(img, image.Rect(x0, y0, x0+fillW, y0+thickness), 255, 255, 255, 0.90)
}

// badgeReveal is the progress at which the share badge starts fading in.
const badgeReveal = 0.85

func drawBadge(img *image.RGBA, progress float64, badge image.Image) {
	if badge == nil || progress < badgeReveal {
		return
	}
	alpha := easeInOutCubic(clamp01((progress - badgeReveal) / 0.1))

	w, h := img.Rect.Dx(), img.Rect.Dy()
	bw := badge.Bounds().Dx()
	bh := badge.Bounds().Dy()
	margin := h / 24

	dst := image.Rect(w-bw-margin, h-bh-margin, w-margin, h-margin)
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	draw.DrawMask(img, dst, badge, badge.Bounds().Min, mask, image.Point{}, draw.Over)
}
