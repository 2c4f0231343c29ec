package render

import (
	"image"
	"math"
)

// hslToRGB converts hue (degrees), saturation and lightness (0-1) to
// 8-bit RGB.
func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8(math.Round((r + m) * 255)),
		uint8(math.Round((g + m) * 255)),
		uint8(math.Round((b + m) * 255))
}

// blendPx does a source-over blend of one pixel. The canvas is always
// opaque (the gradient fills it first), so the result stays opaque.
func blendPx(img *image.RGBA, x, y int, r, g, b uint8, a float64) {
	if a <= 0 || !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return
	}
	if a > 1 {
		a = 1
	}
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	p[0] = uint8(float64(p[0])*(1-a) + float64(r)*a)
	p[1] = uint8(float64(p[1])*(1-a) + float64(g)*a)
	p[2] = uint8(float64(p[2])*(1-a) + float64(b)*a)
	p[3] = 255
}

// addPx does an additive blend of one pixel, clamped at white.
func addPx(img *image.RGBA, x, y int, r, g, b uint8, f float64) {
	if f <= 0 || !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return
	}
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	p[0] = addClamp(p[0], float64(r)*f)
	p[1] = addClamp(p[1], float64(g)*f)
	p[2] = addClamp(p[2], float64(b)*f)
}

func addClamp(v uint8, d float64) uint8 {
	sum := float64(v) + d
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

// fillRect blends a translucent rectangle over the canvas.
func fillRect(img *image.RGBA, rect image.Rectangle, r, g, b uint8, a float64) {
	rect = rect.Intersect(img.Rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			blendPx(img, x, y, r, g, b, a)
		}
	}
}
