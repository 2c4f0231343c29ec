package render

import "math"

// easeInOutCubic maps [0,1] onto [0,1] with slow ends and a fast middle.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
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

// lineWindow returns the local progress of line i out of n. Each line
// owns an equal-width segment of the [0,1] progress range; values below
// 0 mean the line is not yet revealed, values at or above 1 mean fully
// revealed.
func lineWindow(progress float64, i, n int) float64 {
	if n <= 0 {
		return 1
	}
	seg := 1.0 / float64(n)
	return (progress - float64(i)*seg) / seg
}
