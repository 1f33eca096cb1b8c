package visualizer

import (
	"image/color"
	"math"
)

// Shared palette.
var (
	colorDisc      = color.NRGBA{R: 20, G: 20, B: 30, A: 255}
	colorDiscEdge  = color.NRGBA{R: 80, G: 80, B: 120, A: 255}
	colorHighlight = color.NRGBA{R: 255, G: 255, B: 255, A: 220}
)

// HSLToRGB converts HSL to RGB (h, s, l in 0-1 range).
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r = hueToRGB(p, q, h+1.0/3.0)
	g = hueToRGB(p, q, h)
	b = hueToRGB(p, q, h-1.0/3.0)

	return r, g, b
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

// HSL returns an NRGBA color. h wraps around, s and l are clamped to [0,1].
func HSL(h, s, l float64, alpha uint8) color.NRGBA {
	h -= math.Floor(h)
	r, g, b := HSLToRGB(h, clamp01(s), clamp01(l))
	return color.NRGBA{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
		A: alpha,
	}
}

// Rainbow returns a fully saturated color for a position around the wheel (0.0 to 1.0).
func Rainbow(pos float64, alpha uint8) color.NRGBA {
	return HSL(pos, 1, 0.5, alpha)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
