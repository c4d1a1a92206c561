package scale

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Diverging maps [x0, x1, x2] onto a palette so that x1 lands on the palette
// midpoint and each side is stretched independently.
type Diverging struct {
	x0, x1, x2 float64
	k10, k21   float64
	palette    Palette
	reversed   bool
}

// NewDiverging builds a diverging color scale. When reversed is true the
// palette is read from 1 to 0, so x0 takes the palette's last color.
func NewDiverging(x0, x1, x2 float64, p Palette, reversed bool) Diverging {
	d := Diverging{x0: x0, x1: x1, x2: x2, palette: p, reversed: reversed}
	if x1 != x0 {
		d.k10 = 0.5 / (x1 - x0)
	}
	if x2 != x1 {
		d.k21 = 0.5 / (x2 - x1)
	}
	return d
}

// T returns the palette position used for v, after clamping and reversal.
func (d Diverging) T(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	k := d.k21
	if v < d.x1 {
		k = d.k10
	}
	t := 0.5 + (v-d.x1)*k
	t = math.Max(0, math.Min(1, t))
	if d.reversed {
		t = 1 - t
	}
	return t
}

// Map returns the color for v.
func (d Diverging) Map(v float64) colorful.Color {
	return d.palette.At(d.T(v))
}

// Hex returns the color for v as #rrggbb.
func (d Diverging) Hex(v float64) string {
	return d.Map(v).Hex()
}

// Midpoint returns the palette's center color, the color of x1.
func (d Diverging) Midpoint() colorful.Color {
	return d.palette.At(0.5)
}

// Domain returns the three domain anchors.
func (d Diverging) Domain() (float64, float64, float64) {
	return d.x0, d.x1, d.x2
}
