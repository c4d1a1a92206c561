package scale

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Mode selects how a palette interpolates between its stops.
type Mode string

const (
	// ModeBasis runs a uniform cubic B-spline through the stops per RGB channel.
	ModeBasis Mode = "basis"
	// ModeHCL blends adjacent stops in HCL space.
	ModeHCL Mode = "hcl"
)

// ParseMode accepts "basis" or "hcl" (case-insensitive). Empty means basis.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBasis:
		return ModeBasis, nil
	case ModeHCL:
		return ModeHCL, nil
	default:
		return "", fmt.Errorf("unknown palette mode %q (want basis or hcl)", s)
	}
}

// rdBuStops is the 11-class ColorBrewer RdBu scheme, red at 0 and blue at 1.
var rdBuStops = []string{
	"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7",
	"#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061",
}

// Palette is a continuous color ramp over t in [0, 1].
type Palette struct {
	stops []colorful.Color
	mode  Mode
}

// NewPalette parses hex stops into a palette. At least two stops are required.
func NewPalette(hexes []string, mode Mode) (Palette, error) {
	if len(hexes) < 2 {
		return Palette{}, fmt.Errorf("palette needs at least 2 stops, got %d", len(hexes))
	}
	p := Palette{stops: make([]colorful.Color, len(hexes)), mode: mode}
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return Palette{}, fmt.Errorf("stop %d: %w", i, err)
		}
		p.stops[i] = c
	}
	return p, nil
}

// RdBu returns the red-blue diverging palette.
func RdBu(mode Mode) Palette {
	p, err := NewPalette(rdBuStops, mode)
	if err != nil {
		panic("scale: RdBu stops: " + err.Error())
	}
	return p
}

// Mode returns the interpolation mode.
func (p Palette) Mode() Mode {
	return p.mode
}

// At returns the color at t, clamped to [0, 1] and rounded to 8-bit channels
// so equal inputs always yield byte-identical output.
func (p Palette) At(t float64) colorful.Color {
	if math.IsNaN(t) {
		t = 0.5
	}
	t = math.Max(0, math.Min(1, t))

	var c colorful.Color
	if p.mode == ModeHCL {
		c = p.hcl(t)
	} else {
		c = p.basis(t)
	}
	return quantize(c)
}

func (p Palette) hcl(t float64) colorful.Color {
	n := len(p.stops) - 1
	i := int(math.Floor(t * float64(n)))
	if i >= n {
		return p.stops[n]
	}
	local := t*float64(n) - float64(i)
	return p.stops[i].BlendHcl(p.stops[i+1], local).Clamped()
}

func (p Palette) basis(t float64) colorful.Color {
	n := len(p.stops) - 1
	var i int
	if t >= 1 {
		i = n - 1
	} else {
		i = int(math.Floor(t * float64(n)))
	}
	t1 := (t - float64(i)/float64(n)) * float64(n)

	v1, v2 := p.stops[i], p.stops[i+1]
	v0 := extrapolate(v1, v2)
	if i > 0 {
		v0 = p.stops[i-1]
	}
	v3 := extrapolate(v2, v1)
	if i < n-1 {
		v3 = p.stops[i+2]
	}

	return colorful.Color{
		R: basis(t1, v0.R, v1.R, v2.R, v3.R),
		G: basis(t1, v0.G, v1.G, v2.G, v3.G),
		B: basis(t1, v0.B, v1.B, v2.B, v3.B),
	}.Clamped()
}

// extrapolate mirrors b through a, giving the phantom control point past an end stop.
func extrapolate(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: 2*a.R - b.R, G: 2*a.G - b.G, B: 2*a.B - b.B}
}

func basis(t1, v0, v1, v2, v3 float64) float64 {
	t2 := t1 * t1
	t3 := t2 * t1
	return ((1-3*t1+3*t2-t3)*v0 +
		(4-6*t2+3*t3)*v1 +
		(1+3*t1+3*t2-3*t3)*v2 +
		t3*v3) / 6
}

func quantize(c colorful.Color) colorful.Color {
	r, g, b := c.Clamped().RGB255()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
