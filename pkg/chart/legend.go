package chart

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/vanderheijden86/tempmap/pkg/metrics"
	"github.com/vanderheijden86/tempmap/pkg/scale"
)

// Swatch is one legend color block.
type Swatch struct {
	Key      float64 // temperature the swatch stands for
	Variance float64 // Key - base, the argument given to the color scale
	X        float64
	Width    float64
	Height   float64
	Fill     colorful.Color
}

// FillHex returns the swatch color as #rrggbb.
func (s Swatch) FillHex() string {
	return s.Fill.Hex()
}

// Legend is the swatch row and the axis beneath it.
type Legend struct {
	Width    float64
	Height   float64
	Swatches []Swatch
	Ticks    []Tick
}

// BuildLegend lays out one swatch per key value and one axis tick per tick
// value. Swatch i spans from the center of tick i to the center of tick i+1,
// and is colored by the same scale as the heat-map cells.
func BuildLegend(set *scale.Set, dims scale.Dimensions) Legend {
	defer metrics.Timer(metrics.LegendLayout)()

	bw := set.Legend.Bandwidth()
	width := dims.LegendWidth / scale.LegendTickCount

	lg := Legend{
		Width:    dims.LegendWidth,
		Height:   dims.LegendHeight,
		Swatches: make([]Swatch, 0, len(set.Keys)),
		Ticks:    make([]Tick, 0, len(set.Ticks)),
	}

	for i, key := range set.Keys {
		x, _ := set.Legend.Map(set.Ticks[i])
		v := key - set.Base
		lg.Swatches = append(lg.Swatches, Swatch{
			Key:      key,
			Variance: v,
			X:        x + bw/2,
			Width:    width,
			Height:   dims.LegendHeight,
			Fill:     set.Color.Map(v),
		})
	}

	for _, t := range set.Ticks {
		x, _ := set.Legend.Map(t)
		lg.Ticks = append(lg.Ticks, Tick{Value: t, Pos: x + bw/2, Label: fmt.Sprintf("%.1f", t)})
	}
	return lg
}
