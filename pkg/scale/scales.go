// Package scale builds the mappings from dataset values to pixels and colors.
//
// Every scale is a pure value derived once from a Dataset; building twice
// from the same Dataset yields identical output.
package scale

import (
	"errors"
	"fmt"
	"math"

	"github.com/vanderheijden86/tempmap/pkg/metrics"
	"github.com/vanderheijden86/tempmap/pkg/model"
)

// ErrInvalidDimensions is returned for non-positive or non-finite plot sizes.
var ErrInvalidDimensions = errors.New("invalid chart dimensions")

// Dimensions are the pixel sizes of the plot area and the legend.
type Dimensions struct {
	PlotWidth    float64
	PlotHeight   float64
	LegendWidth  float64
	LegendHeight float64
}

// DefaultDimensions returns the sizes used when nothing is configured.
func DefaultDimensions() Dimensions {
	return Dimensions{
		PlotWidth:    1200,
		PlotHeight:   480,
		LegendWidth:  400,
		LegendHeight: 30,
	}
}

// Validate reports the first unusable size.
func (d Dimensions) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"plot width", d.PlotWidth},
		{"plot height", d.PlotHeight},
		{"legend width", d.LegendWidth},
		{"legend height", d.LegendHeight},
	} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s %v: %w", f.name, f.v, ErrInvalidDimensions)
		}
	}
	return nil
}

// Months is the month-axis domain.
var Months = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

// Set holds the five scales derived from a dataset.
type Set struct {
	Year     Linear        // year -> x
	Month    Band[int]     // month (1-12) -> y, December on top
	Color    Diverging     // variance -> fill
	YearBand Band[int]     // distinct years -> cell width
	Legend   Band[float64] // legend tick value -> x

	Base        float64
	MinVariance float64
	MaxVariance float64
	Ticks       []float64 // legend axis values
	Keys        []float64 // legend swatch values
}

// Build derives all scales from ds. The palette is read in reverse so that
// negative variance is blue and positive variance is red.
func Build(ds *model.Dataset, dims Dimensions, p Palette) (*Set, error) {
	defer metrics.Timer(metrics.ScaleBuild)()

	if err := dims.Validate(); err != nil {
		return nil, err
	}
	minYear, maxYear, err := ds.YearExtent()
	if err != nil {
		return nil, err
	}
	minVar, maxVar, err := ds.VarianceExtent()
	if err != nil {
		return nil, err
	}

	a := math.Max(math.Abs(minVar), math.Abs(maxVar))
	ticks := LegendTicks(ds.BaseTemperature, minVar, maxVar)

	return &Set{
		Year:     NewLinear(float64(minYear-1), float64(maxYear+1), 0, dims.PlotWidth),
		Month:    NewBand(Months, dims.PlotHeight, 0),
		Color:    NewDiverging(-a, 0, a, p, true),
		YearBand: NewBand(ds.DistinctYears(), 0, dims.PlotWidth),
		Legend:   NewBand(ticks, 0, dims.LegendWidth),

		Base:        ds.BaseTemperature,
		MinVariance: minVar,
		MaxVariance: maxVar,
		Ticks:       ticks,
		Keys:        LegendKeys(ds.BaseTemperature, minVar, maxVar),
	}, nil
}
