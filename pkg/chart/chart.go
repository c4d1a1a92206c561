// Package chart lays out the heat map and its legend in plot coordinates.
//
// The output is a plain value: rendering surfaces (SVG, PNG, HTML, terminal)
// only read it, so every surface shows the same cells with the same colors.
package chart

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/vanderheijden86/tempmap/pkg/debug"
	"github.com/vanderheijden86/tempmap/pkg/metrics"
	"github.com/vanderheijden86/tempmap/pkg/model"
	"github.com/vanderheijden86/tempmap/pkg/scale"
)

// DefaultYearTickCount is the approximate number of year-axis ticks.
const DefaultYearTickCount = 20

// Cell is one heat-map rectangle and the record it came from.
type Cell struct {
	Index       int
	Year        int
	Month       int // 1-12
	MonthIndex  int // 0-11, the value exposed to verification tooling
	Variance    float64
	Temperature float64

	X, Y          float64
	Width, Height float64
	Fill          colorful.Color
}

// FillHex returns the cell color as #rrggbb.
func (c Cell) FillHex() string {
	return c.Fill.Hex()
}

// Tick is one labelled axis position.
type Tick struct {
	Value float64
	Pos   float64
	Label string
}

// Options configures Build.
type Options struct {
	Dimensions    scale.Dimensions
	Palette       scale.Palette
	YearTickCount int
}

// DefaultOptions returns the default dimensions with the basis RdBu palette.
func DefaultOptions() Options {
	return Options{
		Dimensions:    scale.DefaultDimensions(),
		Palette:       scale.RdBu(scale.ModeBasis),
		YearTickCount: DefaultYearTickCount,
	}
}

// Chart is the complete layout of one dataset.
type Chart struct {
	Dataset    *model.Dataset
	Dimensions scale.Dimensions
	Scales     *scale.Set
	Cells      []Cell
	Legend     Legend
	YearTicks  []Tick
	MonthTicks []Tick
}

// Build lays out ds. It refuses empty or malformed datasets.
func Build(ds *model.Dataset, opts Options) (*Chart, error) {
	defer debug.LogEnterExit("chart.Build")()

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if opts.YearTickCount <= 0 {
		opts.YearTickCount = DefaultYearTickCount
	}

	set, err := scale.Build(ds, opts.Dimensions, opts.Palette)
	if err != nil {
		return nil, fmt.Errorf("build scales: %w", err)
	}

	cells, err := BuildGrid(ds, set)
	if err != nil {
		return nil, err
	}

	c := &Chart{
		Dataset:    ds,
		Dimensions: opts.Dimensions,
		Scales:     set,
		Cells:      cells,
		Legend:     BuildLegend(set, opts.Dimensions),
		YearTicks:  yearTicks(set, opts.YearTickCount),
		MonthTicks: monthTicks(set),
	}
	debug.Log("chart: %d cells, cell %.3fx%.3f, legend %d swatches",
		len(cells), set.YearBand.Bandwidth(), set.Month.Bandwidth(), len(c.Legend.Swatches))
	return c, nil
}

// BuildGrid creates one cell per record, in record order.
func BuildGrid(ds *model.Dataset, set *scale.Set) ([]Cell, error) {
	defer metrics.Timer(metrics.GridLayout)()

	width := set.YearBand.Bandwidth()
	height := set.Month.Bandwidth()

	cells := make([]Cell, len(ds.Records))
	for i, r := range ds.Records {
		y, ok := set.Month.Map(r.Month)
		if !ok {
			return nil, &model.RecordError{Index: i, Field: "month", Reason: fmt.Sprintf("%d outside 1-12", r.Month)}
		}
		cells[i] = Cell{
			Index:       i,
			Year:        r.Year,
			Month:       r.Month,
			MonthIndex:  r.Month - 1,
			Variance:    r.Variance,
			Temperature: r.Temperature(ds.BaseTemperature),
			X:           set.Year.Map(float64(r.Year)),
			Y:           y,
			Width:       width,
			Height:      height,
			Fill:        set.Color.Map(r.Variance),
		}
	}
	return cells, nil
}

// CellAt returns the index of the topmost cell containing (x, y) in plot
// coordinates, or -1. Later cells paint over earlier ones.
func (c *Chart) CellAt(x, y float64) int {
	for i := len(c.Cells) - 1; i >= 0; i-- {
		cell := c.Cells[i]
		if x >= cell.X && x < cell.X+cell.Width && y >= cell.Y && y < cell.Y+cell.Height {
			return i
		}
	}
	return -1
}

func yearTicks(set *scale.Set, count int) []Tick {
	var ticks []Tick
	for _, v := range set.Year.Ticks(count) {
		if v != math.Trunc(v) {
			continue
		}
		ticks = append(ticks, Tick{Value: v, Pos: set.Year.Map(v), Label: fmt.Sprintf("%d", int(v))})
	}
	return ticks
}

func monthTicks(set *scale.Set) []Tick {
	ticks := make([]Tick, 0, len(scale.Months))
	for _, m := range scale.Months {
		y, _ := set.Month.Map(m)
		ticks = append(ticks, Tick{
			Value: float64(m),
			Pos:   y + set.Month.Bandwidth()/2,
			Label: model.MonthName(m),
		})
	}
	return ticks
}
