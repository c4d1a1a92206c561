package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/model"
)

// FloatTolerance is the comparison slack for derived floating-point values.
const FloatTolerance = 1e-9

// AssertCellCount verifies there is exactly one cell per record.
func AssertCellCount(t *testing.T, c *chart.Chart, ds *model.Dataset) {
	t.Helper()
	if len(c.Cells) != len(ds.Records) {
		t.Errorf("expected %d cells, got %d", len(ds.Records), len(c.Cells))
	}
}

// AssertCellAttributes verifies every cell carries its record's attributes:
// zero-based month, year, variance and reconstructed temperature.
func AssertCellAttributes(t *testing.T, c *chart.Chart, ds *model.Dataset) {
	t.Helper()
	for i, r := range ds.Records {
		if i >= len(c.Cells) {
			return
		}
		cell := c.Cells[i]
		if cell.MonthIndex != r.Month-1 {
			t.Errorf("cell %d: month index %d, want %d", i, cell.MonthIndex, r.Month-1)
		}
		if cell.Year != r.Year {
			t.Errorf("cell %d: year %d, want %d", i, cell.Year, r.Year)
		}
		if cell.Variance != r.Variance {
			t.Errorf("cell %d: variance %v, want %v", i, cell.Variance, r.Variance)
		}
		if want := ds.BaseTemperature + r.Variance; math.Abs(cell.Temperature-want) > FloatTolerance {
			t.Errorf("cell %d: temperature %v, want %v", i, cell.Temperature, want)
		}
	}
}

// AssertLegendConsistent verifies each swatch color equals the color the
// heat map would use for the same variance.
func AssertLegendConsistent(t *testing.T, c *chart.Chart) {
	t.Helper()
	for i, s := range c.Legend.Swatches {
		want := c.Scales.Color.Hex(s.Key - c.Scales.Base)
		if s.FillHex() != want {
			t.Errorf("swatch %d (key %v): fill %s, want %s", i, s.Key, s.FillHex(), want)
		}
	}
}

// AssertNear fails when got and want differ by more than FloatTolerance.
func AssertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > FloatTolerance {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
