package chart_test

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/model"
	"github.com/vanderheijden86/tempmap/pkg/scale"
	"github.com/vanderheijden86/tempmap/pkg/testutil"
)

func TestBuild_SampleDataset(t *testing.T) {
	ds := testutil.SampleDataset()
	c, err := chart.Build(ds, chart.DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	testutil.AssertCellCount(t, c, ds)
	testutil.AssertCellAttributes(t, c, ds)

	jan, feb := c.Cells[0], c.Cells[1]
	if jan.X != feb.X {
		t.Errorf("same year should share x: %v vs %v", jan.X, feb.X)
	}
	if jan.X != 600 {
		t.Errorf("single year should sit mid-plot, got x=%v", jan.X)
	}
	if jan.Y == feb.Y {
		t.Errorf("different months should differ in y, both %v", jan.Y)
	}
	if jan.Y != 440 || feb.Y != 400 {
		t.Errorf("January/February y = %v/%v, want 440/400", jan.Y, feb.Y)
	}
	for _, cell := range c.Cells {
		if cell.Fill.B <= cell.Fill.R {
			t.Errorf("negative variance %v should be cold, got %s", cell.Variance, cell.FillHex())
		}
	}
	testutil.AssertNear(t, "january temperature", jan.Temperature, 2.46)
	if jan.MonthIndex != 0 || feb.MonthIndex != 1 {
		t.Errorf("month indexes = %d/%d, want 0/1", jan.MonthIndex, feb.MonthIndex)
	}
}

func TestBuild_RefusesEmpty(t *testing.T) {
	_, err := chart.Build(&model.Dataset{BaseTemperature: 8.66}, chart.DefaultOptions())
	if !errors.Is(err, model.ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestBuild_RefusesMalformed(t *testing.T) {
	ds := &model.Dataset{Records: []model.Record{{Year: 1753, Month: 14, Variance: 1}}}
	_, err := chart.Build(ds, chart.DefaultOptions())
	if !errors.Is(err, model.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestBuild_MonthsPartitionPlotHeight(t *testing.T) {
	ds := testutil.GenerateDataset(testutil.DefaultConfig())
	c, err := chart.Build(ds, chart.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	height := c.Dimensions.PlotHeight
	ys := make(map[float64]bool)
	for _, cell := range c.Cells {
		ys[cell.Y] = true
		testutil.AssertNear(t, "cell height", cell.Height, height/12)
	}
	if len(ys) != 12 {
		t.Fatalf("expected 12 distinct rows, got %d", len(ys))
	}
	// Rows are contiguous: each row starts where the one above ends.
	for m := 1; m < 12; m++ {
		lower, _ := c.Scales.Month.Map(m)
		upper, _ := c.Scales.Month.Map(m + 1)
		testutil.AssertNear(t, "row adjacency", upper+height/12, lower)
	}
}

func TestBuild_YearTicksAndMonthTicks(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.Years = 60
	c, err := chart.Build(testutil.GenerateDataset(cfg), chart.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if len(c.YearTicks) == 0 {
		t.Fatal("expected year ticks")
	}
	for _, tk := range c.YearTicks {
		if tk.Value != math.Trunc(tk.Value) {
			t.Errorf("year tick %v is not a whole year", tk.Value)
		}
		if tk.Pos < 0 || tk.Pos > c.Dimensions.PlotWidth {
			t.Errorf("year tick %v at %v is off the plot", tk.Value, tk.Pos)
		}
	}

	if len(c.MonthTicks) != 12 {
		t.Fatalf("expected 12 month ticks, got %d", len(c.MonthTicks))
	}
	if c.MonthTicks[0].Label != "January" || c.MonthTicks[11].Label != "December" {
		t.Errorf("unexpected month labels: %q .. %q", c.MonthTicks[0].Label, c.MonthTicks[11].Label)
	}
	if c.MonthTicks[11].Pos >= c.MonthTicks[0].Pos {
		t.Error("December should be drawn above January")
	}
}

func TestLegend_FencePosts(t *testing.T) {
	ds := testutil.GenerateDataset(testutil.DefaultConfig())
	c, err := chart.Build(ds, chart.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	lg := c.Legend

	if len(lg.Ticks) != scale.LegendTickCount {
		t.Fatalf("expected %d ticks, got %d", scale.LegendTickCount, len(lg.Ticks))
	}
	if len(lg.Swatches) != scale.LegendKeyCount {
		t.Fatalf("expected %d swatches, got %d", scale.LegendKeyCount, len(lg.Swatches))
	}
	for i, s := range lg.Swatches {
		testutil.AssertNear(t, "swatch width", s.Width, c.Dimensions.LegendWidth/10)
		testutil.AssertNear(t, "swatch left edge", s.X, lg.Ticks[i].Pos)
		testutil.AssertNear(t, "swatch right edge", s.X+s.Width, lg.Ticks[i+1].Pos)
		if i > 0 && s.X <= lg.Swatches[i-1].X {
			t.Errorf("swatches should run left to right, %d at %v after %v", i, s.X, lg.Swatches[i-1].X)
		}
	}
	testutil.AssertLegendConsistent(t, c)

	mid := lg.Swatches[4]
	if mid.Key != ds.BaseTemperature {
		t.Errorf("middle swatch key = %v, want base %v", mid.Key, ds.BaseTemperature)
	}
	if mid.Fill != c.Scales.Color.Midpoint() {
		t.Errorf("middle swatch should be the palette midpoint, got %s", mid.FillHex())
	}
}

func TestCellAt(t *testing.T) {
	c, err := chart.Build(testutil.SampleDataset(), chart.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	jan := c.Cells[0]
	if got := c.CellAt(jan.X+1, jan.Y+1); got != 0 {
		t.Errorf("CellAt inside January = %d, want 0", got)
	}
	if got := c.CellAt(jan.X+1, 0); got != -1 {
		t.Errorf("CellAt in December row should be empty, got %d", got)
	}
}

func TestProperty_GridMatchesRecords(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := testutil.GeneratorConfig{
			Seed:      rapid.Int64().Draw(t, "seed"),
			StartYear: rapid.IntRange(1700, 2000).Draw(t, "start"),
			Years:     rapid.IntRange(1, 30).Draw(t, "years"),
			Base:      rapid.Float64Range(-5, 20).Draw(t, "base"),
			Amplitude: rapid.Float64Range(0.01, 10).Draw(t, "amp"),
			SkipEvery: rapid.IntRange(0, 7).Draw(t, "skip"),
		}
		ds := testutil.GenerateDataset(cfg)
		if len(ds.Records) == 0 {
			t.Skip("generator produced no records")
		}
		c, err := chart.Build(ds, chart.DefaultOptions())
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if len(c.Cells) != len(ds.Records) {
			t.Fatalf("cells %d != records %d", len(c.Cells), len(ds.Records))
		}
		for i, r := range ds.Records {
			cell := c.Cells[i]
			if cell.MonthIndex != r.Month-1 {
				t.Fatalf("cell %d month index %d, want %d", i, cell.MonthIndex, r.Month-1)
			}
			if math.Abs(cell.Temperature-(ds.BaseTemperature+r.Variance)) > 1e-9 {
				t.Fatalf("cell %d temperature %v", i, cell.Temperature)
			}
			if cell.FillHex() != c.Scales.Color.Hex(r.Variance) {
				t.Fatalf("cell %d fill does not match color scale", i)
			}
		}
		for i, s := range c.Legend.Swatches {
			if s.FillHex() != c.Scales.Color.Hex(s.Key-c.Scales.Base) {
				t.Fatalf("swatch %d breaks color consistency", i)
			}
		}
	})
}
