// Package testutil provides dataset fixture generators for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/tempmap/pkg/model"
)

// GeneratorConfig controls dataset generation.
type GeneratorConfig struct {
	Seed      int64   // Random seed for determinism
	StartYear int     // First year (default 1753)
	Years     int     // Number of consecutive years (default 10)
	Base      float64 // Base temperature (default 8.66)
	Amplitude float64 // Max absolute variance (default 3)
	Trend     float64 // Variance added per year, for warming-style datasets
	SkipEvery int     // Drop every Nth record when > 0, to create gaps
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42,
		StartYear: 1753,
		Years:     10,
		Base:      8.66,
		Amplitude: 3,
	}
}

// GenerateDataset builds a dataset with one record per (year, month), in
// year-then-month order, unless SkipEvery removes some.
func GenerateDataset(cfg GeneratorConfig) *model.Dataset {
	if cfg.StartYear == 0 {
		cfg.StartYear = 1753
	}
	if cfg.Years <= 0 {
		cfg.Years = 10
	}
	if cfg.Amplitude == 0 {
		cfg.Amplitude = 3
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ds := &model.Dataset{BaseTemperature: cfg.Base}
	n := 0
	for y := 0; y < cfg.Years; y++ {
		for m := 1; m <= 12; m++ {
			n++
			if cfg.SkipEvery > 0 && n%cfg.SkipEvery == 0 {
				continue
			}
			v := (rng.Float64()*2-1)*cfg.Amplitude + cfg.Trend*float64(y)
			ds.Records = append(ds.Records, model.Record{
				Year:     cfg.StartYear + y,
				Month:    m,
				Variance: math.Round(v*1000) / 1000,
			})
		}
	}
	return ds
}

// SampleDataset is the two-record example used throughout the tests.
func SampleDataset() *model.Dataset {
	return &model.Dataset{
		BaseTemperature: 8.66,
		Records: []model.Record{
			{Year: 1753, Month: 1, Variance: -6.2},
			{Year: 1753, Month: 2, Variance: -2.2},
		},
	}
}

// DatasetJSON encodes ds in the wire format served by the dataset URL.
func DatasetJSON(ds *model.Dataset) ([]byte, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("marshal dataset: %w", err)
	}
	return data, nil
}
