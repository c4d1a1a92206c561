// Package model defines the monthly temperature-variance dataset.
package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Common errors.
var (
	ErrEmptyDataset    = errors.New("dataset has no records")
	ErrMalformedRecord = errors.New("malformed record")
)

// Record is one monthly observation.
type Record struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"` // 1-12
	Variance float64 `json:"variance"`
}

// Dataset is the fetched document: a baseline plus per-month variances.
type Dataset struct {
	BaseTemperature float64  `json:"baseTemperature"`
	Records         []Record `json:"monthlyVariance"`
}

// RecordError describes why a single record was rejected.
type RecordError struct {
	Index  int
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Temperature returns the absolute temperature of r against base.
func (r Record) Temperature(base float64) float64 {
	return base + r.Variance
}

// Validate checks every record and returns the first problem found.
func (d *Dataset) Validate() error {
	if d == nil || len(d.Records) == 0 {
		return ErrEmptyDataset
	}
	if math.IsNaN(d.BaseTemperature) || math.IsInf(d.BaseTemperature, 0) {
		return fmt.Errorf("baseTemperature is not finite: %w", ErrMalformedRecord)
	}

	type key struct{ year, month int }
	seen := make(map[key]int, len(d.Records))
	for i, r := range d.Records {
		if r.Month < 1 || r.Month > 12 {
			return &RecordError{Index: i, Field: "month", Reason: fmt.Sprintf("%d outside 1-12", r.Month)}
		}
		if math.IsNaN(r.Variance) || math.IsInf(r.Variance, 0) {
			return &RecordError{Index: i, Field: "variance", Reason: "not finite"}
		}
		k := key{r.Year, r.Month}
		if prev, dup := seen[k]; dup {
			return &RecordError{Index: i, Field: "year/month",
				Reason: fmt.Sprintf("%d-%02d duplicates record %d", r.Year, r.Month, prev)}
		}
		seen[k] = i
	}
	return nil
}

// Variances returns the variance column in record order.
func (d *Dataset) Variances() []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Variance
	}
	return out
}

// VarianceExtent returns the smallest and largest variance.
// It returns ErrEmptyDataset when there is nothing to measure.
func (d *Dataset) VarianceExtent() (lo, hi float64, err error) {
	if d == nil || len(d.Records) == 0 {
		return 0, 0, ErrEmptyDataset
	}
	v := d.Variances()
	return floats.Min(v), floats.Max(v), nil
}

// YearExtent returns the earliest and latest year.
func (d *Dataset) YearExtent() (lo, hi int, err error) {
	if d == nil || len(d.Records) == 0 {
		return 0, 0, ErrEmptyDataset
	}
	lo, hi = d.Records[0].Year, d.Records[0].Year
	for _, r := range d.Records[1:] {
		lo = min(lo, r.Year)
		hi = max(hi, r.Year)
	}
	return lo, hi, nil
}

// DistinctYears returns each year once, in order of first appearance.
func (d *Dataset) DistinctYears() []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range d.Records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	return years
}
