package testutil

import (
	"strings"
	"testing"
)

func TestGenerateDataset_Deterministic(t *testing.T) {
	a := GenerateDataset(DefaultConfig())
	b := GenerateDataset(DefaultConfig())

	if len(a.Records) != 120 {
		t.Fatalf("expected 120 records, got %d", len(a.Records))
	}
	for i := range a.Records {
		if a.Records[i] != b.Records[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, a.Records[i], b.Records[i])
		}
	}
	if err := a.Validate(); err != nil {
		t.Errorf("generated dataset invalid: %v", err)
	}
}

func TestGenerateDataset_SkipAndTrend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkipEvery = 5
	cfg.Years = 5
	cfg.Amplitude = 0.001
	cfg.Trend = 1

	ds := GenerateDataset(cfg)
	if len(ds.Records) != 48 {
		t.Errorf("expected 48 records after skipping every 5th of 60, got %d", len(ds.Records))
	}
	last := ds.Records[len(ds.Records)-1]
	if last.Variance < 3.9 {
		t.Errorf("trend should lift late variances, got %v", last.Variance)
	}
}

func TestDatasetJSON_WireNames(t *testing.T) {
	data, err := DatasetJSON(SampleDataset())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, key := range []string{`"baseTemperature"`, `"monthlyVariance"`, `"year"`, `"month"`, `"variance"`} {
		if !strings.Contains(s, key) {
			t.Errorf("encoded dataset missing %s: %s", key, s)
		}
	}
}
