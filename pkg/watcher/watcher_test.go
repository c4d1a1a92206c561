package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vanderheijden86/tempmap/pkg/model"
	"github.com/vanderheijden86/tempmap/pkg/testutil"
)

func writeDataset(t *testing.T, path string, years int) {
	t.Helper()
	cfg := testutil.DefaultConfig()
	cfg.Years = years
	data, err := testutil.DatasetJSON(testutil.GenerateDataset(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"y", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"", false},
		{"invalid", false},
	}

	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("TEST_ENV_BOOL", tc.value)
			if got := envBool("TEST_ENV_BOOL"); got != tc.expected {
				t.Errorf("envBool(%q) = %v, expected %v", tc.value, got, tc.expected)
			}
		})
	}
}

// ============================================================================
// WatchDataset
// ============================================================================

type reloads struct {
	mu       sync.Mutex
	datasets []*model.Dataset
	errs     []error
}

func (r *reloads) record(ds *model.Dataset, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errs = append(r.errs, err)
		return
	}
	r.datasets = append(r.datasets, ds)
}

func (r *reloads) snapshot() ([]*model.Dataset, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.Dataset(nil), r.datasets...), append([]error(nil), r.errs...)
}

func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

// settledOn reports whether the last delivered dataset has n records. A poll
// can observe the file mid-write; only the settled content matters.
func (r *reloads) settledOn(n int) func() bool {
	return func() bool {
		ds, _ := r.snapshot()
		return len(ds) > 0 && len(ds[len(ds)-1].Records) == n
	}
}

func pollOpts() []Option {
	return []Option{
		WithDebounceDuration(20 * time.Millisecond),
		WithPollInterval(30 * time.Millisecond),
		WithForcePoll(true),
	}
}

func TestWatchDataset_ReloadsOnChange(t *testing.T) {
	t.Setenv("TEMPMAP_FORCE_POLL", "")
	tmpFile := filepath.Join(t.TempDir(), "global-temperature.json")
	writeDataset(t, tmpFile, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got reloads
	w, err := WatchDataset(ctx, tmpFile, got.record, WithDebounceDuration(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	absPath, _ := filepath.Abs(tmpFile)
	if w.Path() != absPath {
		t.Errorf("expected path %s, got %s", absPath, w.Path())
	}

	time.Sleep(100 * time.Millisecond)
	writeDataset(t, tmpFile, 4)

	if !waitFor(t, got.settledOn(48)) {
		_, errs := got.snapshot()
		t.Fatalf("expected a reload with 48 records (polling=%v, errors: %v)", w.IsPolling(), errs)
	}
}

func TestWatchDataset_PollingReload(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "global-temperature.json")
	writeDataset(t, tmpFile, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got reloads
	w, err := WatchDataset(ctx, tmpFile, got.record, pollOpts()...)
	if err != nil {
		t.Fatal(err)
	}
	if !w.IsPolling() {
		t.Error("expected polling mode")
	}

	time.Sleep(60 * time.Millisecond)
	writeDataset(t, tmpFile, 3)

	if !waitFor(t, got.settledOn(36)) {
		_, errs := got.snapshot()
		t.Fatalf("expected a reload with 36 records (errors: %v)", errs)
	}
}

func TestWatchDataset_NoReloadWithoutChange(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "global-temperature.json")
	writeDataset(t, tmpFile, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got reloads
	if _, err := WatchDataset(ctx, tmpFile, got.record, pollOpts()...); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if ds, errs := got.snapshot(); len(ds) != 0 || len(errs) != 0 {
		t.Errorf("untouched file triggered %d reloads and %d errors", len(ds), len(errs))
	}
}

func TestWatchDataset_EnvForcePoll(t *testing.T) {
	t.Setenv("TEMPMAP_FORCE_POLL", "1")

	tmpFile := filepath.Join(t.TempDir(), "global-temperature.json")
	writeDataset(t, tmpFile, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := WatchDataset(ctx, tmpFile, func(*model.Dataset, error) {})
	if err != nil {
		t.Fatal(err)
	}
	if !w.IsPolling() {
		t.Fatal("expected polling mode when TEMPMAP_FORCE_POLL is set")
	}
}

func TestWatchDataset_ReportsMalformedRewrite(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "global-temperature.json")
	writeDataset(t, tmpFile, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got reloads
	if _, err := WatchDataset(ctx, tmpFile, got.record, pollOpts()...); err != nil {
		t.Fatal(err)
	}

	time.Sleep(60 * time.Millisecond)
	if err := os.WriteFile(tmpFile, []byte(`{"baseTemperature": 8.66, "monthlyVariance": [{"year": 1753}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		_, errs := got.snapshot()
		return len(errs) > 0
	})
	_, errs := got.snapshot()
	if len(errs) == 0 || !errors.Is(errs[len(errs)-1], model.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", errs)
	}
}

func TestWatchDataset_FileRemovedThenRestored(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "global-temperature.json")
	writeDataset(t, tmpFile, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got reloads
	if _, err := WatchDataset(ctx, tmpFile, got.record, pollOpts()...); err != nil {
		t.Fatal(err)
	}

	time.Sleep(60 * time.Millisecond)
	if err := os.Remove(tmpFile); err != nil {
		t.Fatal(err)
	}
	// Several polls see the file missing; the removal is reported once.
	time.Sleep(300 * time.Millisecond)

	_, errs := got.snapshot()
	if len(errs) != 1 || !errors.Is(errs[0], ErrFileRemoved) {
		t.Fatalf("expected one ErrFileRemoved, got %v", errs)
	}

	writeDataset(t, tmpFile, 2)
	if !waitFor(t, got.settledOn(24)) {
		t.Error("restored file should be reloaded")
	}
}

func TestWatchDataset_StopsWithContext(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "global-temperature.json")
	writeDataset(t, tmpFile, 1)

	ctx, cancel := context.WithCancel(context.Background())

	var got reloads
	w, err := WatchDataset(ctx, tmpFile, got.record, pollOpts()...)
	if err != nil {
		t.Fatal(err)
	}

	cancel()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watcher should stop with its context")
	}

	writeDataset(t, tmpFile, 2)
	time.Sleep(150 * time.Millisecond)
	if ds, _ := got.snapshot(); len(ds) != 0 {
		t.Errorf("stopped watcher delivered %d reloads", len(ds))
	}
}

func TestWatchDataset_RejectsURL(t *testing.T) {
	_, err := WatchDataset(context.Background(), "https://example.com/data.json", func(*model.Dataset, error) {})
	if !errors.Is(err, ErrRemoteSource) {
		t.Errorf("expected ErrRemoteSource, got %v", err)
	}
}

func TestWatchDataset_MissingFile(t *testing.T) {
	_, err := WatchDataset(context.Background(), filepath.Join(t.TempDir(), "nope.json"), func(*model.Dataset, error) {})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}
