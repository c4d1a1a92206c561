package metrics

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vanderheijden86/tempmap/pkg/debug"
)

func TestTimingMetric_Record(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")

	m.Record(10 * time.Millisecond)
	m.Record(30 * time.Millisecond)
	m.Record(20 * time.Millisecond)

	s := m.Stats()
	if s.Count != 3 {
		t.Errorf("count = %d, want 3", s.Count)
	}
	if s.MinMs != 10 || s.MaxMs != 30 || s.AvgMs != 20 {
		t.Errorf("unexpected stats: %+v", s)
	}

	m.Reset()
	if m.Count() != 0 {
		t.Errorf("expected reset count 0, got %d", m.Count())
	}
}

func TestTimingMetric_Concurrent(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record(time.Millisecond)
		}()
	}
	wg.Wait()

	if m.Count() != 50 {
		t.Errorf("count = %d, want 50", m.Count())
	}
}

func TestTimer_Disabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("disabled")
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("disabled timer recorded %d samples", m.Count())
	}
}

func TestAllTimingStats_OnlyPopulated(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	defer ResetAll()

	Timer(ScaleBuild)()

	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "scale_build" {
		t.Errorf("expected only scale_build, got %+v", stats)
	}
}

func TestTimer_LogsWhenDebugging(t *testing.T) {
	SetEnabled(true)
	var buf bytes.Buffer
	debug.SetEnabled(true)
	debug.SetOutput(&buf)
	defer debug.SetEnabled(false)

	Timer(newTimingMetric("grid_layout_test"))()

	if !strings.Contains(buf.String(), "grid_layout_test took") {
		t.Errorf("expected a timing line, got %q", buf.String())
	}
}
