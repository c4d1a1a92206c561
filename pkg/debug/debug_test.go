package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLog_DisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(false)

	Log("hidden %d", 1)
	LogTiming("hidden", time.Second)
	Section("hidden")
	LogEnterExit("hidden")()

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLog_Enabled(t *testing.T) {
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	defer SetEnabled(false)

	Log("loaded %d records", 3153)
	LogIf(false, "never")
	LogIf(true, "cond")
	Section("render")
	LogEnterExit("scale")()

	out := buf.String()
	for _, want := range []string{"[TEMPMAP_DEBUG]", "loaded 3153 records", "cond", "=== render ===", "-> scale", "<- scale"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "never") {
		t.Errorf("LogIf(false) should not write")
	}
}
