package logging

import (
	"bytes"
	"strings"
	"testing"
)

func capture(t *testing.T, level string, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLevel()
	if err := SetLevel(level); err != nil {
		t.Fatalf("SetLevel(%q): %v", level, err)
	}
	t.Cleanup(func() {
		atomicRestore(prev)
	})
	fn()
	return buf.String()
}

func atomicRestore(l Level) {
	switch l {
	case LevelDebug:
		_ = SetLevel("debug")
	case LevelWarn:
		_ = SetLevel("warn")
	case LevelError:
		_ = SetLevel("error")
	default:
		_ = SetLevel("info")
	}
}

func TestLevelFiltering(t *testing.T) {
	out := capture(t, "warn", func() {
		Debugf("hidden debug")
		Infof("hidden info")
		Warnf("shown warn")
		Errorf("shown error")
	})
	if strings.Contains(out, "hidden") {
		t.Errorf("suppressed levels leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown warn") || !strings.Contains(out, "[ERROR] shown error") {
		t.Errorf("expected lines missing: %q", out)
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	for _, name := range []string{"debug", "info", "warn", "warning", "error", " Info "} {
		if err := SetLevel(name); err != nil {
			t.Errorf("SetLevel(%q): %v", name, err)
		}
	}
	_ = SetLevel("info")
}

func TestLiteralPercentSurvives(t *testing.T) {
	out := capture(t, "info", func() {
		Infof("humidity at 60% and rising")
	})
	if !strings.Contains(out, "60% and rising") {
		t.Errorf("literal %% mangled: %q", out)
	}
	if strings.Contains(out, "MISSING") {
		t.Errorf("formatter mangled arg-free message: %q", out)
	}
}
