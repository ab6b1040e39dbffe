package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Warning", LevelWarn},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.SetOutput(&buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-level messages were written:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("missing expected lines:\n%s", out)
	}

	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "[DEBUG] now visible") {
		t.Error("SetLevel did not lower the threshold")
	}
}

func TestNamedSharesSink(t *testing.T) {
	var buf bytes.Buffer
	root := New(LevelInfo)
	root.SetOutput(&buf)

	child := root.Named("metadata").Named("cache")
	child.Info("hit %s", "Orion")

	if !strings.Contains(buf.String(), "[INFO] metadata.cache: hit Orion") {
		t.Errorf("unexpected named output: %q", buf.String())
	}

	root.SetLevel(LevelError)
	if child.Enabled(LevelInfo) {
		t.Error("child should follow the root level")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.Enabled(LevelError) {
		t.Error("Discard logger should not be enabled at any level")
	}
	l.Error("nothing %s", "happens")
}
