package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, l Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := CurrentLevel()
	SetOutput(&buf)
	SetLevel(l)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	buf := capture(t, Info)

	Errorf("boom %d", 1)
	Infof("Call price: %s", "8.02")
	Debugf("hidden")
	Tracef("hidden too")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] boom 1") {
		t.Errorf("missing error line in %q", out)
	}
	if !strings.Contains(out, "[INFO]  Call price: 8.02") {
		t.Errorf("missing info line in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/trace output leaked at info level: %q", out)
	}
	if !strings.Contains(out, "logger_test.go:") {
		t.Errorf("expected caller file in %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"error", Error, false},
		{"info", Info, false},
		{" DEBUG ", Debug, false},
		{"Trace", Trace, false},
		{"verbose", Info, true},
		{"", Info, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetVerbosity(t *testing.T) {
	prev := CurrentLevel()
	t.Cleanup(func() { SetLevel(prev) })

	SetVerbosity(3)
	if CurrentLevel() != Trace {
		t.Errorf("SetVerbosity(3) level = %v, want trace", CurrentLevel())
	}
	SetVerbosity(42)
	if CurrentLevel() != Info {
		t.Errorf("SetVerbosity(42) level = %v, want info", CurrentLevel())
	}
}
