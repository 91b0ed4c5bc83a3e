package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseLevelUnknown(t *testing.T) {
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected an error for an unknown level name")
	}
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"development", "release"} {
		logger, err := New(mode, "info")
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		if logger == nil {
			t.Fatalf("New(%q) returned nil logger", mode)
		}
		logger.Sync()
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("release", "loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
