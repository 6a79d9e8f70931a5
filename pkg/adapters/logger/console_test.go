package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/duocam/pkg/ports"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewWriter(ports.LevelWarn, &out, &errOut)

	log.Debug("debug line %d", 1)
	log.Info("info line %d", 2)
	log.Warn("warn line %d", 3)
	log.Error("error line %d", 4)

	if out.Len() != 0 {
		t.Errorf("expected no stdout output, got %q", out.String())
	}
	got := errOut.String()
	if !strings.Contains(got, "warn line 3") {
		t.Errorf("expected warn line in stderr, got %q", got)
	}
	if !strings.Contains(got, "error line 4") {
		t.Errorf("expected error line in stderr, got %q", got)
	}
}

func TestConsoleLogger_StreamSplit(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewWriter(ports.LevelDebug, &out, &errOut)

	log.Debug("debug line")
	log.Info("info line")
	log.Warn("warn line")

	if !strings.Contains(out.String(), "debug line") || !strings.Contains(out.String(), "info line") {
		t.Errorf("expected debug and info on stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "warn line") {
		t.Error("warn should not go to stdout")
	}
	if !strings.Contains(errOut.String(), "warn line") {
		t.Errorf("expected warn on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewWriter(ports.LevelInfo, &out, &errOut).WithComponent("camera")

	log.Info("opened")

	if got := strings.TrimSpace(out.String()); got != "[camera] opened" {
		t.Errorf("expected %q, got %q", "[camera] opened", got)
	}
}

func TestConsoleLogger_NoColorForWriters(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewWriter(ports.LevelDebug, &out, &errOut)

	log.Error("plain")

	if strings.Contains(errOut.String(), "\033[") {
		t.Errorf("expected no ANSI escapes, got %q", errOut.String())
	}
}

func TestConsoleLogger_Timestamps(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewWriter(ports.LevelInfo, &out, &errOut).WithTimestamps()

	log.Info("tick")

	line := strings.TrimSpace(out.String())
	// 15:04:05.000 prefix
	if len(line) < len("00:00:00.000 tick") || line[2] != ':' || line[8] != '.' {
		t.Errorf("expected timestamp prefix, got %q", line)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want ports.LogLevel
	}{
		{"debug", ports.LevelDebug},
		{"info", ports.LevelInfo},
		{"warn", ports.LevelWarn},
		{"error", ports.LevelError},
		{"quiet", ports.LevelQuiet},
		{"bogus", ports.LevelInfo},
	}
	for _, tt := range tests {
		if got := ports.ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
