package qlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		quiet, verbose bool
		want           slog.Level
	}{
		{false, false, slog.LevelInfo},
		{true, false, slog.LevelWarn},
		{false, true, slog.LevelDebug},
		{true, true, slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := ParseVerbosity(tt.quiet, tt.verbose).Level(); got != tt.want {
			t.Errorf("quiet=%v verbose=%v: expected %v, got %v", tt.quiet, tt.verbose, tt.want, got)
		}
	}
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.LevelInfo, &buf)

	l.Debug("hidden")
	l.With("component", "http").Info("request sent", "path", "job/add", "status", 200)
	l.WithGroup("job").Warn("slow", "id", "7")

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("debug record should be filtered, got %q", got)
	}

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if !strings.HasSuffix(lines[0], "request sent component=http, path=job/add, status=200") {
		t.Errorf("unexpected info line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "slow job.id=7") {
		t.Errorf("unexpected warn line %q", lines[1])
	}
}

func TestFileHandlerGetsDebug(t *testing.T) {
	var console, file bytes.Buffer
	l := slog.New(newHandler(slog.LevelWarn, &console, &file)).With("component", "http")

	l.Debug("request sent", "path", "chado/list")
	l.Warn("cache unavailable")

	if strings.Contains(console.String(), "request sent") {
		t.Errorf("console should only see warnings, got %q", console.String())
	}
	if !strings.Contains(console.String(), "cache unavailable component=http") {
		t.Errorf("unexpected console output %q", console.String())
	}

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected both records in the file, got %q", file.String())
	}
	if !strings.Contains(lines[0], `"component":"http"`) || !strings.Contains(lines[0], `"path":"chado/list"`) {
		t.Errorf("unexpected file record %s", lines[0])
	}
}

func TestNoFileHandler(t *testing.T) {
	var console bytes.Buffer
	h := newHandler(slog.LevelInfo, &console, nil)
	if _, ok := h.(*simpleHandler); !ok {
		t.Errorf("expected a plain console handler, got %T", h)
	}
}
