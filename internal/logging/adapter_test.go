package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSlogAdapter_WithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter.Logger() == nil {
		t.Error("adapter should fall back to slog.Default()")
	}
}

func TestSlogAdapter_PinnedAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	adapter := NewSlogAdapter(base, Service("scheduling"))
	adapter.Debug("debug message", "k", 1)
	adapter.Info("info message")
	adapter.Warn("warn message")
	adapter.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 records, got %d: %s", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "service=scheduling") {
			t.Errorf("record missing pinned attribute: %s", line)
		}
	}
	if !strings.Contains(lines[0], "k=1") {
		t.Errorf("record missing call attribute: %s", lines[0])
	}
}

func TestDiscard(t *testing.T) {
	var l Logger = Discard()
	l.Error("nothing happens")
}

func TestSlogLoggerSatisfiesInterface(t *testing.T) {
	var _ Logger = slog.Default()
}
