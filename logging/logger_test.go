package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultsToDiscard(t *testing.T) {
	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	// must not panic
	l.Info("ignored")
}

func TestSetLoggerCapturesOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Warn("cell image fallback", "label", "cat")
	out := buf.String()
	if !strings.Contains(out, "cell image fallback") || !strings.Contains(out, "label=cat") {
		t.Fatalf("unexpected log output: %q", out)
	}
}
