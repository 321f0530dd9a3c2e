package logger

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	})
	return &buf
}

func TestNamedAddsComponent(t *testing.T) {
	buf := captureOutput(t, "debug")

	Named("processor").Infof("handled %d", 3)

	out := buf.String()
	assert.Contains(t, out, "component=processor")
	assert.Contains(t, out, "handled 3")
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	buf := captureOutput(t, "info")

	Named("validator").Debugf("hidden")
	Named("validator").Errorf("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNilLoggerFallsBackToProcessLogger(t *testing.T) {
	buf := captureOutput(t, "info")

	var l *Logger
	l.Warnf("still logged")

	assert.Contains(t, buf.String(), "still logged")
	assert.Equal(t, "", l.Component())
}

func TestWithKeepsComponent(t *testing.T) {
	buf := captureOutput(t, "info")

	Named("http").With("request_id", "abc").Infof("ok")

	out := buf.String()
	assert.Contains(t, out, "component=http")
	assert.Contains(t, out, "request_id=abc")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestPayloadTruncates(t *testing.T) {
	assert.Equal(t, `{"symbol":"AAPL"}`, Payload(map[string]any{"symbol": "AAPL"}))

	long := Payload(strings.Repeat("x", maxPayloadChars*2))
	assert.True(t, strings.HasSuffix(long, "...(truncated)"))

	assert.Contains(t, Payload(make(chan int)), "0x")
}
