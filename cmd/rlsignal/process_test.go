package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"rlsignal/internal/processor"
	"rlsignal/internal/schema"
	"rlsignal/internal/signal"
	"rlsignal/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessor(t *testing.T) *processor.Processor {
	t.Helper()
	v, err := validate.New(schema.MustDefault(), nil)
	require.NoError(t, err)
	p, err := processor.New(processor.Options{Validator: v, Generator: signal.NewGenerator(nil, nil), Workers: 2})
	require.NoError(t, err)
	return p
}

func TestRunProcessWritesEnrichedLinesInOrder(t *testing.T) {
	input := strings.Join([]string{
		`{"symbol":"AAPL","price":150.0}`,
		``,
		`{"bad":"data"}`,
		`not json`,
		`{"symbol":"MSFT"}`,
		`{"symbol":"TSLA","price":200}`,
	}, "\n")
	var out bytes.Buffer

	stats, err := runProcess(context.Background(), newProcessor(t), strings.NewReader(input), &out, 2)
	require.NoError(t, err)

	assert.Equal(t, processStats{total: 5, ok: 3, failed: 2}, stats)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"symbol":"AAPL","price":150.0,"rl_action":"BUY","rl_confidence":0.82}`, lines[0])
	assert.JSONEq(t, `{"symbol":"MSFT","rl_action":"BUY","rl_confidence":0.82}`, lines[1])
	assert.JSONEq(t, `{"symbol":"TSLA","price":200,"rl_action":"BUY","rl_confidence":0.82}`, lines[2])
}

func TestRunProcessKeepsIntegerPrecision(t *testing.T) {
	var out bytes.Buffer
	input := `{"symbol":"AAPL","volume":9007199254740993}`

	_, err := runProcess(context.Background(), newProcessor(t), strings.NewReader(input), &out, 1)
	require.NoError(t, err)
	assert.Equal(t, `{"rl_action":"BUY","rl_confidence":0.82,"symbol":"AAPL","volume":9007199254740993}`+"\n", out.String())
}

func TestRunProcessEmptyInput(t *testing.T) {
	var out bytes.Buffer
	stats, err := runProcess(context.Background(), newProcessor(t), strings.NewReader(""), &out, 0)
	require.NoError(t, err)
	assert.Equal(t, processStats{}, stats)
	assert.Empty(t, out.String())
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	t.Setenv("RLSIGNAL_CONFIG", "")
	chdir(t, t.TempDir())

	cfg, err := loadConfig(&rootOptions{logLevel: "debug", httpAddr: ":1234"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":1234", cfg.App.HTTPAddr)
	assert.Equal(t, "BUY", cfg.Policy.Action)
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	t.Setenv("RLSIGNAL_CONFIG", "")
	chdir(t, t.TempDir())

	_, err := loadConfig(&rootOptions{logLevel: "verbose"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.log_level")
}

// chdir switches the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
