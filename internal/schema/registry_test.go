package schema

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickSchemas = `
schemas:
  tick:
    description: exchange tick
    version: 2
    document:
      type: object
      required: [symbol, price]
      properties:
        symbol:
          type: string
          minLength: 1
        price:
          type: number
  loose:
    coerce_numeric_strings: true
    document:
      type: object
      properties:
        price:
          type: number
`

func writeSchemaFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRegistryLoadsFile(t *testing.T) {
	r, err := NewRegistry(writeSchemaFile(t, tickSchemas), RegistryOptions{})
	require.NoError(t, err)

	snap := r.Snapshot()
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, []string{"loose", "tick"}, snap.Names())

	tpl, ok := r.Template("tick")
	require.True(t, ok)
	assert.Equal(t, 2, tpl.Version)
	assert.Equal(t, "exchange tick", tpl.Description)

	loose, ok := r.Template("loose")
	require.True(t, ok)
	assert.Equal(t, 1, loose.Version)

	tick := r.Checker("tick")
	assert.True(t, tick.Check(map[string]any{"symbol": "AAPL", "price": 150.0}))
	assert.False(t, tick.Check(map[string]any{"symbol": "AAPL"}))
	assert.True(t, r.Checker("loose").Check(map[string]any{"price": "1.5"}))
}

func TestRegistryUnknownSchemaFails(t *testing.T) {
	r, err := NewDefaultRegistry(RegistryOptions{})
	require.NoError(t, err)

	c := r.Checker("nope")
	assert.False(t, c.Check(map[string]any{"symbol": "AAPL"}))
	assert.ErrorContains(t, Explain(c, map[string]any{}), "unknown schema")
}

func TestRegistryRejectsUnknownFields(t *testing.T) {
	_, err := NewRegistry(writeSchemaFile(t, "schemas:\n  tick:\n    documnt: {}\n"), RegistryOptions{})
	require.Error(t, err)
}

func TestRegistryReloadKeepsPreviousOnFailure(t *testing.T) {
	path := writeSchemaFile(t, tickSchemas)
	r, err := NewRegistry(path, RegistryOptions{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("schemas:\n  tick:\n    document:\n      type: 12\n"), 0o644))
	require.Error(t, r.Reload())
	assert.Equal(t, int64(1), r.Version())
	assert.True(t, r.Checker("tick").Check(map[string]any{"symbol": "AAPL", "price": 1.0}))

	require.NoError(t, os.WriteFile(path, []byte("schemas:\n  tick:\n    document:\n      type: object\n"), 0o644))
	require.NoError(t, r.Reload())
	assert.Equal(t, int64(2), r.Version())
	assert.True(t, r.Checker("tick").Check(map[string]any{"symbol": "AAPL"}))
	_, ok := r.Template("loose")
	assert.False(t, ok)
}

func TestStaticRegistryRequiresSchemas(t *testing.T) {
	_, err := NewStaticRegistry(nil, RegistryOptions{})
	require.Error(t, err)

	_, err = NewRegistry("  ", RegistryOptions{})
	require.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	r, err := NewDefaultRegistry(RegistryOptions{})
	require.NoError(t, err)

	c := r.Checker(DefaultName)
	assert.True(t, c.Check(map[string]any{"symbol": "AAPL", "price": 150.0}))
	assert.False(t, c.Check(map[string]any{"bad": "data"}))
	assert.Error(t, r.Reload())
}

func TestRegistryWatchReloadsAndNotifies(t *testing.T) {
	path := writeSchemaFile(t, tickSchemas)
	r, err := NewRegistry(path, RegistryOptions{Watch: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Version())

	changes := make(chan Snapshot, 8)
	r.OnChange(func(snap Snapshot) { changes <- snap })

	// 损坏的文档被拒绝，旧快照继续生效，也不会通知监听者。
	require.NoError(t, os.WriteFile(path, []byte("schemas:\n  tick:\n    document:\n      type: 12\n"), 0o644))
	assert.Never(t, func() bool { return r.Version() != 1 }, 500*time.Millisecond, 20*time.Millisecond)
	assert.Empty(t, changes)
	assert.True(t, r.Checker("tick").Check(map[string]any{"symbol": "AAPL", "price": 1.0}))

	require.NoError(t, os.WriteFile(path, []byte("schemas:\n  tick:\n    document:\n      type: object\n"), 0o644))
	select {
	case snap := <-changes:
		assert.Equal(t, int64(2), snap.Version)
		assert.Equal(t, []string{"tick"}, snap.Names())
	case <-time.After(5 * time.Second):
		t.Fatal("listener not notified after schema file change")
	}
	assert.True(t, r.Checker("tick").Check(map[string]any{"symbol": "AAPL"}))
}
