package maputil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependent(t *testing.T) {
	src := map[string]any{"symbol": "AAPL"}
	dst := Clone(src)
	dst["symbol"] = "MSFT"
	assert.Equal(t, "AAPL", src["symbol"])

	empty := Clone(nil)
	require.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMergeLaterKeysWin(t *testing.T) {
	base := map[string]any{"a": 1, "b": 2}
	out := Merge(base, map[string]any{"b": 3}, map[string]any{"b": 4, "c": 5})

	assert.Equal(t, map[string]any{"a": 1, "b": 4, "c": 5}, out)
	assert.Equal(t, 2, base["b"])
}

func TestStringOr(t *testing.T) {
	m := map[string]any{"symbol": "BTCUSDT", "n": 7, "nil": nil}
	assert.Equal(t, "BTCUSDT", StringOr(m, "symbol", "UNKNOWN"))
	assert.Equal(t, "7", StringOr(m, "n", "UNKNOWN"))
	assert.Equal(t, "UNKNOWN", StringOr(m, "nil", "UNKNOWN"))
	assert.Equal(t, "UNKNOWN", StringOr(m, "missing", "UNKNOWN"))
	assert.Equal(t, "UNKNOWN", StringOr(nil, "symbol", "UNKNOWN"))
}

func TestFloat(t *testing.T) {
	m := map[string]any{
		"f":   150.0,
		"i":   3,
		"s":   " 1.5 ",
		"bad": "abc",
		"num": json.Number("2.25"),
	}
	cases := []struct {
		key  string
		want float64
		ok   bool
	}{
		{"f", 150, true},
		{"i", 3, true},
		{"s", 1.5, true},
		{"bad", 0, false},
		{"num", 2.25, true},
		{"missing", 0, false},
	}
	for _, tc := range cases {
		got, ok := Float(m, tc.key)
		assert.Equal(t, tc.ok, ok, tc.key)
		assert.InDelta(t, tc.want, got, 1e-9, tc.key)
	}
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]any{"c": 1, "a": 2, "b": 3}))
}
