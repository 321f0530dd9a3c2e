package processor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"rlsignal/internal/message"
	"rlsignal/internal/schema"
	"rlsignal/internal/signal"
	"rlsignal/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultProcessor(t *testing.T, workers int) *Processor {
	t.Helper()
	v, err := validate.New(schema.MustDefault(), nil)
	require.NoError(t, err)
	p, err := New(Options{
		Validator: v,
		Generator: signal.NewGenerator(nil, nil),
		Workers:   workers,
	})
	require.NoError(t, err)
	return p
}

func TestNewRequiresStages(t *testing.T) {
	_, err := New(Options{Generator: signal.NewGenerator(nil, nil)})
	assert.Error(t, err)

	v, err := validate.New(schema.MustDefault(), nil)
	require.NoError(t, err)
	_, err = New(Options{Validator: v})
	assert.Error(t, err)
}

func TestProcessEndToEnd(t *testing.T) {
	p := newDefaultProcessor(t, 0)
	in := message.RawMessage{"symbol": "AAPL", "price": 150.0}

	out, err := p.Process(in)
	require.NoError(t, err)

	assert.Equal(t, message.EnrichedMessage{
		"symbol":        "AAPL",
		"price":         150.0,
		"rl_action":     "BUY",
		"rl_confidence": 0.82,
	}, out)
	assert.Equal(t, message.RawMessage{"symbol": "AAPL", "price": 150.0}, in)
}

func TestProcessEndToEndFailure(t *testing.T) {
	p := newDefaultProcessor(t, 0)
	in := message.RawMessage{"bad": "data"}

	out, err := p.Process(in)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, validate.ErrInvalidMessage)
	assert.Equal(t, message.RawMessage{"bad": "data"}, in)
}

func TestProcessJSON(t *testing.T) {
	p := newDefaultProcessor(t, 0)

	out, err := p.ProcessJSON([]byte(`{"symbol":"AAPL","price":150.0}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"AAPL","price":150.0,"rl_action":"BUY","rl_confidence":0.82}`, string(out))

	// 直接比较原始字符串：JSONEq 会把数字解析成 float64，掩盖精度丢失。
	out, err = p.ProcessJSON([]byte(`{"symbol":"AAPL","volume":9007199254740993,"ts":1700000000123456789}`))
	require.NoError(t, err)
	assert.Equal(t,
		`{"rl_action":"BUY","rl_confidence":0.82,"symbol":"AAPL","ts":1700000000123456789,"volume":9007199254740993}`,
		string(out))

	_, err = p.ProcessJSON([]byte(`{"bad":"data"}`))
	assert.ErrorIs(t, err, validate.ErrInvalidMessage)

	_, err = p.ProcessJSON([]byte(`[`))
	assert.ErrorIs(t, err, message.ErrUndecodable)
}

func TestProcessBatchPreservesOrder(t *testing.T) {
	p := newDefaultProcessor(t, 2)
	msgs := []message.RawMessage{
		{"symbol": "AAPL", "price": 150.0},
		{"bad": "data"},
		{"symbol": "MSFT"},
	}

	results := p.ProcessBatch(context.Background(), msgs)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, i, res.Index)
	}
	require.NoError(t, results[0].Err)
	assert.Equal(t, "AAPL", results[0].Output["symbol"])
	assert.ErrorIs(t, results[1].Err, validate.ErrInvalidMessage)
	assert.Nil(t, results[1].Output)
	require.NoError(t, results[2].Err)
	assert.Equal(t, "BUY", results[2].Output["rl_action"])
}

func TestProcessBatchCancelled(t *testing.T) {
	p := newDefaultProcessor(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.ProcessBatch(ctx, []message.RawMessage{{"symbol": "AAPL"}, {"symbol": "MSFT"}})
	for _, res := range results {
		assert.True(t, errors.Is(res.Err, context.Canceled))
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	p := newDefaultProcessor(t, 1)
	assert.Empty(t, p.ProcessBatch(context.Background(), nil))
}

type panicGenerator struct{ calls atomic.Int32 }

func (g *panicGenerator) Generate(message.ValidatedMessage) message.EnrichedMessage {
	g.calls.Add(1)
	panic("boom")
}

func TestProcessBatchRecoversPanics(t *testing.T) {
	v, err := validate.New(schema.MustDefault(), nil)
	require.NoError(t, err)
	gen := &panicGenerator{}
	p, err := New(Options{Validator: v, Generator: gen, Workers: 2})
	require.NoError(t, err)

	results := p.ProcessBatch(context.Background(), []message.RawMessage{{"symbol": "AAPL"}, {"symbol": "MSFT"}})
	for _, res := range results {
		assert.ErrorContains(t, res.Err, "processor panic")
	}
	assert.Equal(t, int32(2), gen.calls.Load())
}
