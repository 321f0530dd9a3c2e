package signal

import (
	"encoding/json"
	"strings"

	"rlsignal/internal/message"
	"rlsignal/internal/pkg/maputil"

	"github.com/shopspring/decimal"
)

// Features 是从消息中抽取的策略输入。
type Features struct {
	Symbol  string
	Numeric map[string]decimal.Decimal
}

// Value 返回数值特征，缺失时 ok 为 false。
func (f Features) Value(key string) (decimal.Decimal, bool) {
	d, ok := f.Numeric[key]
	return d, ok
}

// ExtractFeatures 收集消息中所有可解释为数字的顶层字段。
// 字符串数字按原文精度解析；rl_* 增强字段不参与特征。
func ExtractFeatures(msg map[string]any) Features {
	f := Features{
		Symbol:  message.Symbol(msg),
		Numeric: make(map[string]decimal.Decimal),
	}
	for _, key := range maputil.SortedKeys(msg) {
		if key == message.KeySymbol || message.IsEnrichmentKey(key) {
			continue
		}
		if d, ok := toDecimal(msg[key]); ok {
			f.Numeric[key] = d
		}
	}
	return f
}

func toDecimal(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case bool, nil:
		return decimal.Zero, false
	}
	f, ok := maputil.ToFloat(raw)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
