// Package message 定义行情消息在校验、增强过程中的三种形态。
package message

import (
	"rlsignal/internal/pkg/maputil"
)

const (
	KeySymbol     = "symbol"
	KeyAction     = "rl_action"
	KeyConfidence = "rl_confidence"

	// UnknownSymbol 是消息缺少 symbol 字段时使用的占位值。
	UnknownSymbol = "UNKNOWN"
)

// RawMessage 是尚未校验的入站消息。
type RawMessage map[string]any

// ValidatedMessage 与 RawMessage 结构相同，只额外表示它已通过 schema 校验。
type ValidatedMessage map[string]any

// EnrichedMessage 是附加了 rl_action / rl_confidence 的校验后消息。
type EnrichedMessage map[string]any

// Symbol 返回消息中的 symbol，缺失时返回 UnknownSymbol。
func Symbol(m map[string]any) string {
	return maputil.StringOr(m, KeySymbol, UnknownSymbol)
}

// Clone 浅拷贝消息，调用方可以安全地写入返回值。
func Clone(m map[string]any) map[string]any {
	return maputil.Clone(m)
}

// IsEnrichmentKey 判断 key 是否由信号生成阶段写入。
func IsEnrichmentKey(key string) bool {
	return key == KeyAction || key == KeyConfidence
}
