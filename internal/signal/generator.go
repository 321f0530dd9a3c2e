package signal

import (
	"rlsignal/internal/logger"
	"rlsignal/internal/message"
	"rlsignal/internal/pkg/maputil"
)

// Generator 用注入的 Policy 为消息附加 rl_action / rl_confidence。
type Generator struct {
	policy Policy
	logger *logger.Logger
}

// NewGenerator 构建 Generator；policy 为空时使用 DefaultPolicy。
func NewGenerator(policy Policy, log *logger.Logger) *Generator {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if log == nil {
		log = logger.Named("signal")
	}
	return &Generator{policy: policy, logger: log}
}

// Generate 返回输入的副本，并写入（或覆盖）两个增强字段。输入不会被修改。
func (g *Generator) Generate(msg message.ValidatedMessage) message.EnrichedMessage {
	features := ExtractFeatures(msg)
	g.logger.Infof("generating RL signal for %s", features.Symbol)

	decision := g.policy.Decide(features)
	result := map[string]any{
		message.KeyAction:     string(decision.Action),
		message.KeyConfidence: decision.Confidence,
	}
	g.logger.Debugf("RL decision for %s: %s", features.Symbol, logger.Payload(result))

	return message.EnrichedMessage(maputil.Merge(msg, result))
}
