// Package signal 为校验后的行情消息生成强化学习信号。
package signal

import (
	"fmt"
	"strings"
)

// Action 是策略给出的离散动作。
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// ParseAction 解析动作字符串，大小写不敏感。
func ParseAction(raw string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(raw))) {
	case ActionBuy:
		return ActionBuy, nil
	case ActionSell:
		return ActionSell, nil
	case ActionHold:
		return ActionHold, nil
	default:
		return "", fmt.Errorf("unknown action: %q", raw)
	}
}

// Decision 是策略对单条消息的输出。
type Decision struct {
	Action     Action  `json:"rl_action"`
	Confidence float64 `json:"rl_confidence"`
}

// Policy 把特征映射为决策。真实策略模型实现该接口后即可替换常量策略。
type Policy interface {
	Decide(f Features) Decision
}

// PolicyFunc 把普通函数适配为 Policy。
type PolicyFunc func(Features) Decision

func (f PolicyFunc) Decide(features Features) Decision {
	return f(features)
}

const (
	defaultAction     = ActionBuy
	defaultConfidence = 0.82
)

// ConstantPolicy 忽略输入，总是返回固定决策。
type ConstantPolicy struct {
	Action     Action
	Confidence float64
}

// DefaultPolicy 返回占位策略：BUY / 0.82。
func DefaultPolicy() ConstantPolicy {
	return ConstantPolicy{Action: defaultAction, Confidence: defaultConfidence}
}

// NewConstantPolicy 校验参数后构建常量策略，confidence 需位于 [0,1]。
func NewConstantPolicy(action string, confidence float64) (ConstantPolicy, error) {
	act, err := ParseAction(action)
	if err != nil {
		return ConstantPolicy{}, err
	}
	if confidence < 0 || confidence > 1 {
		return ConstantPolicy{}, fmt.Errorf("confidence must be within [0,1], got %v", confidence)
	}
	return ConstantPolicy{Action: act, Confidence: confidence}, nil
}

func (p ConstantPolicy) Decide(Features) Decision {
	return Decision{Action: p.Action, Confidence: p.Confidence}
}
