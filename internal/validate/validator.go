// Package validate 负责入站消息的 schema 校验。
package validate

import (
	"errors"
	"fmt"

	"rlsignal/internal/logger"
	"rlsignal/internal/message"
	"rlsignal/internal/schema"
)

// ErrInvalidMessage 是所有 schema 校验失败的哨兵错误。
var ErrInvalidMessage = errors.New("invalid message format")

// ValidationError 携带未通过校验的原始消息，供上游记录或投递死信。
type ValidationError struct {
	Message message.RawMessage
	Cause   error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrInvalidMessage.Error(), e.Cause)
	}
	return ErrInvalidMessage.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidMessage
}

// Validator 对消息执行 schema 契约检查，本身无状态。
type Validator struct {
	checker schema.Checker
	logger  *logger.Logger
}

// New 构建 Validator；checker 不能为空，log 为空时使用 "validator" 句柄。
func New(checker schema.Checker, log *logger.Logger) (*Validator, error) {
	if checker == nil {
		return nil, errors.New("validator requires a schema checker")
	}
	if log == nil {
		log = logger.Named("validator")
	}
	return &Validator{checker: checker, logger: log}, nil
}

// Validate 校验消息。通过时原样返回同一个 map，失败时返回 *ValidationError。
func (v *Validator) Validate(msg message.RawMessage) (message.ValidatedMessage, error) {
	v.logger.Debugf("validating message schema")
	// nil 按空 map 交给 checker，但返回值仍是调用方传入的原值。
	checked := map[string]any(msg)
	if checked == nil {
		checked = map[string]any{}
	}
	if !v.checker.Check(checked) {
		v.logger.Errorf("invalid message schema: %s", logger.Payload(checked))
		return nil, &ValidationError{
			Message: msg,
			Cause:   schema.Explain(v.checker, checked),
		}
	}
	return message.ValidatedMessage(msg), nil
}
