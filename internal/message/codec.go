package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrUndecodable 标识入站字节流无法被解析为 JSON 对象。
var ErrUndecodable = errors.New("undecodable message")

// DecodeError 描述解码失败的原因。
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("decode message: %s: %v", e.Reason, e.Err)
	}
	return "decode message: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Err != nil {
		return e.Err
	}
	return ErrUndecodable
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrUndecodable
}

// Decode 把单个 JSON 对象解码为 RawMessage。
// 根节点必须是对象；数组、标量、空内容都视为解码失败。
func Decode(raw []byte) (RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, &DecodeError{Reason: "empty payload"}
	}
	if !gjson.ValidBytes(raw) {
		return nil, &DecodeError{Reason: "invalid json"}
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return nil, &DecodeError{Reason: "root must be a json object"}
	}
	// 数字保留为 json.Number，超过 2^53 的整数编码回去时不丢精度。
	var msg RawMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&msg); err != nil {
		return nil, &DecodeError{Reason: "unmarshal failed", Err: err}
	}
	if msg == nil {
		msg = RawMessage{}
	}
	return msg, nil
}

// DecodeBatch 解码 JSON 数组，每个元素都必须是对象。
func DecodeBatch(raw []byte) ([]RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, &DecodeError{Reason: "empty payload"}
	}
	if !gjson.ValidBytes(raw) {
		return nil, &DecodeError{Reason: "invalid json"}
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil, &DecodeError{Reason: "root must be a json array"}
	}
	var (
		out    []RawMessage
		idx    int
		decErr error
	)
	parsed.ForEach(func(_, value gjson.Result) bool {
		idx++
		if !value.IsObject() {
			decErr = &DecodeError{Reason: fmt.Sprintf("element #%d must be a json object", idx)}
			return false
		}
		msg, err := Decode([]byte(value.Raw))
		if err != nil {
			decErr = err
			return false
		}
		out = append(out, msg)
		return true
	})
	if decErr != nil {
		return nil, decErr
	}
	return out, nil
}

// Encode 序列化增强后的消息。
func Encode(m EnrichedMessage) ([]byte, error) {
	if m == nil {
		m = EnrichedMessage{}
	}
	buf, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return buf, nil
}
