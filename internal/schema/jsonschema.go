package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultName 是内置行情消息 schema 的名称。
const DefaultName = "market_data"

// DefaultDocument 返回内置的行情消息 schema：
// symbol 必填且非空，price/volume 可选且非负，其余字段放行。
func DefaultDocument() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"symbol"},
		"properties": map[string]any{
			"symbol":    map[string]any{"type": "string", "minLength": 1},
			"price":     map[string]any{"type": "number", "minimum": 0},
			"volume":    map[string]any{"type": "number", "minimum": 0},
			"timestamp": map[string]any{"type": []any{"number", "string"}},
		},
	}
}

// JSONSchema 是基于编译后 JSON Schema 的 Checker。
type JSONSchema struct {
	name     string
	compiled *jsonschema.Schema
	coerce   bool
}

// Option 调整 JSONSchema 的校验行为。
type Option func(*JSONSchema)

// WithNumericStrings 在校验前把 "150.5" 这类数字字符串视为数字。
// 只作用于校验用的副本，原消息保持不变。
func WithNumericStrings(enabled bool) Option {
	return func(s *JSONSchema) {
		s.coerce = enabled
	}
}

// Compile 编译 schema 文档。
func Compile(name string, doc map[string]any, opts ...Option) (*JSONSchema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("schema %s: empty document", name)
	}
	compiled, err := compileDocument(name, doc)
	if err != nil {
		return nil, fmt.Errorf("schema %s compile failed: %w", name, err)
	}
	s := &JSONSchema{name: name, compiled: compiled}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// MustDefault 编译内置 schema；内置文档编译失败属于程序错误。
func MustDefault(opts ...Option) *JSONSchema {
	s, err := Compile(DefaultName, DefaultDocument(), opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *JSONSchema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

func (s *JSONSchema) Check(msg map[string]any) bool {
	return s.Explain(msg) == nil
}

func (s *JSONSchema) Explain(msg map[string]any) error {
	if s == nil || s.compiled == nil {
		return errors.New("schema not compiled")
	}
	if msg == nil {
		msg = map[string]any{}
	}
	return s.compiled.Validate(normalize(msg, s.coerce))
}

func compileDocument(name string, doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// normalize 递归复制消息，得到 jsonschema 可以识别的纯 JSON 值。
// 非 JSON 原生类型经由 json 往返转换；coerce 为 true 时数字字符串转为 float64。
func normalize(v any, coerce bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalize(child, coerce)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalize(child, coerce)
		}
		return out
	case string:
		if !coerce {
			return val
		}
		s := strings.TrimSpace(val)
		if s == "" {
			return val
		}
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			return num
		}
		return val
	case nil, bool, float64, json.Number:
		return val
	case float32:
		return float64(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return val
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return val
		}
		return normalize(out, coerce)
	}
}
