package maputil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Clone 浅拷贝 map；nil 输入返回空 map 而不是 nil。
func Clone(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Merge 先拷贝 base，再依次写入 overrides，后写入的键覆盖先前的值。
func Merge(base map[string]any, overrides ...map[string]any) map[string]any {
	size := len(base)
	for _, o := range overrides {
		size += len(o)
	}
	out := make(map[string]any, size)
	for k, v := range base {
		out[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// StringOr 返回 key 对应的字符串值；缺失或为 nil 时返回 def。
// 非字符串值按 %v 渲染，与上游 dict.get 的宽松语义一致。
func StringOr(params map[string]any, key, def string) string {
	if params == nil {
		return def
	}
	raw, ok := params[key]
	if !ok || raw == nil {
		return def
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}

// Float 尝试把 key 对应的值解释为数字。
func Float(params map[string]any, key string) (float64, bool) {
	if params == nil {
		return 0, false
	}
	raw, ok := params[key]
	if !ok {
		return 0, false
	}
	return ToFloat(raw)
}

func ToFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case interface{ Float64() (float64, error) }:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// SortedKeys 返回按字典序排列的键，便于生成稳定的日志输出。
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
