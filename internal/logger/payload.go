package logger

import (
	"encoding/json"
	"fmt"
	"strings"

	"rlsignal/internal/pkg/text"
)

const maxPayloadChars = 2048

// Payload 将任意载荷渲染成单行 JSON，便于写入 debug/error 日志。
// 无法序列化时退回 %v，超长内容会被截断。
func Payload(v any) string {
	var out string
	if buf, err := json.Marshal(v); err == nil {
		out = string(buf)
	} else {
		out = fmt.Sprintf("%v", v)
	}
	return text.Truncate(strings.TrimSpace(out), maxPayloadChars, "...(truncated)")
}
