package text

import "unicode/utf8"

// Truncate 按字节上限截断 s，不会切断多字节字符，截断时追加 suffix。
func Truncate(s string, max int, suffix string) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}
