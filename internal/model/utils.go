package model

import "unicode/utf8"

// TruncateString cắt chuỗi xuống độ dài tối đa cho phép (tính theo byte),
// lùi về biên rune gần nhất để không cắt đôi ký tự nhiều byte
func TruncateString(s string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	if len(s) <= maxLength {
		return s
	}
	for maxLength > 0 && !utf8.RuneStart(s[maxLength]) {
		maxLength--
	}
	return s[:maxLength]
}
