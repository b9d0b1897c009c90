package formatting

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// コード領域。{{...}} は {code} や波括弧を含み得るので先に評価し、同じ行の最初の }} で閉じる
var protectedRe = regexp.MustCompile(`(?is)\{\{[^\n]*?\}\}|\{noformat\}.*?\{noformat\}|\{code(?::[^}]*)?\}.*?\{code\}|<code(?:\s[^>]*)?>.*?</code>`)

// applyOutsideCode はコード領域以外の部分にだけfnを適用します
func applyOutsideCode(content string, fn func(string) string) string {
	ranges := protectedRe.FindAllStringIndex(content, -1)
	if len(ranges) == 0 {
		return fn(content)
	}

	var b strings.Builder
	b.Grow(len(content))
	cursor := 0
	for _, r := range ranges {
		if r[0] > cursor {
			b.WriteString(fn(content[cursor:r[0]]))
		}
		b.WriteString(content[r[0]:r[1]])
		cursor = r[1]
	}
	if cursor < len(content) {
		b.WriteString(fn(content[cursor:]))
	}
	return b.String()
}

func isWordByte(r rune) bool {
	return r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func wordBefore(s string, i int) bool {
	if i <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordByte(r)
}

func wordAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordByte(r)
}
