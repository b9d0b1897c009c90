package formatting

import (
	"regexp"
	"strings"
)

var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// <pre>...</pre> は最初の</pre>で閉じる
	preBlockRe = regexp.MustCompile(`(?is)<pre(?:\s[^>]*)?>(.*?)</pre>`)
	preOpenRe  = regexp.MustCompile(`(?i)<pre(?:\s[^>]*)?>`)

	// class属性を持つ<code>だけで構成された<pre>の中身
	classCodeBodyRe = regexp.MustCompile(`(?is)^\s*(<code\s[^>]*\bclass\s*=[^>]*>.*</code>)\s*$`)
	bareCodeBodyRe  = regexp.MustCompile(`(?is)^\s*<code\s*>(.*)</code>\s*$`)

	codeElementRe = regexp.MustCompile(`(?is)<code(\s[^>]*)?>(.*?)</code>`)
	classAttrRe   = regexp.MustCompile(`(?i)\bclass\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)

	inlineCodeRe = regexp.MustCompile(`@([^@\s](?:[^@\n]*[^@\s])?)@`)

	issueRefRe = regexp.MustCompile(`(^|[^\w&#\[/])#(\d+)\b`)

	backgroundRe = regexp.MustCompile(`\{background(?:-color)?:[^{}]*\}`)

	drawioRe = regexp.MustCompile(`(?i)\{\{\s*drawio_attach\(([^)]*)\)\s*\}\}`)

	tocRe = regexp.MustCompile(`\{\{[<>]?toc\}\}`)
)

// normalizeLineEndings は改行コードを\nに統一します
func normalizeLineEndings(content string, _ Config) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// convertCodeBlocks は<pre>ブロックを変換します。
// 言語指定付きの<code>を含む場合は<pre>だけを外し、それ以外は{noformat}にします。
func convertCodeBlocks(content string, _ Config) string {
	return preBlockRe.ReplaceAllStringFunc(content, func(match string) string {
		parts := preBlockRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		// 入れ子の<pre>開始タグは捨てる
		body := preOpenRe.ReplaceAllString(parts[1], "")

		if code := classCodeBodyRe.FindStringSubmatch(body); len(code) > 1 {
			return code[1]
		}
		if bare := bareCodeBodyRe.FindStringSubmatch(body); len(bare) > 1 {
			body = bare[1]
		}
		return "{noformat}" + body + "{noformat}"
	})
}

// convertCodeLanguage は<code class="lang">をJIRAのコードブロックに変換します
func convertCodeLanguage(content string, _ Config) string {
	return codeElementRe.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeElementRe.FindStringSubmatch(match)
		if len(parts) < 3 {
			return match
		}
		attrs, body := parts[1], parts[2]

		if class, ok := classValue(attrs); ok {
			if lang := languageFromClass(class); lang != "" {
				return "{code:language=" + lang + "}" + body + "{code}"
			}
			return "{code}" + body + "{code}"
		}

		// class属性のない<code>
		if strings.Contains(body, "\n") {
			return "{code}" + body + "{code}"
		}
		if strings.TrimSpace(body) == "" {
			return body
		}
		return "{{" + body + "}}"
	})
}

func classValue(attrs string) (string, bool) {
	parts := classAttrRe.FindStringSubmatch(attrs)
	if parts == nil {
		return "", false
	}
	for _, v := range parts[1:] {
		if v != "" {
			return v, true
		}
	}
	return "", true
}

// convertInlineCode は @code@ を {{code}} に変換します
func convertInlineCode(content string, _ Config) string {
	return applyOutsideCode(content, convertInlineCodeSegment)
}

func convertInlineCodeSegment(segment string) string {
	var b strings.Builder
	written := 0
	search := 0
	for search < len(segment) {
		loc := inlineCodeRe.FindStringSubmatchIndex(segment[search:])
		if loc == nil {
			break
		}
		start, end := search+loc[0], search+loc[1]
		// メールアドレスなど単語に隣接する@は対象外
		if wordBefore(segment, start) || wordAfter(segment, end) {
			search = start + 1
			continue
		}
		b.WriteString(segment[written:start])
		b.WriteString("{{")
		b.WriteString(segment[search+loc[2] : search+loc[3]])
		b.WriteString("}}")
		written, search = end, end
	}
	if written == 0 {
		return segment
	}
	b.WriteString(segment[written:])
	return b.String()
}

// convertIssueLinks は #123 をRedmineのチケットへのリンクに変換します
func convertIssueLinks(content string, cfg Config) string {
	// 末尾の/はPipeline.Convertで取り除かれている
	base := cfg.ServerBaseURL
	return applyOutsideCode(content, func(segment string) string {
		return issueRefRe.ReplaceAllStringFunc(segment, func(match string) string {
			parts := issueRefRe.FindStringSubmatch(match)
			if len(parts) < 3 {
				return match
			}
			id := parts[2]
			return parts[1] + "[#" + id + "|" + base + "/issues/" + id + "]"
		})
	})
}

// removeBackground は {background:...} と {background-color:...} を取り除きます
// 入れ子になっていると内側を消した結果がまた一致するので、一致しなくなるまで繰り返す
func removeBackground(content string, _ Config) string {
	for backgroundRe.MatchString(content) {
		content = backgroundRe.ReplaceAllString(content, "")
	}
	return content
}

// convertDrawioAttachments は {{drawio_attach(file)}} を画像の埋め込みに変換します
func convertDrawioAttachments(content string, _ Config) string {
	return drawioRe.ReplaceAllStringFunc(content, func(match string) string {
		parts := drawioRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		// drawio_attach(file.png, size=400) のようなオプションは落とす
		name, _, _ := strings.Cut(parts[1], ",")
		name = strings.TrimSpace(name)
		if name == "" {
			return match
		}
		return "!" + name + "!"
	})
}

// convertTOC は {{>toc}} を {toc} に変換します
func convertTOC(content string, _ Config) string {
	return tocRe.ReplaceAllString(content, "{toc}")
}

// padEmptyCells は空のテーブルセル || を | | にします
func padEmptyCells(content string, _ Config) string {
	return applyOutsideCode(content, func(segment string) string {
		for strings.Contains(segment, "||") {
			segment = strings.ReplaceAll(segment, "||", "| |")
		}
		return segment
	})
}
