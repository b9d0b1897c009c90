package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// コード領域は他の規則に触らせないよう退避しておき、最後に戻す
var (
	codeMacroRe = regexp.MustCompile(`(?s)\{code(?::([^}]*))?\}(.*?)\{code\}`)
	noformatRe  = regexp.MustCompile(`(?s)\{noformat\}(.*?)\{noformat\}`)
	monospaceRe = regexp.MustCompile(`\{\{([^{}\n]+)\}\}`)
	placeholder = regexp.MustCompile("\x00(\\d+)\x00")
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// 上から順に適用する
var rules = []rule{
	{regexp.MustCompile(`(?m)^[ \t]*\{toc(?::[^}]*)?\}[ \t]*\n?`), ""},
	{regexp.MustCompile(`\{toc(?::[^}]*)?\}`), ""},
	{regexp.MustCompile(`\{color(?::[^}]*)?\}`), ""},
	// リストは見出しより先に変換する。変換後の # と区別がつかなくなるため
	{regexp.MustCompile(`(?m)^### `), "      1. "},
	{regexp.MustCompile(`(?m)^## `), "   1. "},
	{regexp.MustCompile(`(?m)^# `), "1. "},
	{regexp.MustCompile(`(?m)^\*\*\* `), "    - "},
	{regexp.MustCompile(`(?m)^\*\* `), "  - "},
	{regexp.MustCompile(`(?m)^\* `), "- "},
	{regexp.MustCompile(`(?m)^h1\.\s+`), "# "},
	{regexp.MustCompile(`(?m)^h2\.\s+`), "## "},
	{regexp.MustCompile(`(?m)^h3\.\s+`), "### "},
	{regexp.MustCompile(`(?m)^h4\.\s+`), "#### "},
	{regexp.MustCompile(`(?m)^h5\.\s+`), "##### "},
	{regexp.MustCompile(`(?m)^h6\.\s+`), "###### "},
	{regexp.MustCompile(`(?m)^bq\.\s+`), "> "},
	// !file.png|thumbnail! -> ![file.png](file.png)
	{regexp.MustCompile(`!([^!\s|]+)(?:\|[^!\n]*)?!`), "![$1]($1)"},
	{regexp.MustCompile(`\[([^|\]\n]+)\|([^\]\n]+)\]`), "[$1]($2)"},
	{regexp.MustCompile(`\[(https?://[^\]|\s]+)\]`), "<$1>"},
	{regexp.MustCompile(`(^|[\s(])\*([^*\s](?:[^*\n]*[^*\s])?)\*($|[\s).,:;!?])`), "$1**$2**$3"},
	{regexp.MustCompile(`(^|[\s(])-([^-\s](?:[^-\n]*[^-\s])?)-($|[\s).,:;!?])`), "$1~~$2~~$3"},
}

// ConvertJiraToMarkdown はJIRA記法をプレビュー用のMarkdownに変換します
func ConvertJiraToMarkdown(input string) string {
	if input == "" {
		return input
	}

	content := strings.ReplaceAll(input, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var saved []string
	stash := func(s string) string {
		saved = append(saved, s)
		return "\x00" + strconv.Itoa(len(saved)-1) + "\x00"
	}

	content = replaceBlocks(content, codeMacroRe, func(parts []string) string {
		return stash(fence(codeLanguage(parts[1]), parts[2]))
	})
	content = replaceBlocks(content, noformatRe, func(parts []string) string {
		return stash(fence("", parts[1]))
	})
	content = monospaceRe.ReplaceAllStringFunc(content, func(match string) string {
		return stash("`" + monospaceRe.FindStringSubmatch(match)[1] + "`")
	})

	for _, r := range rules {
		content = r.re.ReplaceAllString(content, r.repl)
	}
	content = convertTables(content)

	return placeholder.ReplaceAllStringFunc(content, func(match string) string {
		i, err := strconv.Atoi(placeholder.FindStringSubmatch(match)[1])
		if err != nil || i >= len(saved) {
			return match
		}
		return saved[i]
	})
}

// replaceBlocks はブロック要素を置き換え、前後が行頭・行末でなければ改行を補います
func replaceBlocks(content string, re *regexp.Regexp, fn func(parts []string) string) string {
	locs := re.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return content
	}

	var b strings.Builder
	cursor := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		b.WriteString(content[cursor:start])
		if start > 0 && content[start-1] != '\n' {
			b.WriteByte('\n')
		}

		parts := make([]string, len(loc)/2)
		for i := range parts {
			if loc[2*i] >= 0 {
				parts[i] = content[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(fn(parts))

		if end < len(content) && content[end] != '\n' {
			b.WriteByte('\n')
		}
		cursor = end
	}
	b.WriteString(content[cursor:])
	return b.String()
}

func fence(language, body string) string {
	return "```" + language + "\n" + strings.Trim(body, "\n") + "\n```"
}

// codeLanguage は {code:language=ruby|title=x} や {code:ruby} から言語名を取り出します
func codeLanguage(params string) string {
	for _, param := range strings.Split(params, "|") {
		param = strings.TrimSpace(param)
		if lang, ok := strings.CutPrefix(param, "language="); ok {
			return lang
		}
		if param != "" && !strings.Contains(param, "=") {
			return param
		}
	}
	return ""
}

// convertTables は連続する | で囲まれた行をMarkdownの表に変換します。
// 空セルが | | に置き換えられていると見出し行を区別できないので、先頭行を見出しとして扱います
func convertTables(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		if !isTableRow(lines[i]) {
			result = append(result, lines[i])
			i++
			continue
		}

		var rows [][]string
		columns := 0
		for ; i < len(lines) && isTableRow(lines[i]); i++ {
			cells := tableCells(lines[i])
			columns = max(columns, len(cells))
			rows = append(rows, cells)
		}

		for j, cells := range rows {
			for len(cells) < columns {
				cells = append(cells, "")
			}
			result = append(result, "| "+strings.Join(cells, " | ")+" |")
			if j == 0 {
				result = append(result, "|"+strings.Repeat(" --- |", columns))
			}
		}
	}

	return strings.Join(result, "\n")
}

func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= 2 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

func tableCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	sep := "|"
	if strings.HasPrefix(trimmed, "||") && strings.HasSuffix(trimmed, "||") && len(trimmed) > 4 {
		sep = "||"
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, sep), sep)

	cells := strings.Split(inner, sep)
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}
