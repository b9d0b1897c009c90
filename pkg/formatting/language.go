package formatting

import (
	"regexp"
	"strings"
)

var languageNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9+#._-]*$`)

// Redmine(CodeRay)やMarkdown由来の言語名をJIRAのcodeマクロの言語名に寄せる
var languageAliases = map[string]string{
	"c++":         "cpp",
	"cs":          "csharp",
	"c#":          "csharp",
	"golang":      "go",
	"js":          "javascript",
	"jsx":         "javascript",
	"ts":          "typescript",
	"py":          "python",
	"python3":     "python",
	"rb":          "ruby",
	"sh":          "bash",
	"shell":       "bash",
	"zsh":         "bash",
	"console":     "bash",
	"yml":         "yaml",
	"xhtml":       "html",
	"erb":         "html",
	"rhtml":       "html",
	"objective-c": "objc",
	"kt":          "kotlin",
	"ps1":         "powershell",
	"md":          "markdown",
	"text":        "none",
	"plaintext":   "none",
}

// languageFromClass はclass属性値から言語名を取り出します。取り出せなければ空文字を返します
func languageFromClass(class string) string {
	for _, field := range strings.Fields(strings.ToLower(class)) {
		field = strings.TrimPrefix(field, "language-")
		field = strings.TrimPrefix(field, "lang-")
		switch field {
		case "", "syntaxhl", "code":
			continue
		}
		if !languageNameRe.MatchString(field) {
			return ""
		}
		return canonicalLanguage(field)
	}
	return ""
}

func canonicalLanguage(name string) string {
	if alias, ok := languageAliases[name]; ok {
		return alias
	}
	return name
}
