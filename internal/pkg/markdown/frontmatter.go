package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---\n"

// CreateFrontMatter は値からYAMLフロントマターを作成します
func CreateFrontMatter(data any) (string, error) {
	yamlBytes, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("フロントマターの生成に失敗しました: %w", err)
	}
	return delimiter + string(yamlBytes) + delimiter + "\n", nil
}

// ParseFrontMatter はフロントマターをoutにデコードし、本文を返します。
// フロントマターがない場合はoutに触れずに全体を本文として返します。
func ParseFrontMatter(content string, out any) (string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, delimiter) {
		return content, nil
	}

	rest := content[len(delimiter):]
	var frontMatter, body string
	switch {
	case strings.HasPrefix(rest, delimiter):
		// 空のフロントマター
		body = rest[len(delimiter):]
	default:
		endIndex := strings.Index(rest, "\n"+delimiter)
		if endIndex == -1 {
			return content, fmt.Errorf("フロントマターの終了が見つかりません")
		}
		frontMatter = rest[:endIndex+1]
		body = rest[endIndex+1+len(delimiter):]
	}

	if err := yaml.Unmarshal([]byte(frontMatter), out); err != nil {
		return body, fmt.Errorf("フロントマターのパースに失敗しました: %w", err)
	}
	return strings.TrimPrefix(body, "\n"), nil
}
