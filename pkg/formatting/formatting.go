package formatting

import (
	"strings"
)

// Config は変換時に各ステージへ渡される読み取り専用の設定です
type Config struct {
	// ServerBaseURL はRedmineサーバーのURLです (例: https://redmine.example.com)
	ServerBaseURL string
	// ProjectID はRedmineのプロジェクト識別子です。現在のステージでは参照しません
	ProjectID string
	// Wiki はJIRA wiki記法向けの構造変換を有効にします
	Wiki bool
	// All は予約済みのフラグです。現在どのステージの選択にも影響しません
	All bool
}

// NewConfig は末尾のスラッシュを除いたConfigを作成します
func NewConfig(serverBaseURL, projectID string, wiki, all bool) Config {
	return Config{
		ServerBaseURL: strings.TrimRight(serverBaseURL, "/"),
		ProjectID:     projectID,
		Wiki:          wiki,
		All:           all,
	}
}

// Stage は変換パイプラインの1段です。Applyは純粋関数でなければなりません
type Stage struct {
	Name     string
	WikiOnly bool
	Apply    func(content string, cfg Config) string
}

// Pipeline は順序付きのステージ列です
type Pipeline []Stage

// DefaultPipeline はRedmine記法からJIRA記法への標準の変換順序を返します。
// コードブロックの処理はリンク化やインラインコード変換より前に行う必要があります。
func DefaultPipeline() Pipeline {
	return Pipeline{
		{Name: "line-endings", Apply: normalizeLineEndings},
		{Name: "code-blocks", Apply: convertCodeBlocks},
		{Name: "code-language", WikiOnly: true, Apply: convertCodeLanguage},
		{Name: "inline-code", Apply: convertInlineCode},
		{Name: "issue-links", Apply: convertIssueLinks},
		{Name: "background", WikiOnly: true, Apply: removeBackground},
		{Name: "drawio", Apply: convertDrawioAttachments},
		{Name: "toc", WikiOnly: true, Apply: convertTOC},
		{Name: "empty-cells", WikiOnly: true, Apply: padEmptyCells},
	}
}

// Active は設定に応じて実行されるステージだけを順序を保ったまま返します
func (p Pipeline) Active(cfg Config) Pipeline {
	active := make(Pipeline, 0, len(p))
	for _, s := range p {
		if s.WikiOnly && !cfg.Wiki {
			continue
		}
		active = append(active, s)
	}
	return active
}

// Names はステージ名の一覧を返します
func (p Pipeline) Names() []string {
	names := make([]string, 0, len(p))
	for _, s := range p {
		names = append(names, s.Name)
	}
	return names
}

// Convert は有効なステージを順に適用します
func (p Pipeline) Convert(text string, cfg Config) string {
	if text == "" {
		return text
	}
	cfg.ServerBaseURL = strings.TrimRight(cfg.ServerBaseURL, "/")

	content := text
	for _, s := range p.Active(cfg) {
		if s.Apply == nil {
			continue
		}
		content = s.Apply(content, cfg)
	}
	return content
}

// Convert はRedmineの説明文をJIRA記法に変換します
func Convert(text string, cfg Config) string {
	return DefaultPipeline().Convert(text, cfg)
}
