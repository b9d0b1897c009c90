package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/qawatake/rm2jira/internal/pkg/markdown"
	"github.com/qawatake/rm2jira/internal/pkg/utils"
)

var fileNameRe = regexp.MustCompile(`^redmine-(\d+)\.md$`)

// Record は移行済みチケット1件のローカル記録です
type Record struct {
	RedmineID  int       `yaml:"redmine_id"`
	RedmineURL string    `yaml:"redmine_url,omitempty"`
	JiraKey    string    `yaml:"jira_key"`
	Subject    string    `yaml:"subject"`
	MigratedAt time.Time `yaml:"migrated_at"`
	// Body はJIRAに送った変換後の説明文です
	Body     string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// FileName は記録のファイル名を返します
func (r *Record) FileName() string {
	return fmt.Sprintf("redmine-%d.md", r.RedmineID)
}

// ToMarkdown は記録をフロントマター付きのテキストに変換します
func (r *Record) ToMarkdown() (string, error) {
	frontMatter, err := markdown.CreateFrontMatter(r)
	if err != nil {
		return "", err
	}
	return frontMatter + r.Body, nil
}

// SaveToFile は記録をファイルに保存します
func (r *Record) SaveToFile(dir string) (string, error) {
	if !utils.IsValidJIRAKey(r.JiraKey) {
		return "", fmt.Errorf("不正なJIRAキーです: %q", r.JiraKey)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("ディレクトリの作成に失敗しました: %w", err)
	}

	content, err := r.ToMarkdown()
	if err != nil {
		return "", err
	}

	filePath := filepath.Join(dir, r.FileName())
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}

	r.FilePath = filePath
	return filePath, nil
}

// FromFile はファイルから記録を読み込みます
func FromFile(filePath string) (*Record, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("ファイルの読み込みに失敗しました: %w", err)
	}

	record := &Record{FilePath: filePath}
	body, err := markdown.ParseFrontMatter(string(content), record)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	record.Body = body

	if !utils.IsValidJIRAKey(record.JiraKey) {
		return nil, fmt.Errorf("%s: 不正なJIRAキーです: %q", filePath, record.JiraKey)
	}
	// ファイル名とフロントマターのIDが食い違っていないか
	if m := fileNameRe.FindStringSubmatch(filepath.Base(filePath)); m != nil {
		if id, _ := strconv.Atoi(m[1]); id != record.RedmineID {
			return nil, fmt.Errorf("%s: redmine_idがファイル名と一致しません: %d", filePath, record.RedmineID)
		}
	}
	return record, nil
}

// Load はディレクトリ内の記録をRedmineのチケットIDをキーにして読み込みます。
// ディレクトリが存在しない場合は空の結果を返します。
func Load(dir string) (map[int]*Record, error) {
	records := make(map[int]*Record)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return records, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "redmine-*.md"))
	if err != nil {
		return nil, fmt.Errorf("記録ファイルの検索に失敗しました: %w", err)
	}
	for _, f := range files {
		if !fileNameRe.MatchString(filepath.Base(f)) {
			continue
		}
		record, err := FromFile(f)
		if err != nil {
			return nil, err
		}
		records[record.RedmineID] = record
	}
	return records, nil
}
