package extension

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qawatake/rm2jira/internal/verbose"
)

// Prefix は拡張として扱う実行ファイル名の接頭辞です
const Prefix = "rm2jira-"

// Manager はPATH上のrm2jira拡張を管理します
type Manager struct {
	// PathEnv はPATHの代わりに探索するディレクトリ一覧です。空ならPATHを使います
	PathEnv string
}

// NewManager は新しいManagerを作成します
func NewManager() *Manager {
	return &Manager{}
}

// FindExtensions はPATH上のrm2jira拡張を名前順で返します。同名の拡張はPATHで先に見つかったものを優先します
func (m *Manager) FindExtensions() ([]Extension, error) {
	extensions := make([]Extension, 0)

	pathEnv := m.PathEnv
	if pathEnv == "" {
		pathEnv = os.Getenv("PATH")
	}
	paths := filepath.SplitList(pathEnv)

	seen := make(map[string]bool)

	for _, path := range paths {
		files, err := os.ReadDir(path)
		if err != nil {
			continue
		}

		for _, file := range files {
			name := file.Name()
			if !strings.HasPrefix(name, Prefix) {
				continue
			}

			extName := strings.TrimPrefix(name, Prefix)
			if extName == "" || seen[extName] {
				continue
			}

			fullPath := filepath.Join(path, name)
			if info, err := os.Stat(fullPath); err == nil && isExecutable(info) {
				seen[extName] = true
				extensions = append(extensions, Extension{
					Name: extName,
					Path: fullPath,
				})
			}
		}
	}

	sort.Slice(extensions, func(i, j int) bool {
		return extensions[i].Name < extensions[j].Name
	})

	return extensions, nil
}

// Lookup は名前から拡張を探します
func (m *Manager) Lookup(name string) (Extension, error) {
	extensions, err := m.FindExtensions()
	if err != nil {
		return Extension{}, fmt.Errorf("拡張の検索に失敗しました: %w", err)
	}
	for _, ext := range extensions {
		if ext.Name == name {
			return ext, nil
		}
	}
	return Extension{}, fmt.Errorf("extension '%s' not found", name)
}

// LookupAll は名前の順に拡張を探します。1つでも見つからなければエラーを返します
func (m *Manager) LookupAll(names []string) ([]Extension, error) {
	result := make([]Extension, 0, len(names))
	for _, name := range names {
		ext, err := m.Lookup(name)
		if err != nil {
			return nil, err
		}
		result = append(result, ext)
	}
	return result, nil
}

// Extension はrm2jira拡張です
type Extension struct {
	Name string
	Path string
}

// Filter は標準入力にinputを渡して拡張を実行し、標準出力を返します
func (e Extension) Filter(ctx context.Context, input string) (string, error) {
	verbose.Printf("Executing extension: %s\n", e.Path)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("拡張 %s の実行に失敗しました: %w: %s", e.Name, err, msg)
		}
		return "", fmt.Errorf("拡張 %s の実行に失敗しました: %w", e.Name, err)
	}
	return stdout.String(), nil
}

func isExecutable(info os.FileInfo) bool {
	mode := info.Mode()
	return mode.IsRegular() && (mode.Perm()&0111) != 0
}
