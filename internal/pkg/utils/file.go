package utils

import (
	"os"
	"regexp"
)

var jiraKeyRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-[1-9][0-9]*$`)

// EnsureDir はディレクトリが存在することを確認し、存在しない場合は作成します
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// IsValidJIRAKey はJIRAキーの形式をチェックします (例: PRJ-123)
func IsValidJIRAKey(key string) bool {
	return jiraKeyRe.MatchString(key)
}
