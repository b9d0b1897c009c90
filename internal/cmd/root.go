package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/qawatake/rm2jira/internal/config"
	"github.com/qawatake/rm2jira/internal/verbose"
	"github.com/spf13/cobra"
)

// APIキーを置いておく.envファイル
const dotEnvPath = ".env"

var (
	configPath  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "rm2jira",
	Short: "RedmineのチケットをJIRAに移行するCLI",
	Long: `rm2jiraはRedmineのチケットの説明文をJIRA記法に変換し、JIRAにチケットを作成するCLIツールです。
変換だけを試す場合は convert、表示を確認する場合は preview を使います。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose.Enabled = verboseFlag
		return config.LoadDotEnv(dotEnvPath)
	},
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "設定ファイルのパス (デフォルト: ./rm2jira.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "詳細なログを標準エラーに出力します")
}

// readInput は引数のファイルか、引数がなければ標準入力から変換元のテキストを読み込みます
func readInput(args []string, stdin io.Reader) (name string, content string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("標準入力の読み込みに失敗しました: %w", err)
		}
		return "stdin", string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("ファイルの読み込みに失敗しました: %w", err)
	}
	return filepath.Base(args[0]), string(data), nil
}
