package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/qawatake/rm2jira/internal/config"
	"github.com/qawatake/rm2jira/internal/derrors"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "インタラクティブに設定ファイルを作成",
	Long: `インタラクティブに設定ファイルを作成します。
RedmineとJIRAのサーバーURL、プロジェクトなどを入力して、カレントディレクトリにrm2jira.ymlを作成します。
APIキーは設定ファイルには保存せず、REDMINE_API_KEY と JIRA_API_TOKEN 環境変数から読み込みます。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer derrors.Wrap(&err)

		path := configPath
		if path == "" {
			path = config.DefaultPath
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s は既に存在します。上書きする場合は --force を指定してください", path)
		}

		cfg := defaultInitConfig()
		if err := newInitForm(cfg).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return fmt.Errorf("セットアップを中止しました")
			}
			return err
		}
		cfg.Redmine.Server = strings.TrimRight(strings.TrimSpace(cfg.Redmine.Server), "/")
		cfg.Jira.Server = strings.TrimRight(strings.TrimSpace(cfg.Jira.Server), "/")

		if err := cfg.Save(path); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✅ 設定が完了しました！")
		fmt.Fprintf(out, "   設定ファイル: %s\n", path)
		for _, env := range []string{"REDMINE_API_KEY", "JIRA_API_TOKEN"} {
			if os.Getenv(env) == "" {
				fmt.Fprintf(out, "⚠️  %s 環境変数が設定されていません\n", env)
			}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "💡 使用方法:")
		fmt.Fprintln(out, "   rm2jira migrate --dry-run  # 移行対象を確認")
		fmt.Fprintln(out, "   rm2jira migrate            # 移行を実行")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "既存の設定ファイルを上書きします")
	rootCmd.AddCommand(initCmd)
}

func defaultInitConfig() *config.Config {
	return &config.Config{
		Jira: config.JiraConfig{
			AuthType:  "basic",
			IssueType: "Task",
		},
		Migration: config.MigrationConfig{
			Directory:   "./migrated",
			Wiki:        true,
			Concurrency: 5,
		},
	}
}

func newInitForm(cfg *config.Config) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RedmineのURL").
				Placeholder("https://redmine.example.com").
				Value(&cfg.Redmine.Server).
				Validate(validateServerURL),
			huh.NewInput().
				Title("RedmineのプロジェクトID").
				Value(&cfg.Redmine.ProjectID).
				Validate(required("プロジェクトID")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("JIRAサーバーのURL").
				Placeholder("https://your-domain.atlassian.net").
				Value(&cfg.Jira.Server).
				Validate(validateServerURL),
			huh.NewSelect[string]().
				Title("認証方式").
				Options(huh.NewOptions("basic", "bearer")...).
				Value(&cfg.Jira.AuthType),
			huh.NewInput().
				Title("ログインメールアドレス (basic認証のみ)").
				Value(&cfg.Jira.Login),
			huh.NewInput().
				Title("JIRAのプロジェクトキー").
				Placeholder("PRJ").
				Value(&cfg.Jira.ProjectKey).
				Validate(required("プロジェクトキー")),
			huh.NewInput().
				Title("作成するチケットのタイプ").
				Value(&cfg.Jira.IssueType).
				Validate(required("チケットのタイプ")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("移行記録を保存するディレクトリ").
				Value(&cfg.Migration.Directory).
				Validate(required("ディレクトリ")),
			huh.NewConfirm().
				Title("wiki向けの変換も行いますか？").
				Description("コードの言語指定、目次、空のテーブルセルなどを変換します").
				Value(&cfg.Migration.Wiki),
		),
	)
}

func validateServerURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("URLは必須です")
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.New("http(s)://から始まるURLを入力してください")
	}
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%sは必須です", name)
		}
		return nil
	}
}
