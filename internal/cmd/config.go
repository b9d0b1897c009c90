package cmd

import (
	"fmt"
	"io"

	"github.com/Code-Hex/dd"
	"github.com/qawatake/rm2jira/internal/config"
	"github.com/qawatake/rm2jira/internal/derrors"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "読み込まれた設定を表示します",
	Long:  `環境変数での上書きを反映した設定を表示します。APIキーの値は表示しません。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer derrors.Wrap(&err)

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func printConfig(w io.Writer, cfg *config.Config) error {
	if _, err := fmt.Fprintln(w, dd.Dump(cfg)); err != nil {
		return err
	}
	for _, s := range []struct {
		env string
		set bool
	}{
		{"REDMINE_API_KEY", config.RedmineAPIKey() != ""},
		{"JIRA_API_TOKEN", config.JiraAPIToken() != ""},
	} {
		state := "未設定"
		if s.set {
			state = "設定済み"
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", s.env, state); err != nil {
			return err
		}
	}
	return nil
}
