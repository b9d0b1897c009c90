package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/qawatake/rm2jira/internal/config"
	"github.com/qawatake/rm2jira/internal/derrors"
	"github.com/qawatake/rm2jira/internal/jira"
	"github.com/qawatake/rm2jira/internal/migrate"
	"github.com/qawatake/rm2jira/internal/redmine"
	"github.com/qawatake/rm2jira/internal/ui"
	"github.com/spf13/cobra"
)

var (
	migrateDryRun  bool
	migrateAll     bool
	migrateSelect  bool
	migrateYes     bool
	migrateFilters []string
	migrateLabels  []string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "RedmineのチケットをJIRAに移行します",
	Long: `設定ファイルのRedmineプロジェクトのチケットを取得し、説明文をJIRA記法に変換してJIRAにチケットを作成します。
移行したチケットは migration.directory に記録され、次回以降はスキップされます。
REDMINE_API_KEY と JIRA_API_TOKEN 環境変数が必要です。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer derrors.Wrap(&err)

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("%w\n'rm2jira init' コマンドで設定ファイルを作成してください", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cmd.Flags().Changed("all") {
			cfg.Migration.All = migrateAll
		}

		m, err := newMigrator(cfg, migrateDryRun)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		items, err := ui.FetchWithSpinner("Redmineのチケット", func() ([]migrate.Item, error) {
			return m.Plan(ctx, redmine.ListOptions{ProjectID: cfg.Redmine.ProjectID, All: cfg.Migration.All})
		})
		if err != nil {
			return err
		}

		if migrateSelect {
			items, err = selectItems(items)
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		pending := printPlan(out, items)
		if pending == 0 {
			fmt.Fprintln(out, "移行するチケットはありません")
			return nil
		}

		if !migrateDryRun && !migrateYes {
			ok, err := ui.PromptForConfirmation(fmt.Sprintf("%d件のチケットを %s に作成しますか？", pending, cfg.Jira.ProjectKey))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "移行を中止しました")
				return nil
			}
		}

		result, runErr := ui.WithSpinnerValue("JIRAにチケットを作成中...", func() (migrate.Result, error) {
			return m.Run(ctx, items, migrateDryRun)
		})
		printResult(out, cfg, result)
		return runErr
	},
}

func init() {
	f := migrateCmd.Flags()
	f.BoolVar(&migrateDryRun, "dry-run", false, "JIRAにチケットを作成せず、移行対象の表示だけを行います")
	f.BoolVar(&migrateAll, "all", false, "終了済みのチケットも移行します")
	f.BoolVar(&migrateSelect, "select", false, "移行するチケットをインタラクティブに選択します")
	f.BoolVarP(&migrateYes, "yes", "y", false, "確認せずに移行します")
	f.StringArrayVar(&migrateFilters, "filter", nil, "変換後に通す拡張の名前 (複数指定可)")
	f.StringSliceVar(&migrateLabels, "label", nil, "作成するチケットに付けるラベル")
	rootCmd.AddCommand(migrateCmd)
}

func newMigrator(cfg *config.Config, dryRun bool) (*migrate.Migrator, error) {
	filters, err := lookupFilters(migrateFilters)
	if err != nil {
		return nil, err
	}

	m := &migrate.Migrator{
		Source:      redmine.NewClient(cfg.Redmine.Server, config.RedmineAPIKey(), cfg.Migration.Concurrency),
		LedgerDir:   cfg.Migration.Directory,
		Formatting:  cfg.Formatting(),
		Filters:     filters,
		IssueType:   cfg.Jira.IssueType,
		Labels:      migrateLabels,
		Concurrency: cfg.Migration.Concurrency,
	}
	// dry-runではJIRAに接続しないのでトークンがなくてもよい
	if !dryRun {
		client, err := jira.NewClient(cfg.Jira, config.JiraAPIToken())
		if err != nil {
			return nil, err
		}
		m.Dest = client
	}
	return m, nil
}

// selectItems は未移行のチケットからfuzzyfinderで選ばれたものだけを返します
func selectItems(items []migrate.Item) ([]migrate.Item, error) {
	var pending []migrate.Item
	for _, item := range items {
		if !item.Skipped() {
			pending = append(pending, item)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	idxs, err := fuzzyfinder.FindMulti(
		pending,
		func(i int) string {
			return fmt.Sprintf("#%d %s", pending[i].Issue.ID, pending[i].Issue.Subject)
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 {
				return ""
			}
			return pending[i].Description
		}),
		fuzzyfinder.WithHeader("Tabで選択、Enterで決定"),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, fmt.Errorf("チケットの選択がキャンセルされました")
		}
		return nil, err
	}

	selected := make([]migrate.Item, 0, len(idxs))
	for _, i := range idxs {
		selected = append(selected, pending[i])
	}
	return selected, nil
}

// printPlan は移行計画を表示し、作成対象の件数を返します
func printPlan(w io.Writer, items []migrate.Item) int {
	pending := 0
	for _, item := range items {
		existing := ""
		if item.Skipped() {
			existing = item.Existing.JiraKey
		} else {
			pending++
		}
		fmt.Fprintln(w, ui.PlanLine(item.Issue.ID, item.Issue.Subject, existing, 100))
	}
	return pending
}

func printResult(w io.Writer, cfg *config.Config, result migrate.Result) {
	for _, r := range result.Created {
		fmt.Fprintf(w, "#%d -> %s %s/browse/%s\n", r.RedmineID, r.JiraKey, cfg.Jira.Server, r.JiraKey)
	}
	fmt.Fprintln(w, ui.Summary(len(result.Created), result.Skipped, result.Failed, result.Planned))
}
