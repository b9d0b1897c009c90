package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/qawatake/rm2jira/internal/config"
	"github.com/qawatake/rm2jira/internal/derrors"
	"github.com/qawatake/rm2jira/internal/extension"
	"github.com/qawatake/rm2jira/internal/migrate"
	"github.com/qawatake/rm2jira/internal/redmine"
	"github.com/qawatake/rm2jira/internal/textdiff"
	"github.com/qawatake/rm2jira/internal/verbose"
	"github.com/qawatake/rm2jira/pkg/formatting"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	convertWiki    bool
	convertAll     bool
	convertServer  string
	convertProject string
	convertDiff    bool
	convertStages  bool
	convertFilters []string
	convertIssue   int
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Redmineの記法をJIRA記法に変換します",
	Long: `Redmineの記法で書かれたテキストをJIRA記法に変換して標準出力に書き出します。
ファイルを指定しない場合は標準入力から読み込みます。--issue を指定するとRedmineのチケットの説明文を変換します。
設定ファイルがあればサーバーのURLやwikiモードはそこから読み込み、フラグで上書きできます。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer derrors.Wrap(&err)

		fc, err := resolveFormatting(cmd.Flags(), formattingFlags{
			wiki:    convertWiki,
			all:     convertAll,
			server:  convertServer,
			project: convertProject,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if convertStages {
			return printStages(out, fc)
		}
		if fc.ServerBaseURL == "" {
			return errors.New("RedmineのURLが分かりません。'rm2jira init' で設定ファイルを作成するか --server を指定してください")
		}

		filters, err := lookupFilters(convertFilters)
		if err != nil {
			return err
		}

		var name, input string
		if cmd.Flags().Changed("issue") {
			if len(args) > 0 {
				return errors.New("--issue とファイルは同時に指定できません")
			}
			client := redmine.NewClient(fc.ServerBaseURL, config.RedmineAPIKey(), 1)
			name, input, err = fetchDescription(cmd.Context(), client, convertIssue)
		} else {
			name, input, err = readInput(args, cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		return runConvert(cmd.Context(), out, name, input, convertOptions{
			formatting: fc,
			filters:    filters,
			diff:       convertDiff,
			color:      isTerminal(out),
		})
	},
}

func init() {
	f := convertCmd.Flags()
	f.BoolVar(&convertWiki, "wiki", false, "wiki向けの変換(コードの言語指定・目次・空セルなど)も行います")
	f.BoolVar(&convertAll, "all", false, "allモードで変換します")
	f.StringVar(&convertServer, "server", "", "RedmineのURL (例: https://redmine.example.com)")
	f.StringVar(&convertProject, "project", "", "RedmineのプロジェクトID")
	f.BoolVar(&convertDiff, "diff", false, "変換結果ではなく変換前後の差分を表示します")
	f.BoolVar(&convertStages, "stages", false, "実行される変換ステージを表示します")
	f.StringArrayVar(&convertFilters, "filter", nil, "変換後に通す拡張の名前 (複数指定可)")
	f.IntVar(&convertIssue, "issue", 0, "変換するRedmineのチケット番号")
	rootCmd.AddCommand(convertCmd)
}

type formattingFlags struct {
	wiki    bool
	all     bool
	server  string
	project string
}

// resolveFormatting は設定ファイルの値にフラグでの指定を重ねた変換設定を返します。
// 設定ファイルがなければフラグだけで組み立てます
func resolveFormatting(flags *pflag.FlagSet, ff formattingFlags) (formatting.Config, error) {
	var base formatting.Config
	cfg, err := config.LoadConfig(configPath)
	switch {
	case err == nil:
		base = cfg.Formatting()
	case errors.Is(err, config.ErrNotFound):
		verbose.Printf("%v (フラグの値だけで変換します)\n", err)
	default:
		return formatting.Config{}, err
	}

	if flags.Changed("wiki") {
		base.Wiki = ff.wiki
	}
	if flags.Changed("all") {
		base.All = ff.all
	}
	if flags.Changed("server") {
		base.ServerBaseURL = ff.server
	}
	if flags.Changed("project") {
		base.ProjectID = ff.project
	}
	return formatting.NewConfig(base.ServerBaseURL, base.ProjectID, base.Wiki, base.All), nil
}

// fetchDescription はRedmineのチケットの説明文を取得します
func fetchDescription(ctx context.Context, client *redmine.Client, id int) (name, description string, err error) {
	if id <= 0 {
		return "", "", fmt.Errorf("チケット番号が不正です: %d", id)
	}
	issue, err := client.GetIssue(ctx, id)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("redmine-%d", issue.ID), issue.Description, nil
}

func printStages(w io.Writer, fc formatting.Config) error {
	for _, name := range formatting.DefaultPipeline().Active(fc).Names() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func lookupFilters(names []string) ([]migrate.Filter, error) {
	if len(names) == 0 {
		return nil, nil
	}
	exts, err := extension.NewManager().LookupAll(names)
	if err != nil {
		return nil, err
	}
	filters := make([]migrate.Filter, 0, len(exts))
	for _, ext := range exts {
		filters = append(filters, ext)
	}
	return filters, nil
}

type convertOptions struct {
	formatting formatting.Config
	filters    []migrate.Filter
	diff       bool
	color      bool
}

func runConvert(ctx context.Context, w io.Writer, name, input string, opts convertOptions) error {
	verbose.Printf("stages: %s\n", strings.Join(formatting.DefaultPipeline().Active(opts.formatting).Names(), ", "))

	m := &migrate.Migrator{Formatting: opts.formatting, Filters: opts.filters}
	output, err := m.Describe(ctx, input)
	if err != nil {
		return err
	}

	if !opts.diff {
		_, err := io.WriteString(w, output)
		return err
	}

	d, err := textdiff.Unified(name, input, output, opts.color)
	if err != nil {
		return fmt.Errorf("差分の作成に失敗しました: %w", err)
	}
	_, err = io.WriteString(w, d)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
