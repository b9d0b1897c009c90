package cmd

import (
	"errors"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/qawatake/rm2jira/internal/derrors"
	"github.com/qawatake/rm2jira/pkg/formatting"
	"github.com/qawatake/rm2jira/pkg/markdown"
	"github.com/spf13/cobra"
)

var (
	previewServer string
	previewRaw    bool
	previewWidth  int
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "変換結果をターミナルでプレビューします",
	Long: `Redmineの記法のテキストをwikiモードでJIRA記法に変換し、Markdownとしてターミナルに表示します。
JIRAでの見え方をおおまかに確認するためのもので、JIRAの描画と完全には一致しません。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer derrors.Wrap(&err)

		fc, err := resolveFormatting(cmd.Flags(), formattingFlags{server: previewServer})
		if err != nil {
			return err
		}
		if fc.ServerBaseURL == "" {
			return errors.New("RedmineのURLが分かりません。'rm2jira init' で設定ファイルを作成するか --server を指定してください")
		}
		// プレビューは常にwikiモード
		fc.Wiki = true

		_, input, err := readInput(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		out, err := renderPreview(formatting.Convert(input, fc), previewRaw, previewWidth)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewServer, "server", "", "RedmineのURL")
	previewCmd.Flags().BoolVar(&previewRaw, "raw", false, "Markdownを整形せずに出力します")
	previewCmd.Flags().IntVar(&previewWidth, "width", 100, "折り返す幅")
	rootCmd.AddCommand(previewCmd)
}

// renderPreview はJIRA記法のテキストをMarkdownに変換し、glamourで整形します
func renderPreview(jiraText string, raw bool, width int) (string, error) {
	md := markdown.ConvertJiraToMarkdown(jiraText)
	if raw {
		return md, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithEmoji(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}
