package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	createdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// PlanLine は移行計画の1行を幅に収めて返します
func PlanLine(redmineID int, subject, existingKey string, width int) string {
	line := fmt.Sprintf("%s %s", keyStyle.Render(fmt.Sprintf("#%-6d", redmineID)), subject)
	if existingKey != "" {
		line = skippedStyle.Render(fmt.Sprintf("#%-6d %s (移行済み: %s)", redmineID, subject, existingKey))
	}
	if width > 0 {
		line = ansi.TruncateWc(line, width, "…")
	}
	return line
}

// Summary は移行結果の集計を枠付きで返します
func Summary(created, skipped, failed, planned int) string {
	lines := []string{TitleStyle.Render("移行結果")}
	if planned > 0 {
		lines = append(lines, fmt.Sprintf("作成予定: %d", planned))
	}
	lines = append(lines,
		createdStyle.Render(fmt.Sprintf("作成: %d", created)),
		skippedStyle.Render(fmt.Sprintf("スキップ: %d", skipped)),
	)
	if failed > 0 {
		lines = append(lines, failedStyle.Render(fmt.Sprintf("失敗: %d", failed)))
	}
	return summaryBoxStyle.Render(strings.Join(lines, "\n"))
}
