package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestConfirmModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		key      tea.KeyType
		expected bool
		err      error
	}{
		{name: "y", input: "y", key: tea.KeyEnter, expected: true},
		{name: "YES", input: "YES", key: tea.KeyEnter, expected: true},
		{name: "空", input: "", key: tea.KeyEnter, expected: false},
		{name: "no", input: "no", key: tea.KeyEnter, expected: false},
		{name: "esc", input: "y", key: tea.KeyEsc, err: ErrCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var m tea.Model = newConfirmModel("続行しますか？")
			if tt.input != "" {
				m = typeText(m, tt.input)
			}
			m, cmd := m.Update(tea.KeyMsg{Type: tt.key})
			require.NotNil(t, cmd)

			result := m.(confirmModel)
			assert.True(t, result.done)
			assert.Equal(t, tt.expected, result.result)
			assert.Equal(t, tt.err, result.err)
		})
	}
}

func TestIsYes(t *testing.T) {
	t.Parallel()

	for input, expected := range map[string]bool{
		"y":     true,
		" Yes ": true,
		"n":     false,
		"yeah":  false,
	} {
		assert.Equal(t, expected, isYes(input), input)
	}
}

func TestPlanLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#12     Fix login", ansi.Strip(PlanLine(12, "Fix login", "", 0)))
	assert.Equal(t, "#3      done (移行済み: PRJ-1)", ansi.Strip(PlanLine(3, "done", "PRJ-1", 0)))

	truncated := ansi.Strip(PlanLine(1, strings.Repeat("a", 100), "", 20))
	assert.Equal(t, 20, ansi.StringWidth(truncated))
	assert.True(t, strings.HasSuffix(truncated, "…"))
}

func TestSummary(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(Summary(2, 1, 0, 0))
	assert.Contains(t, out, "作成: 2")
	assert.Contains(t, out, "スキップ: 1")
	assert.NotContains(t, out, "失敗")
	assert.NotContains(t, out, "作成予定")

	out = ansi.Strip(Summary(0, 0, 3, 4))
	assert.Contains(t, out, "失敗: 3")
	assert.Contains(t, out, "作成予定: 4")
}

func TestSpinnerWritesToGivenWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := newSpinner(&buf)
	s.Update("処理中")
	assert.Equal(t, " 処理中", s.spinner.Suffix)
}
