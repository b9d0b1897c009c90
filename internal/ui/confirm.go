package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled は確認がキャンセルされたときのエラーです
var ErrCanceled = errors.New("入力がキャンセルされました")

type confirmModel struct {
	textInput textinput.Model
	prompt    string
	err       error
	done      bool
	result    bool
}

func newConfirmModel(prompt string) confirmModel {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 10
	ti.Width = 20
	ti.Placeholder = "y/N"

	return confirmModel{
		textInput: ti,
		prompt:    prompt,
	}
}

func (m confirmModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.err = ErrCanceled
			m.done = true
			return m, tea.Quit
		case "enter":
			m.result = isYes(m.textInput.Value())
			m.done = true
			return m, tea.Quit
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.prompt, m.textInput.View(), HelpStyle.Render("y/yes で実行、その他で中止"))
}

func isYes(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "y" || v == "yes"
}

// PromptForConfirmation はbubbletea textinputを使用してy/n確認を取得します
func PromptForConfirmation(prompt string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(prompt))
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	result := finalModel.(confirmModel)
	if result.err != nil {
		return false, result.err
	}

	return result.result, nil
}
