package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner は処理中のスピナーを表示するためのwrapperです。
// 変換結果を標準出力に流せるようにスピナーは標準エラーに出します
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner は標準エラーに表示するスピナーを作成します
func NewSpinner() *Spinner {
	return newSpinner(os.Stderr)
}

func newSpinner(w io.Writer) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	return &Spinner{spinner: s}
}

func (s *Spinner) Start(message string) {
	s.spinner.Suffix = " " + message
	s.spinner.Start()
}

func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Update はスピナーのメッセージを更新します
func (s *Spinner) Update(message string) {
	s.spinner.Lock()
	s.spinner.Suffix = " " + message
	s.spinner.Unlock()
}

// WithSpinner は指定された処理中にスピナーを表示します
func WithSpinner(message string, fn func() error) error {
	s := NewSpinner()
	s.Start(message)
	defer s.Stop()
	return fn()
}

// WithSpinnerValue は指定された処理中にスピナーを表示し、値を返します
func WithSpinnerValue[T any](message string, fn func() (T, error)) (T, error) {
	s := NewSpinner()
	s.Start(message)
	defer s.Stop()
	return fn()
}

// FetchWithSpinner はRedmineからの取得処理でよく使われるパターンのヘルパー関数です
func FetchWithSpinner[T any](resource string, fn func() (T, error)) (T, error) {
	return WithSpinnerValue(resource+"を取得中...", fn)
}
