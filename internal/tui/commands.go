package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"clusterview/internal/domain"
	"clusterview/internal/session"
)

type fileOpenedMsg struct {
	path   string
	upload domain.Upload
	err    error
}

type previewDoneMsg struct {
	token session.Token
	cols  []domain.Column
	err   error
}

type analyzeDoneMsg struct {
	token  session.Token
	result *domain.AnalyzeResult
	err    error
}

func openFile(path string) tea.Cmd {
	return func() tea.Msg {
		u, err := session.OpenFile(path)
		return fileOpenedMsg{path: path, upload: u, err: err}
	}
}

func runPreview(b domain.Backend, t session.PreviewTicket) tea.Cmd {
	return func() tea.Msg {
		cols, err := b.Preview(context.Background(), t.Upload)
		return previewDoneMsg{token: t.Token, cols: cols, err: err}
	}
}

func runAnalyze(b domain.Backend, t session.AnalyzeTicket) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Analyze(context.Background(), t.Request)
		return analyzeDoneMsg{token: t.Token, result: res, err: err}
	}
}
