package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterview/internal/chart"
	"clusterview/internal/clusterapi"
	"clusterview/internal/domain"
	"clusterview/internal/logging"
	"clusterview/internal/session"
)

type fakeBackend struct {
	cols       []domain.Column
	result     *domain.AnalyzeResult
	analyzeErr error
	requests   []domain.AnalyzeRequest
}

func (f *fakeBackend) Preview(context.Context, domain.Upload) ([]domain.Column, error) {
	return f.cols, nil
}

func (f *fakeBackend) Analyze(_ context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResult, error) {
	f.requests = append(f.requests, req)
	return f.result, f.analyzeErr
}

var csvUpload = domain.Upload{Name: "data.csv", MIME: "text/csv", Data: []byte("age,id\n31,a\n")}

func newModel(b *fakeBackend) Model {
	m := New(b, Options{KMin: 2, KMax: 10, K: 3}, logging.NewDiscard())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	return updated.(Model)
}

// collect runs cmd and any batched commands, returning the messages this
// package defines.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case fileOpenedMsg, previewDoneMsg, analyzeDoneMsg:
		return []tea.Msg{msg}
	}
	return nil
}

// send delivers msg and then every resulting message, like the runtime would.
func send(m Model, msg tea.Msg) Model {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		updated, cmd := m.Update(next)
		m = updated.(Model)
		queue = append(queue, collect(cmd)...)
	}
	return m
}

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestSelectingCSVRunsPreview(t *testing.T) {
	b := &fakeBackend{cols: []domain.Column{
		{Name: "age", Type: "Numeric", Suggested: true},
		{Name: "id", Type: "Text"},
	}}
	m := send(newModel(b), fileOpenedMsg{path: "data.csv", upload: csvUpload})

	assert.Equal(t, session.PhaseReady, m.Session().Phase())
	assert.Equal(t, []session.Feature{{Name: "age", Checked: true}}, m.Session().Features())
	assert.Equal(t, "Start analysis (1)", m.Session().Trigger().Label)
	assert.Equal(t, focusFeatures, m.focus)
	assert.Contains(t, m.View(), "[x]")
	assert.Contains(t, m.View(), "Start analysis (1)")
}

func TestNonCSVShowsAlert(t *testing.T) {
	m := send(newModel(&fakeBackend{}), fileOpenedMsg{path: "a.png", upload: domain.Upload{Name: "a.png", MIME: "image/png"}})

	assert.Equal(t, session.MsgNotCSV, m.Alert())
	assert.Equal(t, session.PhaseIdle, m.Session().Phase())
	assert.Contains(t, m.View(), session.MsgNotCSV)

	m = send(m, keyEnter)
	assert.Empty(t, m.Alert())
}

func TestToggleAndK(t *testing.T) {
	b := &fakeBackend{cols: []domain.Column{
		{Name: "a", Type: "Numeric", Suggested: true},
		{Name: "b", Type: "Numeric"},
	}}
	m := send(newModel(b), fileOpenedMsg{upload: csvUpload})

	m = send(m, keySpace)
	assert.False(t, m.Session().Trigger().Enabled)
	m = send(m, keyDown)
	m = send(m, keySpace)
	assert.Equal(t, []string{"b"}, m.Session().CheckedFeatures())
	assert.True(t, m.Session().Trigger().Enabled)

	m = send(m, keyRight)
	m = send(m, keyRight)
	assert.Equal(t, 5, m.Session().K())
	for i := 0; i < 10; i++ {
		m = send(m, keyLeft)
	}
	assert.Equal(t, 2, m.Session().K())
}

func TestAnalyzeRendersResults(t *testing.T) {
	b := &fakeBackend{
		cols: []domain.Column{{Name: "age", Type: "Numeric", Suggested: true}},
		result: &domain.AnalyzeResult{
			Data:           []domain.Point{{X: 1, Y: 2, Cluster: 0}, {X: 3, Y: 1, Cluster: 1}},
			K:              3,
			ClusterDetails: domain.ClusterDetails{"0": {"age": 30}, "1": {"age": 52.5}},
		},
	}
	m := send(newModel(b), fileOpenedMsg{upload: csvUpload})
	m = send(m, keyRune('a'))

	require.Len(t, b.requests, 1)
	assert.Equal(t, 3, b.requests[0].K)
	assert.Equal(t, []string{"age"}, b.requests[0].Features)
	assert.Equal(t, session.PhaseRendered, m.Session().Phase())
	assert.Equal(t, session.Trigger{Enabled: true, Label: session.LabelIdle}, m.Session().Trigger())

	out := m.View()
	assert.Contains(t, out, "Cluster 1")
	assert.Contains(t, out, "Cluster 2")
	assert.Contains(t, out, "52.50")
}

func TestAnalyzeServiceErrorAlerts(t *testing.T) {
	b := &fakeBackend{
		cols:       []domain.Column{{Name: "age", Type: "Numeric", Suggested: true}},
		analyzeErr: &clusterapi.APIError{StatusCode: 400, Message: "insufficient data"},
	}
	m := send(newModel(b), fileOpenedMsg{upload: csvUpload})
	m = send(m, keyEnter)

	assert.Equal(t, "Error: insufficient data", m.Alert())
	assert.True(t, m.Session().Trigger().Enabled)
	assert.Contains(t, m.View(), session.Placeholder)
}

func TestStaleAnalyzeResponseIgnored(t *testing.T) {
	b := &fakeBackend{cols: []domain.Column{{Name: "age", Type: "Numeric", Suggested: true}}}
	m := send(newModel(b), fileOpenedMsg{upload: csvUpload})

	ticket, err := m.Session().BeginAnalyze()
	require.NoError(t, err)
	m = send(m, fileOpenedMsg{upload: csvUpload})

	m = send(m, analyzeDoneMsg{token: ticket.Token, result: &domain.AnalyzeResult{Data: []domain.Point{{Cluster: 0}}, K: 3}})
	assert.Nil(t, m.Session().View())
	assert.Equal(t, session.PhaseReady, m.Session().Phase())
}

func TestRenderFailureAlertsAndClearsResults(t *testing.T) {
	b := &fakeBackend{
		cols: []domain.Column{{Name: "age", Type: "Numeric", Suggested: true}},
		result: &domain.AnalyzeResult{
			Data:           []domain.Point{{X: 1, Y: 2, Cluster: 0}},
			K:              3,
			ClusterDetails: domain.ClusterDetails{"0": {"age": 52.5}},
		},
	}
	calls := 0
	render := func(res domain.AnalyzeResult, k int) (chart.View, error) {
		calls++
		if calls > 1 {
			panic("plot exploded")
		}
		return chart.BuildView(res, k)
	}
	m := New(b, Options{KMin: 2, KMax: 10, K: 3, Renderer: render}, logging.NewDiscard())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	m = send(updated.(Model), fileOpenedMsg{upload: csvUpload})

	m = send(m, keyEnter)
	require.Empty(t, m.Alert())
	require.Contains(t, m.View(), "52.50")

	m = send(m, keyEnter)
	assert.Equal(t, session.MsgAnalyzeFailed, m.Alert())
	assert.Equal(t, session.PhaseError, m.Session().Phase())
	assert.Nil(t, m.Session().View())
	assert.Equal(t, session.Trigger{Enabled: true, Label: session.LabelIdle}, m.Session().Trigger())
	out := m.View()
	assert.NotContains(t, out, "52.50")
	assert.Contains(t, out, session.Placeholder)
}

func TestStalePreviewResponseIgnored(t *testing.T) {
	b := &fakeBackend{cols: []domain.Column{{Name: "first", Type: "Numeric", Suggested: true}}}
	m := newModel(b)

	updated, cmd := m.Update(fileOpenedMsg{upload: csvUpload})
	m = updated.(Model)
	firstMsgs := collect(cmd)
	require.Len(t, firstMsgs, 1)

	b.cols = []domain.Column{{Name: "second", Type: "Numeric", Suggested: true}}
	updated, cmd = m.Update(fileOpenedMsg{upload: domain.Upload{Name: "next.csv", MIME: "text/csv", Data: []byte("second\n1\n")}})
	m = updated.(Model)
	secondMsgs := collect(cmd)
	require.Len(t, secondMsgs, 1)

	m = send(m, firstMsgs[0])
	assert.Equal(t, session.PhasePreviewPending, m.Session().Phase())
	assert.Empty(t, m.Session().Features())
	assert.NotContains(t, m.View(), "first")

	m = send(m, secondMsgs[0])
	assert.Equal(t, session.PhaseReady, m.Session().Phase())
	assert.Equal(t, []session.Feature{{Name: "second", Checked: true}}, m.Session().Features())
	f, ok := m.Session().File()
	require.True(t, ok)
	assert.Equal(t, "next.csv", f.Name)
}

func TestAnalyzeWithoutFileAlerts(t *testing.T) {
	m := newModel(&fakeBackend{})
	m.focus = focusFeatures
	m = send(m, keyEnter)
	assert.Equal(t, session.MsgNoFile, m.Alert())
}

func TestOpenFileCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n"), 0o644))

	msgs := collect(openFile(path))
	require.Len(t, msgs, 1)
	opened := msgs[0].(fileOpenedMsg)
	require.NoError(t, opened.err)
	assert.Equal(t, "points.csv", opened.upload.Name)

	msgs = collect(openFile(filepath.Join(t.TempDir(), "missing.csv")))
	assert.Error(t, msgs[0].(fileOpenedMsg).err)
}

func TestQuit(t *testing.T) {
	m := newModel(&fakeBackend{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
