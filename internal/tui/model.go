package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clusterview/internal/domain"
	"clusterview/internal/logging"
	"clusterview/internal/session"
)

type focus int

const (
	focusPicker focus = iota
	focusFeatures
)

// Options configures a new Model.
type Options struct {
	StartDir    string
	InitialFile string
	KMin        int
	KMax        int
	K           int
	// Renderer overrides how analyze results become the results view.
	Renderer session.Renderer
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	backend domain.Backend
	sess    *session.Session
	logger  *logging.Logger
	keys    keyMap
	help    help.Model
	picker  filepicker.Model
	spinner spinner.Model
	results viewport.Model
	focus   focus
	cursor  int
	alert   string
	initial string
	width   int
	height  int
	ready   bool
}

// New creates a new TUI model instance.
func New(backend domain.Backend, opts Options, logger *logging.Logger) Model {
	fp := filepicker.New()
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}
	fp.Height = 8

	var sessOpts []session.Option
	if opts.Renderer != nil {
		sessOpts = append(sessOpts, session.WithRenderer(opts.Renderer))
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = accentStyle

	return Model{
		backend: backend,
		sess:    session.New(opts.KMin, opts.KMax, opts.K, sessOpts...),
		logger:  logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
		picker:  fp,
		spinner: sp,
		results: viewport.New(0, 0),
		focus:   focusPicker,
		initial: opts.InitialFile,
	}
}

// Session exposes the selection state, mainly for tests.
func (m Model) Session() *session.Session { return m.sess }

// Alert is the blocking notice currently shown, if any.
func (m Model) Alert() string { return m.alert }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.picker.Init()}
	if m.initial != "" {
		cmds = append(cmds, openFile(m.initial))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.results.Width = max(20, msg.Width-2)
		m.results.Height = max(5, msg.Height-m.controlsHeight()-4)
		m.refreshResults()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fileOpenedMsg:
		return m.handleFileOpened(msg)

	case previewDoneMsg:
		return m.handlePreviewDone(msg)

	case analyzeDoneMsg:
		return m.handleAnalyzeDone(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.alert = ""
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Focus) {
		m.switchFocus()
		return m, nil
	}
	if key.Matches(msg, m.keys.Scroll) {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	if m.focus == focusPicker {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.sess.Features())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		feats := m.sess.Features()
		if m.cursor < len(feats) {
			if err := m.sess.ToggleFeature(feats[m.cursor].Name); err != nil {
				m.logger.Debug("", "toggle %s: %v", feats[m.cursor].Name, err)
			}
		}
	case key.Matches(msg, m.keys.KDown):
		m.sess.SetK(m.sess.K() - 1)
	case key.Matches(msg, m.keys.KUp):
		m.sess.SetK(m.sess.K() + 1)
	case key.Matches(msg, m.keys.Analyze):
		return m.startAnalyze()
	case key.Matches(msg, m.keys.Open):
		m.focus = focusPicker
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m, tea.Batch(cmd, openFile(path))
	}
	return m, cmd
}

func (m *Model) switchFocus() {
	if m.focus == focusPicker {
		if _, ok := m.sess.File(); ok {
			m.focus = focusFeatures
		}
		return
	}
	m.focus = focusPicker
}

func (m Model) handleFileOpened(msg fileOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("", "open %s: %v", msg.path, msg.err)
		m.alert = fmt.Sprintf("Could not open %s.", msg.path)
		return m, nil
	}
	if err := m.sess.SelectFile(msg.upload); err != nil {
		m.logger.Info("", "rejected %s (%s)", msg.upload.Name, msg.upload.MIME)
		m.alert = session.MsgNotCSV
		return m, nil
	}
	ticket, err := m.sess.BeginPreview()
	if err != nil {
		return m, nil
	}
	m.logger.Info("", "selected %s, scanning columns", msg.upload.Name)
	m.cursor = 0
	m.focus = focusFeatures
	m.refreshResults()
	return m, tea.Batch(runPreview(m.backend, ticket), m.spinner.Tick)
}

func (m Model) handlePreviewDone(msg previewDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.sess.FailPreview(msg.token, msg.err) {
			m.logger.Error("", "preview failed: %v", msg.err)
		}
		return m, nil
	}
	if !m.sess.ApplyPreview(msg.token, msg.cols) {
		m.logger.Debug("", "discarded stale preview response")
		return m, nil
	}
	m.cursor = 0
	return m, nil
}

func (m Model) startAnalyze() (tea.Model, tea.Cmd) {
	ticket, err := m.sess.BeginAnalyze()
	switch {
	case errors.Is(err, session.ErrNoFile):
		m.alert = session.MsgNoFile
		return m, nil
	case err != nil:
		m.logger.Debug("", "analyze ignored: %v", err)
		return m, nil
	}
	m.logger.Info("", "analyze %s k=%d features=%s", ticket.Request.Upload.Name, ticket.Request.K, strings.Join(ticket.Request.Features, ","))
	return m, tea.Batch(runAnalyze(m.backend, ticket), m.spinner.Tick)
}

func (m Model) handleAnalyzeDone(msg analyzeDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil && msg.result == nil {
		msg.err = errors.New("empty analyze response")
	}
	if msg.err != nil {
		applied, alert := m.sess.FailAnalyze(msg.token, msg.err)
		if applied {
			m.logger.Error("", "analyze failed: %v", msg.err)
			m.alert = alert
		}
		return m, nil
	}
	applied, err := m.sess.CompleteAnalyze(msg.token, *msg.result)
	if !applied {
		m.logger.Debug("", "discarded stale analyze response")
		return m, nil
	}
	if err != nil {
		m.logger.Error("", "render: %v", err)
		m.alert = session.MsgAnalyzeFailed
	}
	m.refreshResults()
	m.results.GotoTop()
	return m, nil
}

func (m Model) busy() bool {
	p := m.sess.Phase()
	return p == session.PhasePreviewPending || p == session.PhaseAnalyzePending
}

func (m *Model) refreshResults() {
	plotHeight := max(8, m.results.Height/2)
	m.results.SetContent(renderResults(m.sess.View(), m.results.Width, plotHeight))
}

func (m Model) controlsHeight() int {
	return m.picker.Height + len(m.sess.Features()) + 8
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Cluster analysis"))
	b.WriteString("\n")
	if m.focus == focusPicker {
		b.WriteString(m.viewPicker())
	} else {
		b.WriteString(m.viewControls())
	}
	b.WriteString("\n")
	b.WriteString(resultBoxStyle.Render(m.results.View()))
	b.WriteString("\n")
	if m.alert != "" {
		b.WriteString(alertStyle.Render(m.alert + "  [enter]"))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) viewPicker() string {
	title := "Choose a CSV file (tab: back)"
	if f, ok := m.sess.File(); ok {
		title = "Current file: " + f.Name + " (tab: back)"
	}
	return panelStyle.Render(mutedStyle.Render(title) + "\n" + m.picker.View())
}

func (m Model) viewControls() string {
	var b strings.Builder
	f, _ := m.sess.File()
	b.WriteString(labelStyle.Render("File: ") + f.Name + "\n\n")
	b.WriteString(m.viewFeatures())
	b.WriteString("\n\n")
	b.WriteString(m.viewK())
	b.WriteString("\n\n")
	b.WriteString(m.viewTrigger())
	return panelStyle.Render(b.String())
}

func (m Model) viewFeatures() string {
	switch m.sess.FeatureStatus() {
	case session.FeaturesLoading:
		return m.spinner.View() + " " + m.sess.FeatureMessage()
	case session.FeaturesEmpty:
		return warnStyle.Render(m.sess.FeatureMessage())
	case session.FeaturesError:
		return errorStyle.Render(m.sess.FeatureMessage())
	case session.FeaturesReady:
		var lines []string
		lines = append(lines, labelStyle.Render("Features"))
		for i, f := range m.sess.Features() {
			cursor := "  "
			if i == m.cursor {
				cursor = accentStyle.Render("> ")
			}
			box := "[ ]"
			if f.Checked {
				box = accentStyle.Render("[x]")
			}
			lines = append(lines, cursor+box+" "+f.Name)
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

func (m Model) viewK() string {
	lo, hi := m.sess.KRange()
	k := m.sess.K()
	var track strings.Builder
	for i := lo; i <= hi; i++ {
		if i == k {
			track.WriteString(accentStyle.Render("●"))
		} else {
			track.WriteString(mutedStyle.Render("━"))
		}
	}
	return fmt.Sprintf("%s %d %s %d   %s", labelStyle.Render("Clusters (k)"), lo, track.String(), hi, accentStyle.Render(fmt.Sprint(k)))
}

func (m Model) viewTrigger() string {
	t := m.sess.Trigger()
	if m.sess.Phase() == session.PhaseAnalyzePending {
		return buttonDisabledStyle.Render(m.spinner.View() + " " + t.Label)
	}
	if !t.Enabled {
		return buttonDisabledStyle.Render(t.Label)
	}
	return buttonStyle.Render(t.Label)
}

var (
	headerStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	titleStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	labelStyle          = lipgloss.NewStyle().Bold(true)
	mutedStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#a0a0a0"))
	legendStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	axisStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	accentStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	warnStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	alertStyle          = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1).Bold(true)
	panelStyle          = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	resultBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cardStyle           = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginRight(1)
	buttonStyle         = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(lipgloss.Color("#1a1a2e")).Background(lipgloss.Color("#4ECDC4"))
	buttonDisabledStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("#a0a0a0")).Background(lipgloss.Color("#333333"))
	placeholderText     = session.Placeholder
)
