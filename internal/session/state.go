package session

import (
	"errors"
	"fmt"

	"clusterview/internal/chart"
	"clusterview/internal/clusterapi"
	"clusterview/internal/domain"
)

// Phase is the tagged UI state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFileSelected
	PhasePreviewPending
	PhaseReady
	PhaseAnalyzePending
	PhaseRendered
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFileSelected:
		return "file-selected"
	case PhasePreviewPending:
		return "preview-pending"
	case PhaseReady:
		return "ready"
	case PhaseAnalyzePending:
		return "analyze-pending"
	case PhaseRendered:
		return "rendered"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// FeatureStatus describes what the feature list area shows.
type FeatureStatus int

const (
	FeaturesHidden FeatureStatus = iota
	FeaturesLoading
	FeaturesReady
	FeaturesEmpty
	FeaturesError
)

// User-facing texts.
const (
	LabelIdle   = "Start analysis"
	LabelBusy   = "Analyzing..."
	Placeholder = "Visualization results will appear here"

	MsgNotCSV         = "Please upload a CSV file."
	MsgNoFile         = "Please select a file first."
	MsgScanning       = "Scanning file..."
	MsgNoNumeric      = "No numeric columns found."
	MsgPreviewFailed  = "Could not scan the file."
	MsgAnalyzeFailed  = "An error occurred during analysis."
	analyzeErrorAlert = "Error: "
)

var (
	ErrNotCSV          = errors.New(MsgNotCSV)
	ErrNoFile          = errors.New(MsgNoFile)
	ErrAnalyzeDisabled = errors.New("analysis is disabled until a feature is selected")
	ErrBusy            = errors.New("an analysis is already running")
	ErrUnknownFeature  = errors.New("unknown feature")
)

// Token identifies one preview or analyze request. A response carrying a
// token other than the session's current one is stale and ignored.
type Token uint64

// Feature is one selectable numeric column.
type Feature struct {
	Name    string
	Checked bool
}

// Trigger is the state of the analyze action.
type Trigger struct {
	Enabled bool
	Label   string
}

// PreviewTicket is handed to whoever performs the preview request.
type PreviewTicket struct {
	Token  Token
	Upload domain.Upload
}

// AnalyzeTicket is handed to whoever performs the analyze request.
type AnalyzeTicket struct {
	Token   Token
	Request domain.AnalyzeRequest
}

// Renderer turns an analyze result into the results view.
type Renderer func(res domain.AnalyzeResult, requestedK int) (chart.View, error)

// Session is the selection and results state of the client. It is not safe
// for concurrent use; the owner mutates it from a single event loop.
type Session struct {
	phase   Phase
	file    *domain.Upload
	feats   []Feature
	fStatus FeatureStatus
	fMsg    string
	k       int
	kMin    int
	kMax    int
	trigger Trigger
	view    *chart.View
	render  Renderer

	previewToken Token
	analyzeToken Token
	analyzeK     int
}

type Option func(*Session)

// WithRenderer replaces the default chart.BuildView renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Session) { s.render = r }
}

// New creates an idle session with k bounded to [kMin, kMax].
func New(kMin, kMax, k int, opts ...Option) *Session {
	if kMin < 1 {
		kMin = 1
	}
	if kMax < kMin {
		kMax = kMin
	}
	s := &Session{
		kMin:    kMin,
		kMax:    kMax,
		trigger: Trigger{Enabled: false, Label: LabelIdle},
		render:  chart.BuildView,
	}
	s.SetK(k)
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) Phase() Phase                 { return s.phase }
func (s *Session) K() int                       { return s.k }
func (s *Session) KRange() (int, int)           { return s.kMin, s.kMax }
func (s *Session) Trigger() Trigger             { return s.trigger }
func (s *Session) FeatureStatus() FeatureStatus { return s.fStatus }
func (s *Session) FeatureMessage() string       { return s.fMsg }

// File returns the selected upload.
func (s *Session) File() (domain.Upload, bool) {
	if s.file == nil {
		return domain.Upload{}, false
	}
	return *s.file, true
}

// Features returns a copy of the feature list in display order.
func (s *Session) Features() []Feature {
	return append([]Feature(nil), s.feats...)
}

// CheckedFeatures returns the names of checked features in display order.
func (s *Session) CheckedFeatures() []string {
	var out []string
	for _, f := range s.feats {
		if f.Checked {
			out = append(out, f.Name)
		}
	}
	return out
}

// View returns the rendered results, nil while showing the placeholder.
func (s *Session) View() *chart.View { return s.view }

// SetK clamps and stores k, returning the stored value.
func (s *Session) SetK(k int) int {
	s.k = min(max(k, s.kMin), s.kMax)
	return s.k
}

// SelectFile makes u the current file. A non-CSV upload is rejected with
// ErrNotCSV and leaves the session untouched.
func (s *Session) SelectFile(u domain.Upload) error {
	if !IsCSV(u) {
		return ErrNotCSV
	}
	s.file = &u
	s.phase = PhaseFileSelected
	s.feats = nil
	s.fStatus = FeaturesHidden
	s.fMsg = ""
	s.view = nil
	// a response to a request for the previous file must not land here
	s.previewToken++
	s.analyzeToken++
	s.trigger = Trigger{Enabled: false, Label: LabelIdle}
	return nil
}

// BeginPreview moves to preview-pending and returns the request to perform.
func (s *Session) BeginPreview() (PreviewTicket, error) {
	if s.file == nil {
		return PreviewTicket{}, ErrNoFile
	}
	s.previewToken++
	s.phase = PhasePreviewPending
	s.feats = nil
	s.fStatus = FeaturesLoading
	s.fMsg = MsgScanning
	s.trigger.Enabled = false
	return PreviewTicket{Token: s.previewToken, Upload: *s.file}, nil
}

// ApplyPreview installs the numeric columns of a preview response. It
// reports false for a stale response.
func (s *Session) ApplyPreview(tok Token, cols []domain.Column) bool {
	if tok != s.previewToken || s.phase != PhasePreviewPending {
		return false
	}
	s.feats = s.feats[:0]
	for _, c := range cols {
		if c.IsNumeric() {
			s.feats = append(s.feats, Feature{Name: c.Name, Checked: c.Suggested})
		}
	}
	s.phase = PhaseReady
	if len(s.feats) == 0 {
		s.fStatus = FeaturesEmpty
		s.fMsg = MsgNoNumeric
	} else {
		s.fStatus = FeaturesReady
		s.fMsg = ""
	}
	s.updateTrigger()
	return true
}

// FailPreview records a failed preview. The message is the service's own
// error text when it sent one, a generic one otherwise.
func (s *Session) FailPreview(tok Token, err error) bool {
	if tok != s.previewToken || s.phase != PhasePreviewPending {
		return false
	}
	s.phase = PhaseError
	s.feats = nil
	s.fStatus = FeaturesError
	if msg, ok := clusterapi.ServerMessage(err); ok {
		s.fMsg = msg
	} else {
		s.fMsg = MsgPreviewFailed
	}
	s.updateTrigger()
	return true
}

// SetFeature checks or unchecks a feature and recomputes the trigger.
func (s *Session) SetFeature(name string, checked bool) error {
	if s.phase == PhaseAnalyzePending {
		return ErrBusy
	}
	for i := range s.feats {
		if s.feats[i].Name == name {
			s.feats[i].Checked = checked
			s.updateTrigger()
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
}

// ToggleFeature flips a feature's checked state.
func (s *Session) ToggleFeature(name string) error {
	for _, f := range s.feats {
		if f.Name == name {
			return s.SetFeature(name, !f.Checked)
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
}

func (s *Session) updateTrigger() {
	n := len(s.CheckedFeatures())
	s.trigger.Enabled = n > 0
	if n > 0 {
		s.trigger.Label = fmt.Sprintf("%s (%d)", LabelIdle, n)
	} else {
		s.trigger.Label = LabelIdle
	}
}

// BeginAnalyze disables the trigger and returns the request to perform.
func (s *Session) BeginAnalyze() (AnalyzeTicket, error) {
	if s.file == nil {
		return AnalyzeTicket{}, ErrNoFile
	}
	if s.phase == PhaseAnalyzePending {
		return AnalyzeTicket{}, ErrBusy
	}
	if !s.trigger.Enabled {
		return AnalyzeTicket{}, ErrAnalyzeDisabled
	}
	s.analyzeToken++
	s.analyzeK = s.k
	s.phase = PhaseAnalyzePending
	s.trigger = Trigger{Enabled: false, Label: LabelBusy}
	return AnalyzeTicket{
		Token: s.analyzeToken,
		Request: domain.AnalyzeRequest{
			Upload:   *s.file,
			K:        s.k,
			Features: s.CheckedFeatures(),
		},
	}, nil
}

// CompleteAnalyze renders a successful response. The trigger is restored
// even when rendering fails or panics; such failures are returned and leave
// the session in the error phase. applied is false for a stale response.
func (s *Session) CompleteAnalyze(tok Token, res domain.AnalyzeResult) (applied bool, err error) {
	if tok != s.analyzeToken || s.phase != PhaseAnalyzePending {
		return false, nil
	}
	defer s.finishAnalyze()
	defer func() {
		if r := recover(); r != nil {
			applied = true
			err = fmt.Errorf("render result: %v", r)
			s.phase = PhaseError
			s.view = nil
		}
	}()

	view, err := s.render(res, s.analyzeK)
	if err != nil {
		s.phase = PhaseError
		s.view = nil
		return true, fmt.Errorf("render result: %w", err)
	}
	s.view = &view
	s.phase = PhaseRendered
	return true, nil
}

// FailAnalyze records a failed analyze request and returns the alert text:
// "Error: <message>" for a service-reported error, a generic text otherwise.
func (s *Session) FailAnalyze(tok Token, err error) (applied bool, alert string) {
	if tok != s.analyzeToken || s.phase != PhaseAnalyzePending {
		return false, ""
	}
	defer s.finishAnalyze()
	s.phase = PhaseError
	return true, AnalyzeAlert(err)
}

// AnalyzeAlert is the blocking notification text for a failed analysis.
func AnalyzeAlert(err error) string {
	if msg, ok := clusterapi.ServerMessage(err); ok {
		return analyzeErrorAlert + msg
	}
	return MsgAnalyzeFailed
}

func (s *Session) finishAnalyze() {
	s.trigger = Trigger{Enabled: true, Label: LabelIdle}
}
