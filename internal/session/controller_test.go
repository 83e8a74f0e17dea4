package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterview/internal/clusterapi"
	"clusterview/internal/domain"
	"clusterview/internal/logging"
)

type fakeBackend struct {
	cols       []domain.Column
	previewErr error
	result     *domain.AnalyzeResult
	analyzeErr error

	previews []domain.Upload
	analyses []domain.AnalyzeRequest
}

func (f *fakeBackend) Preview(_ context.Context, u domain.Upload) ([]domain.Column, error) {
	f.previews = append(f.previews, u)
	return f.cols, f.previewErr
}

func (f *fakeBackend) Analyze(_ context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResult, error) {
	f.analyses = append(f.analyses, req)
	return f.result, f.analyzeErr
}

type alerts []string

func (a *alerts) Alert(msg string) { *a = append(*a, msg) }

func newTestController(b *fakeBackend) (*Controller, *alerts) {
	var a alerts
	return NewController(b, New(2, 10, 3), &a, logging.NewDiscard()), &a
}

func TestControllerRejectsNonCSVWithoutBackendCall(t *testing.T) {
	b := &fakeBackend{}
	c, a := newTestController(b)

	err := c.HandleFile(context.Background(), domain.Upload{Name: "data.json", MIME: "application/json"})
	assert.ErrorIs(t, err, ErrNotCSV)
	assert.Equal(t, alerts{MsgNotCSV}, *a)
	assert.Empty(t, b.previews)
	assert.Equal(t, PhaseIdle, c.Session().Phase())
}

func TestControllerEndToEnd(t *testing.T) {
	b := &fakeBackend{
		cols: previewCols,
		result: &domain.AnalyzeResult{
			Data: []domain.Point{{X: 1, Y: 2, Cluster: 0}, {X: 3, Y: 1, Cluster: 1}},
			K:    3,
			ClusterDetails: domain.ClusterDetails{
				"0": {"age": 29.5},
				"1": {"age": 47.25},
			},
		},
	}
	c, a := newTestController(b)
	ctx := context.Background()

	require.NoError(t, c.HandleFile(ctx, dataCSV))
	require.Len(t, b.previews, 1)
	assert.Equal(t, "data.csv", b.previews[0].Name)
	assert.Equal(t, Trigger{Enabled: true, Label: "Start analysis (1)"}, c.Session().Trigger())

	require.NoError(t, c.Analyze(ctx))
	require.Len(t, b.analyses, 1)
	assert.Equal(t, 3, b.analyses[0].K)
	assert.Equal(t, []string{"age"}, b.analyses[0].Features)

	v := c.Session().View()
	require.NotNil(t, v)
	assert.Len(t, v.Figure.Data, 2)
	require.Len(t, v.Cards, 2)
	assert.Equal(t, "47.25", v.Cards[1].Features[0].Formatted())
	assert.Empty(t, *a)
}

func TestControllerAnalyzeWithoutFile(t *testing.T) {
	b := &fakeBackend{}
	c, a := newTestController(b)

	assert.ErrorIs(t, c.Analyze(context.Background()), ErrNoFile)
	assert.Equal(t, alerts{MsgNoFile}, *a)
	assert.Empty(t, b.analyses)
}

func TestControllerAnalyzeServiceError(t *testing.T) {
	b := &fakeBackend{
		cols:       previewCols,
		analyzeErr: &clusterapi.APIError{StatusCode: 400, Message: "insufficient data"},
	}
	c, a := newTestController(b)
	ctx := context.Background()
	require.NoError(t, c.HandleFile(ctx, dataCSV))

	err := c.Analyze(ctx)
	require.Error(t, err)
	assert.Equal(t, alerts{"Error: insufficient data"}, *a)
	assert.Equal(t, Trigger{Enabled: true, Label: LabelIdle}, c.Session().Trigger())
	assert.Nil(t, c.Session().View())
}

func TestControllerAnalyzeTransportError(t *testing.T) {
	b := &fakeBackend{
		cols:       previewCols,
		analyzeErr: &clusterapi.TransportError{Endpoint: clusterapi.AnalyzePath, Err: errors.New("connection refused")},
	}
	c, a := newTestController(b)
	ctx := context.Background()
	require.NoError(t, c.HandleFile(ctx, dataCSV))

	require.Error(t, c.Analyze(ctx))
	assert.Equal(t, alerts{MsgAnalyzeFailed}, *a)
	assert.True(t, c.Session().Trigger().Enabled)
}

func TestControllerPreviewError(t *testing.T) {
	b := &fakeBackend{previewErr: &clusterapi.APIError{StatusCode: 400, Message: "Invalid file type"}}
	c, a := newTestController(b)

	require.Error(t, c.HandleFile(context.Background(), dataCSV))
	assert.Empty(t, *a)
	assert.Equal(t, FeaturesError, c.Session().FeatureStatus())
	assert.Equal(t, "Invalid file type", c.Session().FeatureMessage())
	assert.False(t, c.Session().Trigger().Enabled)
}
