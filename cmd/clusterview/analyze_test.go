package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterview/internal/clusterapi"
	"clusterview/internal/config"
	"clusterview/internal/domain"
	"clusterview/internal/session"
)

type stubBackend struct {
	cols     []domain.Column
	result   *domain.AnalyzeResult
	err      error
	requests []domain.AnalyzeRequest
}

func (s *stubBackend) Preview(context.Context, domain.Upload) ([]domain.Column, error) {
	return s.cols, nil
}

func (s *stubBackend) Analyze(_ context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResult, error) {
	s.requests = append(s.requests, req)
	return s.result, s.err
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(path, []byte("age,income,id\n31,40000,a\n45,72000,b\n"), 0o644))
	return path
}

func newStub() *stubBackend {
	return &stubBackend{
		cols: []domain.Column{
			{Name: "age", Type: "Numeric", Suggested: true},
			{Name: "income", Type: "Numeric", Suggested: true},
			{Name: "id", Type: "Text"},
		},
		result: &domain.AnalyzeResult{
			Data:           []domain.Point{{X: 1, Y: 1, Cluster: 0}, {X: -1, Y: 2, Cluster: 1}},
			K:              2,
			ClusterDetails: domain.ClusterDetails{"0": {"age": 31}, "1": {"age": 45}},
		},
	}
}

func TestRunAnalyzeUsesSuggestedFeatures(t *testing.T) {
	cfg = config.Default()
	b := newStub()
	var out bytes.Buffer

	v, err := runAnalyze(context.Background(), &out, b, writeCSV(t), analyzeOptions{K: 2})
	require.NoError(t, err)
	require.Len(t, b.requests, 1)
	assert.Equal(t, []string{"age", "income"}, b.requests[0].Features)
	assert.Equal(t, 2, b.requests[0].K)
	assert.Len(t, v.Figure.Data, 2)
	assert.Contains(t, out.String(), "Cluster 2\n  age  45.00\n")
}

func TestRunAnalyzeSelectsRequestedFeatures(t *testing.T) {
	cfg = config.Default()
	b := newStub()

	_, err := runAnalyze(context.Background(), &bytes.Buffer{}, b, writeCSV(t), analyzeOptions{K: 3, Features: []string{"income"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"income"}, b.requests[0].Features)

	_, err = runAnalyze(context.Background(), &bytes.Buffer{}, b, writeCSV(t), analyzeOptions{K: 3, Features: []string{"height"}})
	assert.ErrorIs(t, err, session.ErrUnknownFeature)
}

func TestRunAnalyzeServiceError(t *testing.T) {
	cfg = config.Default()
	b := newStub()
	b.err = &clusterapi.APIError{StatusCode: 400, Message: "insufficient data"}

	_, err := runAnalyze(context.Background(), &bytes.Buffer{}, b, writeCSV(t), analyzeOptions{K: 3})
	msg, ok := clusterapi.ServerMessage(err)
	require.True(t, ok)
	assert.Equal(t, "insufficient data", msg)
}

func TestRunAnalyzeRejectsNonCSV(t *testing.T) {
	cfg = config.Default()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := runAnalyze(context.Background(), &bytes.Buffer{}, newStub(), path, analyzeOptions{K: 3})
	assert.ErrorIs(t, err, session.ErrNotCSV)
}

func TestExportView(t *testing.T) {
	cfg = config.Default()
	v, err := runAnalyze(context.Background(), &bytes.Buffer{}, newStub(), writeCSV(t), analyzeOptions{K: 2})
	require.NoError(t, err)

	dir := t.TempDir()
	opts := analyzeOptions{HTMLOut: filepath.Join(dir, "c.html"), ImageOut: filepath.Join(dir, "c.png")}
	var out bytes.Buffer
	require.NoError(t, exportView(&out, v, "customers.csv", opts))
	assert.FileExists(t, opts.HTMLOut)
	assert.FileExists(t, opts.ImageOut)
	assert.Contains(t, out.String(), "wrote")
}

func TestRunPreviewPrintsTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runPreview(context.Background(), &out, newStub(), writeCSV(t)))
	assert.Contains(t, out.String(), "COLUMN")
	assert.Contains(t, out.String(), "SUGGESTED")
	assert.Contains(t, out.String(), " income ")
	assert.NotContains(t, out.String(), "…")
}

func TestColumnTableKeepsFullNames(t *testing.T) {
	out := columnTable([]domain.Column{
		{Name: "annual_income", Type: "Numeric", Suggested: true},
		{Name: "customer_age", Type: "Numeric"},
	})
	for _, want := range []string{"annual_income", "customer_age", "Numeric", "SUGGESTED"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "…")
}
