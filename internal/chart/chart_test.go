package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterview/internal/domain"
)

func TestColorForCyclesPalette(t *testing.T) {
	assert.Equal(t, "#FF6B6B", ColorFor(0))
	assert.Equal(t, "#2ECC71", ColorFor(9))
	assert.Equal(t, ColorFor(3), ColorFor(13))
	assert.Equal(t, ColorFor(9), ColorFor(-1))
}

func TestGroupPointsSkipsEmptyClusters(t *testing.T) {
	points := []domain.Point{{X: 1, Y: 2, Cluster: 0}, {X: 3, Y: 1, Cluster: 1}}
	series := GroupPoints(points, 3)

	require.Len(t, series, 2)
	assert.Equal(t, "Cluster 1", series[0].Name)
	assert.Equal(t, "Cluster 2", series[1].Name)
	assert.Equal(t, []float64{3}, series[1].X)
	assert.Equal(t, ColorFor(1), series[1].Marker.Color)
}

func TestGroupPointsGapAndOutOfRange(t *testing.T) {
	points := []domain.Point{
		{X: 0, Y: 0, Cluster: 2, Details: "a"},
		{X: 1, Y: 1, Cluster: 0},
		{X: 2, Y: 2, Cluster: 2, Details: "b"},
		{X: 9, Y: 9, Cluster: 5},
		{X: 9, Y: 9, Cluster: -1},
	}
	series := GroupPoints(points, 4)

	require.Len(t, series, 2)
	assert.Equal(t, 0, series[0].Cluster)
	assert.Equal(t, 2, series[1].Cluster)
	assert.Equal(t, []string{"a", "b"}, series[1].Text)
	assert.Equal(t, "<b>Cluster 3</b><br>%{text}<extra></extra>", series[1].HoverTemplate)
}

func TestGroupPointsHugeK(t *testing.T) {
	points := []domain.Point{{Cluster: 7}, {Cluster: 1}, {Cluster: 3}}
	series := GroupPoints(points, 2_000_000_000)

	require.Len(t, series, 3)
	assert.Equal(t, 1, series[0].Cluster)
	assert.Equal(t, 3, series[1].Cluster)
	assert.Equal(t, 7, series[2].Cluster)
}

func TestFigureMarshalsToPlotlyShape(t *testing.T) {
	fig := NewFigure([]domain.Point{{X: 1, Y: 2, Cluster: 0}}, 1)
	raw, err := json.Marshal(fig)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	layout := decoded["layout"].(map[string]any)
	assert.Equal(t, Transparent, layout["paper_bgcolor"])
	assert.Equal(t, false, decoded["config"].(map[string]any)["displayModeBar"])

	trace := decoded["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "scatter", trace["type"])
	marker := trace["marker"].(map[string]any)
	assert.Equal(t, 0.8, marker["opacity"])
	assert.Equal(t, "white", marker["line"].(map[string]any)["color"])
}

func TestBuildCards(t *testing.T) {
	cards, skipped := BuildCards(domain.ClusterDetails{
		"1":     {"income": 52000.458, "age": 41.333},
		"0":     {"age": 29},
		"other": {"age": 1},
	})

	require.Len(t, cards, 2)
	assert.Equal(t, []string{"other"}, skipped)
	assert.Equal(t, "Cluster 1", cards[0].Title)
	assert.Equal(t, ColorFor(1), cards[1].Color)
	assert.Equal(t, "age", cards[1].Features[0].Name)
	assert.Equal(t, "41.33", cards[1].Features[0].Formatted())
	assert.Equal(t, "52000.46", cards[1].Features[1].Formatted())
	assert.Equal(t, "Cluster 2\n  age  41.33\n  income  52000.46\n", cards[1].String())
}

func TestBuildView(t *testing.T) {
	res := domain.AnalyzeResult{
		Data: []domain.Point{{X: 1, Y: 2, Cluster: 0}, {X: 3, Y: 4, Cluster: 0}, {X: 3, Y: 1, Cluster: 1}},
		K:    3,
	}
	v, err := BuildView(res, 5)
	require.NoError(t, err)

	assert.Len(t, v.Figure.Data, 2)
	assert.False(t, v.HasCards())
	require.Len(t, v.Stats, 2)
	assert.Equal(t, 2, v.Stats[0].Size)
	assert.InDelta(t, 2.0, v.Stats[0].CentroidX, 1e-9)
	assert.InDelta(t, 3.0, v.Stats[0].CentroidY, 1e-9)
}

func TestBuildViewFallsBackToRequestedK(t *testing.T) {
	res := domain.AnalyzeResult{Data: []domain.Point{{Cluster: 3}}}
	v, err := BuildView(res, 4)
	require.NoError(t, err)
	assert.Len(t, v.Figure.Data, 1)
}

func TestBounds(t *testing.T) {
	_, _, _, _, ok := Figure{}.Bounds()
	assert.False(t, ok)

	fig := NewFigure([]domain.Point{{X: -1, Y: 5, Cluster: 0}, {X: 4, Y: -2, Cluster: 1}}, 2)
	minX, maxX, minY, maxY, ok := fig.Bounds()
	assert.True(t, ok)
	assert.Equal(t, []float64{-1, 4, -2, 5}, []float64{minX, maxX, minY, maxY})
}
