package chart

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"clusterview/internal/domain"
)

// ClusterStats is the size and projected centroid of one plotted cluster.
type ClusterStats struct {
	Cluster   int
	Name      string
	Color     string
	Size      int
	CentroidX float64
	CentroidY float64
}

// SeriesStats computes ClusterStats for every series of a figure.
func SeriesStats(series []Series) ([]ClusterStats, error) {
	out := make([]ClusterStats, 0, len(series))
	for _, s := range series {
		cx, err := stats.Mean(s.X)
		if err != nil {
			return nil, fmt.Errorf("centroid x of %s: %w", s.Name, err)
		}
		cy, err := stats.Mean(s.Y)
		if err != nil {
			return nil, fmt.Errorf("centroid y of %s: %w", s.Name, err)
		}
		out = append(out, ClusterStats{
			Cluster:   s.Cluster,
			Name:      s.Name,
			Color:     s.Marker.Color,
			Size:      len(s.X),
			CentroidX: cx,
			CentroidY: cy,
		})
	}
	return out, nil
}

// View is everything the results screen shows for one analyze response.
type View struct {
	Figure  Figure
	Cards   []Card
	Stats   []ClusterStats
	Skipped []string
}

// HasCards reports whether the response carried cluster details.
func (v View) HasCards() bool { return len(v.Cards) > 0 }

// BuildView renders an analyze result. The response's own k bounds the
// series; requestedK is used when the service omits it.
func BuildView(res domain.AnalyzeResult, requestedK int) (View, error) {
	k := res.K
	if k <= 0 {
		k = requestedK
	}
	fig := NewFigure(res.Data, k)
	st, err := SeriesStats(fig.Data)
	if err != nil {
		return View{}, err
	}
	cards, skipped := BuildCards(res.ClusterDetails)
	return View{Figure: fig, Cards: cards, Stats: st, Skipped: skipped}, nil
}
