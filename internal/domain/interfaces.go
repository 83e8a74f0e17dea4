package domain

import (
	"context"
	"time"
)

// NumericType is the column type tag the clustering service uses for numeric columns.
const NumericType = "Numeric"

// Upload is a CSV file selected by the user, held in memory so it can be
// sent with every preview and analyze request.
type Upload struct {
	Name string
	MIME string
	Data []byte
}

// Column describes one column of an uploaded CSV as classified by the service.
type Column struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Suggested bool   `json:"suggested"`
}

// IsNumeric reports whether the column can be used as a clustering feature.
func (c Column) IsNumeric() bool { return c.Type == NumericType }

// Point is a single row projected to two dimensions with its cluster assignment.
type Point struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Cluster int     `json:"cluster"`
	Details string  `json:"details,omitempty"`
}

// ClusterDetails maps a cluster index (decimal string) to feature aggregates.
type ClusterDetails map[string]map[string]float64

// AnalyzeRequest carries the inputs of one clustering run.
type AnalyzeRequest struct {
	Upload   Upload
	K        int
	Features []string
}

// AnalyzeResult is the service's answer to an analyze request.
type AnalyzeResult struct {
	Data           []Point        `json:"data"`
	K              int            `json:"k"`
	ClusterDetails ClusterDetails `json:"cluster_details,omitempty"`
}

// Backend is the external clustering service.
type Backend interface {
	Preview(ctx context.Context, upload Upload) ([]Column, error)
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error)
}

// Analysis is a finished analyze run kept in the result history.
type Analysis struct {
	ID        string
	FileName  string
	K         int
	Features  []string
	Result    AnalyzeResult
	CreatedAt time.Time
}

// ResultStore keeps finished analyses for later viewing.
type ResultStore interface {
	Put(a Analysis) error
	Get(id string) (Analysis, bool)
	List() []Analysis
	Clear() error
}
