package chart

import (
	"fmt"
	"sort"

	"clusterview/internal/domain"
)

// Figure is a Plotly-compatible description of the cluster scatter plot.
// Every renderer (terminal, HTML, PNG) draws from the same Figure.
type Figure struct {
	Data   []Series `json:"data"`
	Layout Layout   `json:"layout"`
	Config Config   `json:"config"`
}

// Series holds the points of one cluster.
type Series struct {
	Cluster       int       `json:"-"`
	X             []float64 `json:"x"`
	Y             []float64 `json:"y"`
	Text          []string  `json:"text"`
	HoverTemplate string    `json:"hovertemplate"`
	Mode          string    `json:"mode"`
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	Marker        Marker    `json:"marker"`
}

type Marker struct {
	Size    int        `json:"size"`
	Color   string     `json:"color"`
	Opacity float64    `json:"opacity"`
	Line    MarkerLine `json:"line"`
}

type MarkerLine struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

type Font struct {
	Color  string `json:"color,omitempty"`
	Size   int    `json:"size,omitempty"`
	Family string `json:"family,omitempty"`
}

type Title struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

type Axis struct {
	ShowGrid      bool   `json:"showgrid"`
	GridColor     string `json:"gridcolor"`
	ZeroLineColor string `json:"zerolinecolor"`
}

type Legend struct {
	Font Font `json:"font"`
}

type Margin struct {
	T int `json:"t"`
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
}

type Layout struct {
	Title      Title  `json:"title"`
	PaperBG    string `json:"paper_bgcolor"`
	PlotBG     string `json:"plot_bgcolor"`
	Font       Font   `json:"font"`
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
	ShowLegend bool   `json:"showlegend"`
	Legend     Legend `json:"legend"`
	Margin     Margin `json:"margin"`
}

// Config disables the mode bar and lets the chart follow its container.
type Config struct {
	Responsive     bool `json:"responsive"`
	DisplayModeBar bool `json:"displayModeBar"`
}

const (
	FigureTitle     = "Clustering result (PCA projection)"
	MarkerSize      = 10
	MarkerOpacity   = 0.8
	Transparent     = "rgba(0,0,0,0)"
	GridColor       = "rgba(255,255,255,0.1)"
	ZeroLineColor   = "rgba(255,255,255,0.2)"
	FontColor       = "#a0a0a0"
	LightFontColor  = "#ffffff"
	FontFamily      = "Inter"
	markerLineColor = "white"
)

// ClusterName is the display name of a zero-based cluster index.
func ClusterName(cluster int) string {
	return fmt.Sprintf("Cluster %d", cluster+1)
}

// GroupPoints partitions points by cluster index. Points outside [0, k) are
// dropped and clusters without points get no series, so the result has one
// series per non-empty cluster in ascending order.
func GroupPoints(points []domain.Point, k int) []Series {
	groups := make(map[int]*Series)
	for _, p := range points {
		if p.Cluster < 0 || p.Cluster >= k {
			continue
		}
		s, ok := groups[p.Cluster]
		if !ok {
			s = &Series{Cluster: p.Cluster}
			groups[p.Cluster] = s
		}
		s.X = append(s.X, p.X)
		s.Y = append(s.Y, p.Y)
		s.Text = append(s.Text, p.Details)
	}
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Series, 0, len(groups))
	for _, i := range ids {
		s := groups[i]
		name := ClusterName(i)
		s.Name = name
		s.Mode = "markers"
		s.Type = "scatter"
		s.HoverTemplate = "<b>" + name + "</b><br>%{text}<extra></extra>"
		s.Marker = Marker{
			Size:    MarkerSize,
			Color:   ColorFor(i),
			Opacity: MarkerOpacity,
			Line:    MarkerLine{Color: markerLineColor, Width: 1},
		}
		out = append(out, *s)
	}
	return out
}

// DefaultLayout is the dark, transparent layout shared by all renderings.
func DefaultLayout() Layout {
	grid := Axis{ShowGrid: true, GridColor: GridColor, ZeroLineColor: ZeroLineColor}
	return Layout{
		Title: Title{
			Text: FigureTitle,
			Font: Font{Color: LightFontColor, Size: 24, Family: FontFamily},
		},
		PaperBG:    Transparent,
		PlotBG:     Transparent,
		Font:       Font{Color: FontColor, Family: FontFamily},
		XAxis:      grid,
		YAxis:      grid,
		ShowLegend: true,
		Legend:     Legend{Font: Font{Color: LightFontColor}},
		Margin:     Margin{T: 50, L: 50, R: 50, B: 50},
	}
}

// NewFigure builds the scatter figure for an analyze result.
func NewFigure(points []domain.Point, k int) Figure {
	return Figure{
		Data:   GroupPoints(points, k),
		Layout: DefaultLayout(),
		Config: Config{Responsive: true, DisplayModeBar: false},
	}
}

// Bounds returns the min/max of all plotted coordinates. ok is false when
// the figure has no points.
func (f Figure) Bounds() (minX, maxX, minY, maxY float64, ok bool) {
	for _, s := range f.Data {
		for i := range s.X {
			x, y := s.X[i], s.Y[i]
			if !ok {
				minX, maxX, minY, maxY, ok = x, x, y, y, true
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}
	return
}
