package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"clusterview/internal/chart"
)

// Image size of exported plots.
const (
	ImageWidth  = 8 * vg.Inch
	ImageHeight = 5 * vg.Inch
)

// NewPlot converts a figure into a gonum plot with a dark background.
func NewPlot(fig chart.Figure) (*plot.Plot, error) {
	l := fig.Layout
	p := plot.New()
	p.BackgroundColor = mustColor(PageBackground)
	p.Title.Text = l.Title.Text
	p.Title.TextStyle.Color = mustColor(l.Title.Font.Color)

	axisColor := mustColor(l.Font.Color)
	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.LineStyle.Color = axisColor
		a.Tick.LineStyle.Color = axisColor
		a.Tick.Label.Color = axisColor
		a.Label.TextStyle.Color = axisColor
	}

	if l.XAxis.ShowGrid || l.YAxis.ShowGrid {
		grid := plotter.NewGrid()
		grid.Vertical.Color = mustColor(l.XAxis.GridColor)
		grid.Horizontal.Color = mustColor(l.YAxis.GridColor)
		if !l.XAxis.ShowGrid {
			grid.Vertical.Color = nil
		}
		if !l.YAxis.ShowGrid {
			grid.Horizontal.Color = nil
		}
		p.Add(grid)
	}

	p.Legend.TextStyle.Color = mustColor(l.Legend.Font.Color)
	p.Legend.Top = true
	for _, s := range fig.Data {
		xys := make(plotter.XYs, len(s.X))
		for i := range s.X {
			xys[i].X, xys[i].Y = s.X[i], s.Y[i]
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		c, err := parseColor(s.Marker.Color)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		sc.GlyphStyle.Color = withOpacity(c, s.Marker.Opacity)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(float64(s.Marker.Size) / 2)
		p.Add(sc)
		if l.ShowLegend {
			p.Legend.Add(s.Name, sc)
		}
	}
	return p, nil
}

// WriteImage renders fig in the given format ("png" or "svg").
func WriteImage(w io.Writer, fig chart.Figure, format string) error {
	p, err := NewPlot(fig)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(ImageWidth, ImageHeight, format)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

// SaveFigure writes fig to path, choosing HTML, SVG or PNG by extension.
func SaveFigure(path string, fig chart.Figure, title string) error {
	var write func(io.Writer) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".html", ".htm":
		write = func(w io.Writer) error { return WriteHTML(w, fig, title) }
	case ".svg":
		write = func(w io.Writer) error { return WriteImage(w, fig, "svg") }
	case ".png", "":
		write = func(w io.Writer) error { return WriteImage(w, fig, "png") }
	default:
		return fmt.Errorf("unsupported export format %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := write(f)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(path)
		return fmt.Errorf("export %s: %w", path, werr)
	}
	return nil
}

// parseColor understands the colour notations used by the figure: hex,
// rgba(r,g,b,a) and the names white and black.
func parseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, err
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
	case strings.HasPrefix(s, "rgba("):
		var r, g, b uint8
		var a float64
		if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
			return nil, fmt.Errorf("parse colour %q: %w", s, err)
		}
		return color.NRGBA{R: r, G: g, B: b, A: uint8(a * 255)}, nil
	case s == "white":
		return color.White, nil
	case s == "black":
		return color.Black, nil
	}
	return nil, fmt.Errorf("unknown colour %q", s)
}

func mustColor(s string) color.Color {
	c, err := parseColor(s)
	if err != nil {
		return color.White
	}
	return c
}

func withOpacity(c color.Color, opacity float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A) * opacity)
	return n
}
