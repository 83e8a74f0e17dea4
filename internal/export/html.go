package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"clusterview/internal/chart"
)

// PageBackground is the page colour behind the transparent figure.
const PageBackground = "#1a1a2e"

const tooltipFormatter = `function (p) {
	var text = p.name ? p.name : p.value[0].toFixed(2) + ', ' + p.value[1].toFixed(2);
	return '<b>' + p.seriesName + '</b><br>' + text;
}`

// NewScatter converts a figure into an echarts scatter chart, one series per
// cluster with the figure's colours and marker style.
func NewScatter(fig chart.Figure, pageTitle string) *charts.Scatter {
	l := fig.Layout
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       pageTitle,
			Width:           "960px",
			Height:          "600px",
			BackgroundColor: PageBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: l.Title.Text,
			Left:  "center",
			TitleStyle: &opts.TextStyle{
				Color:      l.Title.Font.Color,
				FontSize:   l.Title.Font.Size,
				FontFamily: l.Title.Font.Family,
			},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(l.ShowLegend),
			Top:       "bottom",
			TextStyle: &opts.TextStyle{Color: l.Legend.Font.Color},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(tooltipFormatter),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Scale:     opts.Bool(true),
			SplitLine: gridLine(l.XAxis),
			AxisLabel: &opts.AxisLabel{Color: l.Font.Color},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			Scale:     opts.Bool(true),
			SplitLine: gridLine(l.YAxis),
			AxisLabel: &opts.AxisLabel{Color: l.Font.Color},
		}),
	)

	for _, s := range fig.Data {
		scatter.AddSeries(s.Name, seriesData(s),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: s.Marker.Size}),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:       s.Marker.Color,
				BorderColor: s.Marker.Line.Color,
				BorderWidth: float32(s.Marker.Line.Width),
				Opacity:     opts.Float(float32(s.Marker.Opacity)),
			}),
		)
	}
	return scatter
}

// WriteHTML renders fig as a standalone interactive HTML page.
func WriteHTML(w io.Writer, fig chart.Figure, pageTitle string) error {
	if err := NewScatter(fig, pageTitle).Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func gridLine(a chart.Axis) *opts.SplitLine {
	return &opts.SplitLine{
		Show:      opts.Bool(a.ShowGrid),
		LineStyle: &opts.LineStyle{Color: a.GridColor},
	}
}

func seriesData(s chart.Series) []opts.ScatterData {
	out := make([]opts.ScatterData, 0, len(s.X))
	for i := range s.X {
		d := opts.ScatterData{Value: []interface{}{s.X[i], s.Y[i]}}
		if i < len(s.Text) {
			d.Name = s.Text[i]
		}
		out = append(out, d)
	}
	return out
}
