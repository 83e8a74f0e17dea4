package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"clusterview/internal/chart"
)

const (
	pointGlyph = "●"
	emptyCell  = -1
	zeroCell   = -2
)

// renderPlot draws the figure as a width x height character scatter plot
// with a title, the axis ranges and a legend.
func renderPlot(fig chart.Figure, width, height int) string {
	width = max(width, 10)
	height = max(height, 4)

	title := titleStyle.Render(fig.Layout.Title.Text)
	minX, maxX, minY, maxY, ok := fig.Bounds()
	if !ok {
		return title + "\n" + mutedStyle.Render("No points to plot.")
	}

	cells := make([][]int, height)
	for r := range cells {
		cells[r] = make([]int, width)
		for c := range cells[r] {
			cells[r][c] = emptyCell
		}
	}
	if minY < 0 && maxY > 0 {
		r := scale(0, minY, maxY, height, true)
		for c := range cells[r] {
			cells[r][c] = zeroCell
		}
	}
	if minX < 0 && maxX > 0 {
		c := scale(0, minX, maxX, width, false)
		for r := range cells {
			cells[r][c] = zeroCell
		}
	}
	for _, s := range fig.Data {
		for i := range s.X {
			r := scale(s.Y[i], minY, maxY, height, true)
			c := scale(s.X[i], minX, maxX, width, false)
			cells[r][c] = s.Cluster
		}
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	for _, row := range cells {
		for _, cell := range row {
			switch cell {
			case emptyCell:
				b.WriteByte(' ')
			case zeroCell:
				b.WriteString(axisStyle.Render("·"))
			default:
				b.WriteString(clusterStyle(cell).Render(pointGlyph))
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("x %.2f … %.2f   y %.2f … %.2f", minX, maxX, minY, maxY)))
	b.WriteByte('\n')
	b.WriteString(renderLegend(fig.Data))
	return b.String()
}

func renderLegend(series []chart.Series) string {
	items := make([]string, 0, len(series))
	for _, s := range series {
		items = append(items, clusterStyle(s.Cluster).Render(pointGlyph)+" "+legendStyle.Render(s.Name))
	}
	return strings.Join(items, "  ")
}

// scale maps v in [lo, hi] to a cell index in [0, n). Rows are flipped so
// larger values are drawn higher.
func scale(v, lo, hi float64, n int, flip bool) int {
	idx := n / 2
	if hi > lo {
		idx = int((v - lo) / (hi - lo) * float64(n-1))
	}
	idx = min(max(idx, 0), n-1)
	if flip {
		idx = n - 1 - idx
	}
	return idx
}

func clusterStyle(cluster int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(chart.ColorFor(cluster)))
}
