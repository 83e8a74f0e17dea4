package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"clusterview/internal/chart"
)

const cardWidth = 26

func renderCard(c chart.Card) string {
	accent := lipgloss.Color(c.Color)
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(accent).Render(c.Title))
	for _, f := range c.Features {
		name := f.Name
		val := f.Formatted()
		pad := cardWidth - 4 - lipgloss.Width(name) - lipgloss.Width(val)
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(name))
		b.WriteString(strings.Repeat(" ", max(pad, 1)))
		b.WriteString(val)
	}
	return cardStyle.BorderForeground(accent).Width(cardWidth).Render(b.String())
}

// renderCards lays the cards out in rows that fit into width.
func renderCards(cards []chart.Card, width int) string {
	if len(cards) == 0 {
		return ""
	}
	perRow := max(width/(cardWidth+2), 1)
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		boxes := make([]string, 0, end-i)
		for _, c := range cards[i:end] {
			boxes = append(boxes, renderCard(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderStats(st []chart.ClusterStats) string {
	lines := make([]string, 0, len(st))
	for _, s := range st {
		lines = append(lines, fmt.Sprintf("%s %-10s n=%-5d centroid (%.2f, %.2f)",
			clusterStyle(s.Cluster).Render(pointGlyph), s.Name, s.Size, s.CentroidX, s.CentroidY))
	}
	return strings.Join(lines, "\n")
}

// renderResults is the scrollable content of the results pane.
func renderResults(v *chart.View, width, plotHeight int) string {
	if v == nil {
		return mutedStyle.Render(placeholderText)
	}
	parts := []string{renderPlot(v.Figure, width, plotHeight), "", renderStats(v.Stats)}
	if v.HasCards() {
		parts = append(parts, "", renderCards(v.Cards, width))
	}
	if len(v.Skipped) > 0 {
		parts = append(parts, mutedStyle.Render("ignored cluster keys: "+strings.Join(v.Skipped, ", ")))
	}
	return strings.Join(parts, "\n")
}
