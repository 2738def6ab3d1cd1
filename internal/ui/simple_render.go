package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/weather-terminal/internal/charts"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/tiles"
)

// renderChartPane renders the chart tabs and the selected hourly chart
func (m Model) renderChartPane(h *models.HourlyForecast) string {
	tabs := make([]string, len(charts.Kinds))
	for i, k := range charts.Kinds {
		if k == m.chart {
			tabs[i] = activeTabStyle.Render(k.String())
		} else {
			tabs[i] = tabStyle.Render(k.String())
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	if h == nil {
		return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			tabBar,
			mutedStyle.Render("No hourly forecast"),
		))
	}

	r := charts.NewRenderer(m.contentWidth()-8, 10)
	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		tabBar,
		r.Render(charts.NewSeries(m.chart, *h)),
	))
}

// renderMapPane lists the overlay tiles selected around the location
func (m Model) renderMapPane(layers []tiles.Layer) string {
	lines := []string{titleStyle.Render("Map")}

	var overlays []tiles.Layer
	for _, l := range layers {
		if l.Kind == tiles.LayerOverlay {
			overlays = append(overlays, l)
		}
	}

	if len(overlays) == 0 {
		lines = append(lines, mutedStyle.Render("No overlay tiles"))
		return paneStyle.Render(strings.Join(lines, "\n"))
	}

	lines = append(lines, labelStyle.Render(fmt.Sprintf("Overlay zoom %d", overlays[0].Zoom)))
	for _, l := range overlays {
		south, west := l.Bounds[0][0], l.Bounds[0][1]
		north, east := l.Bounds[1][0], l.Bounds[1][1]
		lines = append(lines,
			valueStyle.Render(fmt.Sprintf("tile %d/%d", l.X, l.Y)),
			mutedStyle.Render(fmt.Sprintf("  %.2f..%.2f, %.2f..%.2f", south, north, west, east)),
		)
	}

	return paneStyle.Render(strings.Join(lines, "\n"))
}
