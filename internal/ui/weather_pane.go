package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/weather-terminal/internal/models"
)

// iconGlyph maps a provider icon code (e.g. "10d") to a terminal glyph
func iconGlyph(icon string) string {
	if len(icon) < 2 {
		return "?"
	}
	night := strings.HasSuffix(icon, "n")

	switch icon[:2] {
	case "01":
		if night {
			return "☾"
		}
		return "☀"
	case "02":
		if night {
			return "☁"
		}
		return "⛅"
	case "03", "04":
		return "☁"
	case "09", "10":
		return "☂"
	case "11":
		return "⚡"
	case "13":
		return "❄"
	case "50":
		return "≋"
	default:
		return "?"
	}
}

// renderCurrentPane renders current conditions
func (m Model) renderCurrentPane(w *models.WeatherSnapshot) string {
	var content strings.Builder

	content.WriteString(titleStyle.Render("Now"))
	content.WriteString("\n")

	if w == nil {
		content.WriteString(mutedStyle.Render("No current conditions"))
		return paneStyle.Width(32).Render(content.String())
	}

	content.WriteString(bigValueStyle.Render(fmt.Sprintf("%s  %s", iconGlyph(w.Icon), w.TemperatureText())))
	content.WriteString("\n")
	content.WriteString(valueStyle.Render(w.Status))
	content.WriteString("\n\n")

	rows := []struct{ label, value string }{
		{"Precipitation", w.PrecipitationText()},
		{"Humidity", w.HumidityText()},
		{"Wind", w.WindText()},
	}
	for _, r := range rows {
		content.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", r.label)))
		content.WriteString(valueStyle.Render(r.value))
		content.WriteString("\n")
	}

	return paneStyle.Width(32).Render(strings.TrimRight(content.String(), "\n"))
}

// renderDailyPane renders the week as one column per day
func (m Model) renderDailyPane(f *models.DailyForecast) string {
	if f == nil || len(f.Days) == 0 {
		return paneStyle.Render(mutedStyle.Render("No daily forecast"))
	}

	col := lipgloss.NewStyle().Width(9).Align(lipgloss.Center)
	columns := make([]string, len(f.Days))
	for i, d := range f.Days {
		columns[i] = col.Render(lipgloss.JoinVertical(lipgloss.Center,
			labelStyle.Render(d.Short()),
			iconGlyph(d.Icon),
			hiLo(d),
		))
	}

	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("7 Day Forecast"),
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
	))
}

// hiLo renders the high in bold and the low muted
func hiLo(d models.DailyPoint) string {
	return bigValueStyle.Render(fmt.Sprintf("%d°", d.HighF)) + " " + mutedStyle.Render(fmt.Sprintf("%d°", d.LowF))
}
