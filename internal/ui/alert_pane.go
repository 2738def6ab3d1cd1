package ui

import (
	"github.com/ngmaloney/weather-terminal/internal/refresh"
)

// renderBanner renders the alert banner, or nothing when it is hidden
func renderBanner(b refresh.BannerLayout, width int) string {
	if !b.Visible {
		return ""
	}
	return bannerStyle.Width(width).Render("⚠  " + b.Message)
}
