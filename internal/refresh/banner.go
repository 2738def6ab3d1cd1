package refresh

import (
	"maps"
	"strings"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

// BannerLayout is the alert banner and tab content styling. Styles are CSS
// properties so the API can hand them straight to a browser.
type BannerLayout struct {
	Visible    bool              `json:"visible"`
	AlertStyle map[string]string `json:"alert_style"`
	TabsStyle  map[string]string `json:"tabs_style"`
	Message    string            `json:"message"`
}

// Banner computes the layout from whether any alerts are present. Content
// only affects the message.
func Banner(alerts []models.Alert, zone *time.Location) BannerLayout {
	if len(alerts) == 0 {
		return BannerLayout{
			AlertStyle: map[string]string{"display": "none"},
			TabsStyle: map[string]string{
				"float":       "bottom",
				"padding-top": "100px",
				"width":       "100%",
			},
		}
	}

	messages := make([]string, len(alerts))
	for i, a := range alerts {
		messages[i] = a.Message(zone)
	}

	return BannerLayout{
		Visible: true,
		AlertStyle: map[string]string{
			"color":            "white",
			"background-color": "crimson",
			"text-align":       "justify",
			"border-radius":    "5px",
			"width":            "100%",
			"display":          "inline-block",
			"padding-top":      "2px",
			"padding-bottom":   "2px",
			"padding-left":     "10px",
			"margin-right":     "10px",
		},
		TabsStyle: map[string]string{
			"float":       "bottom",
			"padding-top": "30px",
			"width":       "100%",
		},
		Message: strings.Join(messages, "\n\n"),
	}
}

func (b BannerLayout) clone() BannerLayout {
	out := b
	out.AlertStyle = maps.Clone(b.AlertStyle)
	out.TabsStyle = maps.Clone(b.TabsStyle)
	return out
}
