package charts

import (
	"math"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// Renderer draws a series as a braille line chart. All three charts share
// its size.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer creates a renderer, enforcing a usable minimum size
func NewRenderer(width, height int) Renderer {
	if width < 20 {
		width = 20
	}
	if height < 6 {
		height = 6
	}
	return Renderer{Width: width, Height: height}
}

// Render returns the chart title, the value labels and the chart itself
func (r Renderer) Render(s Series) string {
	title := titleStyle.Render(s.Kind.String() + " (" + s.Unit + ")")
	if len(s.Values) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, emptyStyle.Render("No forecast data"))
	}

	lo, hi := AxisRange(s.Values, s.ClampZero)
	maxX := float64(len(s.Values) - 1)
	if maxX == 0 {
		maxX = 1
	}

	lc := linechart.New(r.Width, r.Height, 0, maxX, lo, hi,
		linechart.WithXYSteps(2, 2),
		linechart.WithXLabelFormatter(func(_ int, v float64) string {
			i := int(math.Round(v))
			if i < 0 || i >= len(s.Labels) {
				return ""
			}
			return s.Labels[i]
		}),
		linechart.WithYLabelFormatter(func(_ int, v float64) string {
			return formatValue(v)
		}),
	)
	lc.DrawXYAxisAndLabel()

	if len(s.Values) == 1 {
		p := canvas.Float64Point{X: 0, Y: s.Values[0]}
		lc.DrawBrailleLine(p, p)
	}
	for i := 1; i < len(s.Values); i++ {
		lc.DrawBrailleLine(
			canvas.Float64Point{X: float64(i - 1), Y: s.Values[i-1]},
			canvas.Float64Point{X: float64(i), Y: s.Values[i]},
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		labelStyle.Render(r.valueRow(s)),
		lc.View(),
	)
}

// valueRow spreads the point labels across the chart width
func (r Renderer) valueRow(s Series) string {
	labels := PointLabels(s.Values)
	if len(labels) < 2 {
		return ""
	}

	row := []rune(strings.Repeat(" ", r.Width))
	step := float64(r.Width-1) / float64(len(labels)-1)
	for i, label := range labels {
		if label == "" {
			continue
		}
		pos := int(math.Round(float64(i)*step)) - len(label)/2
		for j, ch := range label {
			if k := pos + j; k >= 0 && k < len(row) {
				row[k] = ch
			}
		}
	}
	return strings.TrimRight(string(row), " ")
}

func formatValue(v float64) string {
	if math.Abs(v) >= 10 {
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
