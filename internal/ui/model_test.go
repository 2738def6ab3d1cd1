package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/weather-terminal/internal/charts"
	"github.com/ngmaloney/weather-terminal/internal/refresh"
)

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(&mockWeatherService{}, "")

	if m.state != StateLocating {
		t.Errorf("NewModel() state = %v, want StateLocating", m.state)
	}
	if m.chart != charts.Temperature {
		t.Errorf("NewModel() chart = %v, want Temperature", m.chart)
	}
	if m.mapZoom != defaultMapZoom || m.mapSpan != defaultMapSpan {
		t.Errorf("NewModel() map = %d/%v, want defaults", m.mapZoom, m.mapSpan)
	}
	if m.Init() == nil {
		t.Error("Init() should start locating")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m, _ := newTestModel(&mockWeatherService{}, "")

	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if m.width != 100 {
		t.Errorf("After WindowSizeMsg, width = %d, want 100", m.width)
	}
	if m.height != 30 {
		t.Errorf("After WindowSizeMsg, height = %d, want 30", m.height)
	}
}

func TestModel_Update_ErrorMsg(t *testing.T) {
	m, _ := newTestModel(&mockWeatherService{}, "")

	m, _ = update(m, errMsg{err: tea.ErrProgramKilled})

	if m.state != StateError {
		t.Errorf("After errMsg, state = %v, want StateError", m.state)
	}
	if m.err == nil {
		t.Error("After errMsg, err should not be nil")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(&mockWeatherService{}, "")
			m.state = StateDisplay

			_, cmd := m.Update(tt.msg)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}
}

func TestModel_TabCyclesCharts(t *testing.T) {
	m, _ := newTestModel(&mockWeatherService{}, "")
	m.state = StateDisplay

	want := []charts.Kind{charts.Precipitation, charts.Humidity, charts.Temperature}
	for _, k := range want {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
		if m.chart != k {
			t.Errorf("chart = %v, want %v", m.chart, k)
		}
	}
}

// TestSearchInput verifies the '/' search box
func TestSearchInput(t *testing.T) {
	m, ctrl := newTestModel(&mockWeatherService{}, "")
	m.state = StateDisplay

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.searching {
		t.Fatal("'/' should open the search box")
	}

	// q types instead of quitting while searching
	for _, char := range "Seattle, WAq" {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{char}})
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyBackspace})

	if got := m.searchInput.Value(); got != "Seattle, WA" {
		t.Fatalf("search input = %q, want 'Seattle, WA'", got)
	}
	if !strings.Contains(m.View(), "Esc: Cancel") {
		t.Error("help should describe the search keys")
	}

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Error("Enter should close the search box")
	}

	m = run(t, m, cmd)
	if got := ctrl.Location().City; got != "Seattle" {
		t.Errorf("location = %s, want Seattle", got)
	}
	if m.state != StateLoading {
		t.Errorf("state = %v, want StateLoading", m.state)
	}
}

func TestSearchInput_EmptyAndEscape(t *testing.T) {
	m, _ := newTestModel(&mockWeatherService{}, "")
	m.state = StateDisplay

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})

	// Enter with empty input does nothing
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || !m.searching {
		t.Error("empty search should be ignored")
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching {
		t.Error("Esc should close the search box")
	}
}

// TestSearchFailureKeepsDashboard shows a failed search in the footer
func TestSearchFailureKeepsDashboard(t *testing.T) {
	m, ctrl := newTestModel(&mockWeatherService{}, "")
	m, cmd := update(m, locatedMsg{location: dayton})
	m = run(t, m, cmd)

	m = run(t, m, searchPlace(m.searcher, "Atlantis"))

	if m.state != StateDisplay {
		t.Errorf("state = %v, want StateDisplay", m.state)
	}
	if got := ctrl.Location().City; got != "Dayton" {
		t.Errorf("location = %s, want Dayton", got)
	}
	if !strings.Contains(m.View(), `could not find "Atlantis"`) {
		t.Error("footer should show the failed search")
	}
}

func TestModel_View_States(t *testing.T) {
	tests := []struct {
		name  string
		state AppState
		want  string
	}{
		{"locating", StateLocating, "Finding your location"},
		{"loading", StateLoading, "Loading weather"},
		{"display", StateDisplay, "Data provided by OpenWeather"},
		{"error", StateError, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(&mockWeatherService{}, "")
			m.state = tt.state

			view := m.View()
			if !strings.Contains(view, tt.want) {
				t.Errorf("View() for state %v missing %q", tt.state, tt.want)
			}
		})
	}
}

func TestModel_View_EmptyDisplay(t *testing.T) {
	m, _ := newTestModel(&mockWeatherService{}, "")
	m.state = StateDisplay

	view := m.View()
	for _, want := range []string{"No current conditions", "No hourly forecast", "No daily forecast", "No overlay tiles"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_View_InitialLoading(t *testing.T) {
	m, _ := newTestModel(&mockWeatherService{}, "")
	m.width = 0

	if view := m.View(); view != "Loading..." {
		t.Errorf("View() before window size = %q, want 'Loading...'", view)
	}
}

func TestModel_FormatErrorInFooter(t *testing.T) {
	m, _ := newTestModel(&mockWeatherService{}, "")
	m.state = StateDisplay
	m.footerErr = &refresh.FormatError{Status: "Someday 25:00 XM", Reason: "unknown weekday"}

	if !strings.Contains(m.View(), "Someday 25:00 XM") {
		t.Error("footer should show the status format error")
	}
}

func TestIconGlyph(t *testing.T) {
	tests := []struct {
		icon string
		want string
	}{
		{"01d", "☀"},
		{"01n", "☾"},
		{"02d", "⛅"},
		{"04n", "☁"},
		{"10d", "☂"},
		{"11d", "⚡"},
		{"13n", "❄"},
		{"50d", "≋"},
		{"", "?"},
		{"99d", "?"},
	}

	for _, tt := range tests {
		if got := iconGlyph(tt.icon); got != tt.want {
			t.Errorf("iconGlyph(%q) = %q, want %q", tt.icon, got, tt.want)
		}
	}
}

func TestAppState_Constants(t *testing.T) {
	if StateLocating != 0 {
		t.Errorf("StateLocating = %d, want 0", StateLocating)
	}
	if StateLoading != 1 {
		t.Errorf("StateLoading = %d, want 1", StateLoading)
	}
	if StateDisplay != 2 {
		t.Errorf("StateDisplay = %d, want 2", StateDisplay)
	}
	if StateError != 3 {
		t.Errorf("StateError = %d, want 3", StateError)
	}
}
