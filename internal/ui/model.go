package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/weather-terminal/internal/charts"
	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/refresh"
)

// Locator finds the machine's location, never failing
type Locator interface {
	LocateOrDefault(ctx context.Context, ip string) models.Location
}

// PlaceSearcher resolves free text to a location
type PlaceSearcher interface {
	Search(ctx context.Context, query string) (models.Location, error)
}

// Executor runs a refresh plan and returns its results
type Executor interface {
	Execute(ctx context.Context, plan refresh.Plan) refresh.Batch
}

// AppState represents the current state of the application
type AppState int

const (
	StateLocating AppState = iota // Resolving the initial location
	StateLoading                  // First fetch for a location in flight
	StateDisplay                  // Dashboard
	StateError                    // Initial location could not be resolved
)

const (
	defaultMapZoom = 11
	defaultMapSpan = 0.25
)

// Deps are the collaborators the dashboard drives
type Deps struct {
	Controller *refresh.Controller
	Fetcher    Executor
	Locator    Locator
	Searcher   PlaceSearcher
	Logger     logger.Logger

	// IP to geolocate, empty for the caller's own address
	IP string
	// Query, when set, is searched instead of the IP lookup
	Query string

	MapZoom int
	MapSpan float64
}

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int
	err    error

	// Shown in the footer without leaving the dashboard
	footerErr error

	controller *refresh.Controller
	fetcher    Executor
	locator    Locator
	searcher   PlaceSearcher
	log        logger.Logger

	ip           string
	initialQuery string
	mapZoom      int
	mapSpan      float64

	// Search
	searching   bool
	searchInput textinput.Model

	chart   charts.Kind
	spinner spinner.Model
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "City, state or zipcode (e.g. Dayton, OH or 45402)..."
	ti.CharLimit = 100
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	if deps.MapZoom <= 0 {
		deps.MapZoom = defaultMapZoom
	}
	if deps.MapSpan <= 0 {
		deps.MapSpan = defaultMapSpan
	}

	return Model{
		state:        StateLocating,
		controller:   deps.Controller,
		fetcher:      deps.Fetcher,
		locator:      deps.Locator,
		searcher:     deps.Searcher,
		log:          logger.Component(deps.Logger, "ui"),
		ip:           deps.IP,
		initialQuery: deps.Query,
		mapZoom:      deps.MapZoom,
		mapSpan:      deps.MapSpan,
		searchInput:  ti,
		chart:        charts.Temperature,
		spinner:      s,
	}
}

// Init starts locating the dashboard
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.locateCmd())
}

func (m Model) locateCmd() tea.Cmd {
	if m.initialQuery != "" && m.searcher != nil {
		return searchPlace(m.searcher, m.initialQuery)
	}
	return locate(m.locator, m.ip)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case locatedMsg:
		return m.changeLocation(msg.location)

	case searchResultMsg:
		if msg.err != nil {
			m.log.Warnf("search for %q failed: %s", msg.query, logger.FormatError(msg.err))
			if m.state == StateLocating {
				m.err = fmt.Errorf("could not find %q: %w", msg.query, msg.err)
				m.state = StateError
				return m, nil
			}
			m.footerErr = fmt.Errorf("could not find %q", msg.query)
			return m, nil
		}
		m.footerErr = nil
		return m.changeLocation(msg.location)

	case batchFetchedMsg:
		outcomes := m.controller.Apply(msg.batch)
		if m.state == StateLoading && anyCurrent(outcomes) {
			m.state = StateDisplay
		}
		return m, nil

	case MinuteTickMsg:
		if !m.hasLocation() {
			return m, nil
		}
		plan, err := m.controller.OnMinuteTick()
		if err != nil {
			m.log.Errorf("minute tick: %v", err)
			m.footerErr = err
			return m, nil
		}
		if errors.Is(m.footerErr, refresh.ErrFormat) {
			m.footerErr = nil
		}
		return m, executePlan(m.fetcher, plan)

	case HalfHourTickMsg:
		if !m.hasLocation() {
			return m, nil
		}
		return m, executePlan(m.fetcher, m.controller.OnHalfHourTick())

	case spinner.TickMsg:
		if m.state != StateLocating && m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// changeLocation swaps the dashboard to loc and fetches everything for it
func (m Model) changeLocation(loc models.Location) (tea.Model, tea.Cmd) {
	m.err = nil
	m.state = StateLoading

	plan := m.controller.OnLocationChanged(loc)
	if _, err := m.controller.OnViewportChanged(models.ViewportAround(loc, m.mapZoom, m.mapSpan)); err != nil {
		m.log.Warnf("map layers for %s: %v", loc.Label(), err)
	}

	return m, executePlan(m.fetcher, plan)
}

// anyCurrent reports whether a batch had results for the current location
func anyCurrent(outcomes map[refresh.Subsystem]refresh.Outcome) bool {
	for _, o := range outcomes {
		if o != refresh.Stale {
			return true
		}
	}
	return false
}

func (m Model) hasLocation() bool {
	return m.state == StateLoading || m.state == StateDisplay
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.searching {
		return m.handleSearchInput(msg)
	}

	if msg.String() == "q" {
		return m, tea.Quit
	}

	switch m.state {
	case StateError:
		// Any key falls back to the IP location
		m.err = nil
		m.initialQuery = ""
		m.state = StateLocating
		return m, tea.Batch(m.spinner.Tick, m.locateCmd())

	case StateDisplay, StateLoading:
		switch {
		case msg.String() == "/":
			if m.searcher == nil {
				return m, nil
			}
			m.searching = true
			m.searchInput.SetValue("")
			m.searchInput.Focus()
			return m, textinput.Blink
		case msg.String() == "r":
			return m, executePlan(m.fetcher, m.controller.RefreshAll())
		case msg.Type == tea.KeyTab:
			m.chart = nextChart(m.chart)
			return m, nil
		}
	}

	return m, nil
}

// handleSearchInput handles keyboard input while the search box is open
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		return m, nil

	case tea.KeyEnter:
		query := m.searchInput.Value()
		if query == "" {
			return m, nil
		}
		m.searching = false
		m.searchInput.Blur()
		return m, searchPlace(m.searcher, query)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func nextChart(k charts.Kind) charts.Kind {
	for i, kind := range charts.Kinds {
		if kind == k {
			return charts.Kinds[(i+1)%len(charts.Kinds)]
		}
	}
	return charts.Temperature
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateLocating:
		return m.viewWaiting("Finding your location...")
	case StateLoading:
		return m.viewWaiting(fmt.Sprintf("Loading weather for %s...", m.controller.Location().Label()))
	case StateDisplay:
		return m.viewDisplay()
	case StateError:
		return m.viewError()
	}

	return ""
}

func (m Model) viewWaiting(status string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Weather Terminal"),
		"",
		fmt.Sprintf("%s %s", m.spinner.View(), mutedStyle.Render(status)),
	)
}

// viewError renders the error view
func (m Model) viewError() string {
	errorMsg := "An unknown error occurred"
	if m.err != nil {
		errorMsg = m.err.Error()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render("✗ Error"),
		"",
		errorMsg,
		"",
		helpStyle.Render("Press any key to use your current location • Q: Quit"),
	)
}

// viewDisplay renders the dashboard top to bottom
func (m Model) viewDisplay() string {
	d := m.controller.Display()

	var sections []string
	sections = append(sections, m.renderHeader(d))

	if banner := renderBanner(d.Banner, m.contentWidth()); banner != "" {
		sections = append(sections, banner)
	}

	sections = append(sections,
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderCurrentPane(d.Current),
			m.renderMapPane(d.Layers),
		),
		m.renderChartPane(d.Hourly),
		m.renderDailyPane(d.Daily),
	)

	if m.searching {
		sections = append(sections, searchBoxStyle.Render(m.searchInput.View()))
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(d refresh.Display) string {
	title := titleStyle.Render("☂ " + d.Location.Label())
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		mutedStyle.Render(d.Status),
	)
}

func (m Model) renderFooter() string {
	var lines []string
	if m.footerErr != nil {
		lines = append(lines, errorStyle.Render("✗ "+m.footerErr.Error()))
	}

	help := "/: Search • R: Refresh • Tab: Next chart • Q: Quit"
	if m.searching {
		help = "Enter: Search • Esc: Cancel"
	}
	lines = append(lines,
		helpStyle.Render(help),
		mutedStyle.Render("Data provided by OpenWeather"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) contentWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	return w
}
