package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/refresh"
)

// MinuteTickMsg is sent by the scheduler at the start of every minute
type MinuteTickMsg struct {
	Time time.Time
}

// HalfHourTickMsg is sent by the scheduler on the hour and half hour
type HalfHourTickMsg struct {
	Time time.Time
}

// locatedMsg carries the location found by IP lookup
type locatedMsg struct {
	location models.Location
}

// searchResultMsg is sent when a place search finished
type searchResultMsg struct {
	query    string
	location models.Location
	err      error
}

// batchFetchedMsg carries the results of one refresh plan
type batchFetchedMsg struct {
	batch refresh.Batch
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}

func locate(l Locator, ip string) tea.Cmd {
	return func() tea.Msg {
		return locatedMsg{location: l.LocateOrDefault(context.Background(), ip)}
	}
}

func searchPlace(s PlaceSearcher, query string) tea.Cmd {
	return func() tea.Msg {
		loc, err := s.Search(context.Background(), query)
		return searchResultMsg{query: query, location: loc, err: err}
	}
}

// executePlan fetches a plan in the background. Empty plans need no command.
func executePlan(f Executor, plan refresh.Plan) tea.Cmd {
	if plan.Empty() {
		return nil
	}
	return func() tea.Msg {
		return batchFetchedMsg{batch: f.Execute(context.Background(), plan)}
	}
}
