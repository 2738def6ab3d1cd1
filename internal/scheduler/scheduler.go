package scheduler

import (
	"fmt"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/robfig/cron/v3"
)

// Cron specs with a seconds field, aligned to the wall clock
const (
	MinuteSpec   = "0 * * * * *"
	HalfHourSpec = "0 */30 * * * *"
)

// Job receives the time its entry fired
type Job func(at time.Time)

// CronScheduler runs jobs on cron specs
type CronScheduler struct {
	cron   *cron.Cron
	logger logger.Logger
	names  map[cron.EntryID]string
}

func NewCronScheduler(log logger.Logger) *CronScheduler {
	return &CronScheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.Component(log, "cron_scheduler"),
		names:  make(map[cron.EntryID]string),
	}
}

// Add registers job under spec. Jobs added after Start run too.
func (s *CronScheduler) Add(name, spec string, job Job) error {
	entryID, err := s.cron.AddFunc(spec, s.wrap(name, job))
	if err != nil {
		return fmt.Errorf("scheduling %s (%q): %w", name, spec, err)
	}
	s.names[entryID] = name
	s.logger.Debugf("Task %s scheduled with entry ID: %d", name, entryID)
	return nil
}

// Dashboard registers the minute and half-hour refresh ticks
func (s *CronScheduler) Dashboard(onMinute, onHalfHour Job) error {
	if err := s.Add("minute", MinuteSpec, onMinute); err != nil {
		return err
	}
	return s.Add("half_hour", HalfHourSpec, onHalfHour)
}

func (s *CronScheduler) wrap(name string, job Job) func() {
	return func() {
		at := time.Now()
		s.logger.WithField("task", name).Debug("tick")
		job(at)
	}
}

// Next returns when each registered task fires next
func (s *CronScheduler) Next() map[string]time.Time {
	next := make(map[string]time.Time)
	for _, e := range s.cron.Entries() {
		next[s.names[e.ID]] = e.Next
	}
	return next
}

func (s *CronScheduler) Start() {
	s.cron.Start()
	s.logger.Info("Cron scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler stopped")
}
