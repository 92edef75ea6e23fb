package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tutorwatch/internal/domain"
	"tutorwatch/internal/ports"
)

// Mode is the polling cadence the scheduler selects.
type Mode int

const (
	// ModeFast polls every second: the current time is inside a buffered
	// session window.
	ModeFast Mode = iota
	// ModeSlow skips queue polling and only wakes to refresh the schedule
	// snapshot.
	ModeSlow
)

func (m Mode) String() string {
	if m == ModeFast {
		return "fast"
	}
	return "slow"
}

type SchedulerConfig struct {
	// Buffer widens each session window on both sides.
	Buffer time.Duration
	// RefreshInterval bounds how stale the schedule snapshot may get.
	RefreshInterval time.Duration
	FastInterval    time.Duration
	SlowInterval    time.Duration
}

func (c *SchedulerConfig) applyDefaults() {
	if c.Buffer <= 0 {
		c.Buffer = 15 * time.Minute
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 15 * time.Minute
	}
	if c.FastInterval <= 0 {
		c.FastInterval = time.Second
	}
	if c.SlowInterval <= 0 {
		c.SlowInterval = 15 * time.Minute
	}
}

// Scheduler holds the planned-session snapshot and decides the polling
// cadence from it. Not safe for concurrent use; the poller owns it.
type Scheduler struct {
	lists ports.ListDirectory
	clock ports.Clock
	log   *logrus.Logger
	cfg   SchedulerConfig

	entries     []domain.ScheduleEntry
	refreshedAt time.Time
	lastMode    Mode
	modeKnown   bool
}

func NewScheduler(lists ports.ListDirectory, clock ports.Clock, log *logrus.Logger, cfg SchedulerConfig) *Scheduler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = logrus.New()
	}
	cfg.applyDefaults()

	return &Scheduler{lists: lists, clock: clock, log: log, cfg: cfg}
}

// EnsureFresh refreshes the snapshot when it is older than the refresh
// interval. Staleness inside the interval is tolerated by design.
func (s *Scheduler) EnsureFresh(ctx context.Context, token string) error {
	now := s.clock.Now()
	if !s.refreshedAt.IsZero() && now.Sub(s.refreshedAt) < s.cfg.RefreshInterval {
		return nil
	}

	entries, err := s.lists.PlannedSchedules(ctx, token)
	if err != nil {
		return fmt.Errorf("refresh schedule snapshot: %w", err)
	}

	s.entries = entries
	s.refreshedAt = now
	s.log.WithField("entries", len(entries)).Info("schedule snapshot refreshed")

	return nil
}

// Mode selects the cadence for the current instant. Transitions are logged
// once per edge; staying in the same mode is silent.
func (s *Scheduler) Mode() Mode {
	mode := ModeSlow
	if domain.AnyActive(s.entries, s.clock.Now(), s.cfg.Buffer) {
		mode = ModeFast
	}

	if !s.modeKnown || mode != s.lastMode {
		s.log.WithField("mode", mode).Info("polling cadence changed")
		s.lastMode = mode
		s.modeKnown = true
	}

	return mode
}

// Interval returns the sleep matching a cadence.
func (s *Scheduler) Interval(mode Mode) time.Duration {
	if mode == ModeFast {
		return s.cfg.FastInterval
	}
	return s.cfg.SlowInterval
}
