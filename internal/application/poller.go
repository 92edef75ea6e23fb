package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"tutorwatch/internal/domain"
	"tutorwatch/internal/ports"
)

type PollerConfig struct {
	// ActivationInterval is how often presence on inactive lists is
	// re-asserted, independent of polling cadence.
	ActivationInterval time.Duration
	// SettleDelay is the pause after a startup activation so the service
	// registers it before the first poll.
	SettleDelay time.Duration
	// NotifyPause, BusyPause and UnrecognizedPause throttle polling after
	// the corresponding observations.
	NotifyPause       time.Duration
	BusyPause         time.Duration
	UnrecognizedPause time.Duration
	// AuthRetryPause is the wait after a failed sign-on before the next full
	// restart.
	AuthRetryPause time.Duration
	// RetryWaitChunk caps each increment of the retry-wait sleep so a host
	// suspend/resume cannot overshoot the computed retry time by more than
	// one chunk.
	RetryWaitChunk time.Duration
}

func (c *PollerConfig) applyDefaults() {
	if c.ActivationInterval <= 0 {
		c.ActivationInterval = 15 * time.Minute
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 3 * time.Second
	}
	if c.NotifyPause <= 0 {
		c.NotifyPause = 5 * time.Second
	}
	if c.BusyPause <= 0 {
		c.BusyPause = 3 * time.Second
	}
	if c.UnrecognizedPause <= 0 {
		c.UnrecognizedPause = 5 * time.Second
	}
	if c.AuthRetryPause <= 0 {
		c.AuthRetryPause = 5 * time.Minute
	}
	if c.RetryWaitChunk <= 0 {
		c.RetryWaitChunk = 10 * time.Minute
	}
}

// Poller owns one logical session per target service and drives the
// monitoring state machine. All loop state lives in explicit fields; the
// whole poller runs on a single goroutine with blocking sleeps as its only
// suspension points.
type Poller struct {
	auth     *Authenticator
	queue    ports.QueueService
	students ports.StudentDirectory
	lists    ports.ListDirectory
	notifier ports.Notifier
	sched    *Scheduler
	clock    ports.Clock
	log      *logrus.Logger
	cfg      PollerConfig

	lastSeen       string
	failures       int
	lastActivation time.Time
}

type sessionTokens struct {
	queue   string
	daisy   string
	desktop string
}

func NewPoller(
	auth *Authenticator,
	queue ports.QueueService,
	students ports.StudentDirectory,
	lists ports.ListDirectory,
	notifier ports.Notifier,
	sched *Scheduler,
	clock ports.Clock,
	log *logrus.Logger,
	cfg PollerConfig,
) *Poller {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = logrus.New()
	}
	cfg.applyDefaults()

	return &Poller{
		auth:     auth,
		queue:    queue,
		students: students,
		lists:    lists,
		notifier: notifier,
		sched:    sched,
		clock:    clock,
		log:      log,
		cfg:      cfg,
	}
}

// Run executes sessions until ctx is cancelled. A session that ends because
// the service invalidated it restarts immediately (the retry wait already
// happened inside monitoring); any other failure pauses before the restart.
func (p *Poller) Run(ctx context.Context) error {
	for {
		err := p.runSession(ctx)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.log.WithError(err).Error("session failed, pausing before restart")
		if err := p.clock.Sleep(ctx, p.cfg.AuthRetryPause); err != nil {
			return err
		}
	}
}

func (p *Poller) runSession(ctx context.Context) error {
	tokens, err := p.signIn(ctx)
	if err != nil {
		return err
	}

	if err := p.activateAtStartup(ctx, tokens.queue); err != nil {
		return err
	}

	return p.monitor(ctx, tokens)
}

func (p *Poller) signIn(ctx context.Context) (sessionTokens, error) {
	var tokens sessionTokens
	var err error

	if tokens.queue, err = p.auth.Token(ctx, domain.ServiceQueueMobile, true); err != nil {
		return sessionTokens{}, err
	}
	if tokens.daisy, err = p.auth.Token(ctx, domain.ServiceDaisy, true); err != nil {
		return sessionTokens{}, err
	}
	if tokens.desktop, err = p.auth.Token(ctx, domain.ServiceQueueDesktop, true); err != nil {
		return sessionTokens{}, err
	}

	return tokens, nil
}

func (p *Poller) activateAtStartup(ctx context.Context, token string) error {
	activated, err := p.queue.ActivateAll(ctx, token)
	p.lastActivation = p.clock.Now()
	if err != nil {
		p.log.WithError(err).Warn("startup list activation failed")
		return nil
	}

	p.log.WithField("activated", activated).Info("lists activated")
	if activated > 0 {
		return p.clock.Sleep(ctx, p.cfg.SettleDelay)
	}
	return nil
}

// monitor is the MONITORING state. It returns nil when the session was
// invalidated and the retry wait has elapsed, so the caller re-authenticates
// immediately; it returns an error only for cancelled sleeps.
func (p *Poller) monitor(ctx context.Context, tokens sessionTokens) error {
	p.log.Info("queue monitoring started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.sched.EnsureFresh(ctx, tokens.desktop); err != nil {
			p.log.WithError(err).Warn("schedule refresh failed")
		}

		mode := p.sched.Mode()
		if mode == ModeSlow {
			p.maybeActivate(ctx, tokens.queue)
			if err := p.clock.Sleep(ctx, p.sched.Interval(ModeSlow)); err != nil {
				return err
			}
			continue
		}

		if err := p.clock.Sleep(ctx, p.sched.Interval(ModeFast)); err != nil {
			return err
		}

		p.maybeActivate(ctx, tokens.queue)

		body, err := p.queue.FetchStatus(ctx, tokens.queue)
		if err != nil {
			delay := domain.BackoffDelay(p.failures)
			p.failures++
			p.log.WithError(err).WithField("backoff", delay).Warn("status fetch failed")
			if err := p.clock.Sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}
		p.failures = 0

		leaveSession, err := p.handle(ctx, tokens, domain.Classify(body))
		if err != nil {
			return err
		}
		if leaveSession {
			return nil
		}
	}
}

func (p *Poller) handle(ctx context.Context, tokens sessionTokens, obs domain.Observation) (bool, error) {
	switch obs.Kind {
	case domain.ObservationEmpty:
		p.lastSeen = ""
		return false, nil

	case domain.ObservationNextEntry:
		if obs.RawText == p.lastSeen {
			return false, nil
		}
		p.lastSeen = obs.RawText
		p.notifyNextEntry(ctx, tokens, obs.RawText)
		return false, p.clock.Sleep(ctx, p.cfg.NotifyPause)

	case domain.ObservationBusy:
		return false, p.clock.Sleep(ctx, p.cfg.BusyPause)

	case domain.ObservationNotActive, domain.ObservationSessionInvalid:
		p.log.WithField("observation", obs.Kind).Info("session no longer usable, scheduling retry")
		if err := p.waitUntilRetry(ctx); err != nil {
			return false, err
		}
		return true, nil

	default:
		p.log.WithField("body", obs.RawText).Warn("unrecognized queue response")
		return false, p.clock.Sleep(ctx, p.cfg.UnrecognizedPause)
	}
}

// notifyNextEntry dispatches the notification first, from the fields already
// in hand; the contextual lookups run afterwards and only enrich the log, so
// their latency and failures never delay or suppress the push.
func (p *Poller) notifyNextEntry(ctx context.Context, tokens sessionTokens, rawText string) {
	name, location := domain.SplitNameLocation(rawText)

	message := "Next in queue: " + name
	if location != "" {
		message += "\nLocation: " + location
	}
	if err := p.notifier.Notify(ctx, "", message); err != nil {
		p.log.WithError(err).Warn("notification failed")
	}

	entry := p.log.WithField("student", name)
	if location != "" {
		entry = entry.WithField("location", location)
	}
	entry.Info("next in queue")

	if students, err := p.students.Search(ctx, tokens.daisy, name); err != nil {
		p.log.WithError(err).Warn("student lookup failed")
	} else if len(students) > 0 && students[0].Email != "" {
		p.log.WithFields(logrus.Fields{"student": name, "email": students[0].Email}).Info("student details")
	}

	detail, found, err := p.lists.InfoForStudent(ctx, tokens.desktop, rawText)
	if err != nil {
		p.log.WithError(err).Warn("list lookup failed")
		return
	}
	if !found {
		return
	}
	p.log.WithFields(logrus.Fields{
		"list":            detail.ListID,
		"course":          detail.Course,
		"other_teachers":  detail.OtherTeachers,
		"recent_activity": detail.RecentActivity,
	}).Info("list details")
}

// waitUntilRetry sleeps until the computed retry time in bounded increments,
// re-reading the clock between chunks so a suspended host resumes close to
// the target instead of overshooting by the whole remaining duration.
func (p *Poller) waitUntilRetry(ctx context.Context) error {
	retryAt, reason := domain.NextRetryTime(p.clock.Now())
	p.log.WithFields(logrus.Fields{
		"until":  retryAt.Format("2006-01-02 15:04:05"),
		"reason": reason,
	}).Info("waiting before re-authenticating")

	for {
		remaining := retryAt.Sub(p.clock.Now())
		if remaining <= 0 {
			return nil
		}
		if remaining > p.cfg.RetryWaitChunk {
			remaining = p.cfg.RetryWaitChunk
		}
		if err := p.clock.Sleep(ctx, remaining); err != nil {
			return err
		}
	}
}

// maybeActivate re-asserts list presence once per activation interval.
// Failures are logged and retried at the next interval, never fatal.
func (p *Poller) maybeActivate(ctx context.Context, token string) {
	now := p.clock.Now()
	if !p.lastActivation.IsZero() && now.Sub(p.lastActivation) < p.cfg.ActivationInterval {
		return
	}
	p.lastActivation = now

	activated, err := p.queue.ActivateAll(ctx, token)
	if err != nil {
		p.log.WithError(err).Warn("list activation failed, will retry next interval")
		return
	}
	p.log.WithField("activated", activated).Info("lists activated")
}
