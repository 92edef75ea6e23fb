package application

import (
	"context"
	"time"

	"tutorwatch/internal/domain"
)

// fakeClock advances its own time by every sleep instead of blocking, and can
// cancel a context after a fixed number of sleeps to break the poller out of
// its loops.
type fakeClock struct {
	now       time.Time
	sleeps    []time.Duration
	cancel    context.CancelFunc
	maxSleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.cancel != nil && c.maxSleeps > 0 && len(c.sleeps) >= c.maxSleeps {
		c.cancel()
	}
	return nil
}

type fakeLoginFlow struct {
	calls []domain.ServiceKey
	err   error
}

func (f *fakeLoginFlow) Login(_ context.Context, service domain.ServiceKey, _, _ string) (string, error) {
	f.calls = append(f.calls, service)
	if f.err != nil {
		return "", f.err
	}
	return "token-" + string(service), nil
}

type fakeCache struct {
	entries    map[domain.ServiceKey]string
	alwaysMiss bool
	getCalls   int
	putCalls   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[domain.ServiceKey]string{}}
}

func (c *fakeCache) Get(_ context.Context, service domain.ServiceKey) (string, bool, error) {
	c.getCalls++
	if c.alwaysMiss {
		return "", false, nil
	}
	token, ok := c.entries[service]
	return token, ok, nil
}

func (c *fakeCache) Put(_ context.Context, service domain.ServiceKey, token string) error {
	c.putCalls++
	c.entries[service] = token
	return nil
}

func (c *fakeCache) Clear(_ context.Context, service domain.ServiceKey) error {
	delete(c.entries, service)
	return nil
}

func (c *fakeCache) ClearAll(_ context.Context) error {
	c.entries = map[domain.ServiceKey]string{}
	return nil
}

func (c *fakeCache) List(_ context.Context) ([]domain.Credential, error) {
	return nil, nil
}

type statusStep struct {
	body string
	err  error
}

// fakeQueue serves a script of status responses and cancels the context when
// the script runs out, so a test's poller winds down deterministically.
type fakeQueue struct {
	script        []statusStep
	fetchCalls    int
	activateCalls int
	activated     int
	activateErr   error
	cancel        context.CancelFunc
	events        *[]string
}

func (q *fakeQueue) FetchStatus(context.Context, string) (string, error) {
	q.fetchCalls++
	if len(q.script) == 0 {
		if q.cancel != nil {
			q.cancel()
		}
		return "", context.Canceled
	}

	step := q.script[0]
	q.script = q.script[1:]
	if len(q.script) == 0 && q.cancel != nil {
		q.cancel()
	}
	return step.body, step.err
}

func (q *fakeQueue) ActivateAll(context.Context, string) (int, error) {
	q.activateCalls++
	if q.events != nil {
		*q.events = append(*q.events, "activate")
	}
	return q.activated, q.activateErr
}

type fakeStudents struct {
	results []domain.Student
	queries []string
}

func (s *fakeStudents) Search(_ context.Context, _, name string) ([]domain.Student, error) {
	s.queries = append(s.queries, name)
	return s.results, nil
}

type fakeLists struct {
	entries       []domain.ScheduleEntry
	entriesErr    error
	scheduleCalls int
	detail        domain.ListDetail
	detailFound   bool
	detailCalls   int
	events        *[]string
}

func (l *fakeLists) PlannedSchedules(context.Context, string) ([]domain.ScheduleEntry, error) {
	l.scheduleCalls++
	if l.entriesErr != nil {
		return nil, l.entriesErr
	}
	return l.entries, nil
}

func (l *fakeLists) InfoForStudent(context.Context, string, string) (domain.ListDetail, bool, error) {
	l.detailCalls++
	if l.events != nil {
		*l.events = append(*l.events, "list-lookup")
	}
	return l.detail, l.detailFound, nil
}

type fakeNotifier struct {
	messages []string
	err      error
	events   *[]string
}

func (n *fakeNotifier) Notify(_ context.Context, _, message string) error {
	n.messages = append(n.messages, message)
	if n.events != nil {
		*n.events = append(*n.events, "notify")
	}
	return n.err
}
