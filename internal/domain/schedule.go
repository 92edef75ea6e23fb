package domain

import "time"

// ScheduleEntry is one planned tutoring session, ordered by Start. Entries
// are a read-only snapshot between refreshes; staleness is bounded by the
// scheduler's refresh interval.
type ScheduleEntry struct {
	Start  time.Time
	End    time.Time
	Label  string
	ListID string
}

// ActiveAt reports whether now falls inside the entry's window widened by
// buffer on both sides. Both boundaries are inclusive.
func (e ScheduleEntry) ActiveAt(now time.Time, buffer time.Duration) bool {
	return !now.Before(e.Start.Add(-buffer)) && !now.After(e.End.Add(buffer))
}

// AnyActive reports whether any entry's buffered window covers now.
func AnyActive(entries []ScheduleEntry, now time.Time, buffer time.Duration) bool {
	for _, entry := range entries {
		if entry.ActiveAt(now, buffer) {
			return true
		}
	}
	return false
}
