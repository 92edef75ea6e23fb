package ports

import (
	"context"

	"tutorwatch/internal/domain"
)

// QueueService is the mobile queue application. FetchStatus returns the raw
// status body for marker classification; ActivateAll re-asserts presence on
// every inactive list and returns how many were activated.
type QueueService interface {
	FetchStatus(ctx context.Context, token string) (string, error)
	ActivateAll(ctx context.Context, token string) (int, error)
}

// StudentDirectory looks up students by name.
type StudentDirectory interface {
	Search(ctx context.Context, token, name string) ([]domain.Student, error)
}

// ListDirectory is the desktop queue application: the operator's planned
// schedule and the detail page of the list a queued student is waiting on.
type ListDirectory interface {
	PlannedSchedules(ctx context.Context, token string) ([]domain.ScheduleEntry, error)
	InfoForStudent(ctx context.Context, token, rawText string) (domain.ListDetail, bool, error)
}

// Notifier dispatches one push notification. A single delivery attempt, no
// internal retry; callers treat failure as log-only.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}
