package domain

import "time"

// MaxBackoff caps the exponential backoff applied after consecutive
// transport failures.
const MaxBackoff = 32 * time.Second

// BackoffDelay returns the sleep before the next attempt after the given
// number of consecutive failures: 1s, 2s, 4s, ... capped at MaxBackoff.
func BackoffDelay(failures int) time.Duration {
	if failures < 0 {
		failures = 0
	}
	if failures >= 5 {
		return MaxBackoff
	}
	return time.Duration(1<<uint(failures)) * time.Second
}

// NextRetryTime computes when a dead session should be retried: the next
// local midnight or one hour from now, whichever comes first. The returned
// reason is for logging.
func NextRetryTime(now time.Time) (time.Time, string) {
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	inOneHour := now.Add(time.Hour)

	if inOneHour.Before(nextMidnight) {
		return inOneHour, "1 hour"
	}
	return nextMidnight, "midnight"
}
