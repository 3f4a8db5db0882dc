package usage

import "time"

// Period is a UTC calendar-month billing window
type Period struct {
	Start time.Time
	End   time.Time
}

// CurrentPeriod returns the UTC calendar-month window containing now.
// Counter rows are keyed by the window start, so every caller must derive
// the window the same way regardless of server timezone.
func CurrentPeriod(now time.Time) Period {
	utc := now.UTC()
	start := time.Date(utc.Year(), utc.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}
