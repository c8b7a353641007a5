package timerange

import (
	"fmt"
	"time"

	"goldwatch/core/apperror"
)

// TimeRange is a closed [Start, End] window over snapshot timestamps.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New validates and builds a time range.
func New(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, apperror.NewValidation("time range start and end cannot be empty")
	}
	if end.Before(start) {
		return TimeRange{}, apperror.NewValidation("time range end %s is before start %s", end, start)
	}
	return TimeRange{Start: start, End: end}, nil
}

// LastDays returns the window covering the last n days up to now.
func LastDays(n int) (TimeRange, error) {
	if n <= 0 {
		return TimeRange{}, apperror.NewValidation("time range days must be positive, got %d", n)
	}
	now := time.Now()
	return TimeRange{Start: now.AddDate(0, 0, -n), End: now}, nil
}

// Contains reports whether t falls inside the window.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
