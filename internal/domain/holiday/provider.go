package holiday

import (
	"context"
	"time"

	"budget_calendar/internal/calendar"
)

// Provider returns public holidays overlapping [start, end].
// Implementations are best effort: a year that cannot be fetched is simply absent.
type Provider interface {
	Holidays(ctx context.Context, start, end time.Time) (calendar.HolidaySet, error)
}

// Static is a fixed holiday set, used for previews and tests.
type Static calendar.HolidaySet

// Holidays returns a copy of the set regardless of the range.
func (s Static) Holidays(_ context.Context, _, _ time.Time) (calendar.HolidaySet, error) {
	out := make(calendar.HolidaySet, len(s))
	out.Merge(calendar.HolidaySet(s))
	return out, nil
}
