package aggregate

import (
	"time"

	"github.com/segyhp/feedesk/internal/domain"
	customError "github.com/segyhp/feedesk/pkg/errors"
	"github.com/segyhp/feedesk/pkg/utils"
)

// WindowFor anchors a window of the given kind at ref, in ref's location.
// Weeks run Sunday through Saturday.
func WindowFor(kind string, ref time.Time) (domain.Window, error) {
	w := domain.Window{Kind: kind}

	switch kind {
	case domain.WindowToday:
		w.Start, w.End = utils.StartOfDay(ref), utils.EndOfDay(ref)
	case domain.WindowWeek:
		w.Start = utils.StartOfWeek(ref)
		w.End = utils.EndOfDay(w.Start.AddDate(0, 0, 6))
	case domain.WindowMonth:
		w.Start, w.End = utils.StartOfMonth(ref), utils.EndOfMonth(ref)
	case domain.WindowYear:
		w.Start, w.End = utils.StartOfYear(ref), utils.EndOfYear(ref)
	default:
		return domain.Window{}, customError.WrapInvalidWindow(kind)
	}

	return w, nil
}

// InWindow reports whether v falls within w. End is the last millisecond of the
// period, so everything before the millisecond that follows it is included.
func InWindow(w domain.Window, v time.Time) bool {
	return !v.Before(w.Start) && v.Before(w.End.Add(time.Millisecond))
}

// SelectByDateWindow keeps the records whose date falls in w, preserving order.
// Records without a date are dropped.
func SelectByDateWindow[T any](records []T, w domain.Window, dateOf func(T) *time.Time) []T {
	selected := make([]T, 0)
	for _, r := range records {
		v := dateOf(r)
		if v != nil && InWindow(w, *v) {
			selected = append(selected, r)
		}
	}
	return selected
}

// NewStudents keeps students created inside w
func NewStudents(students []domain.Student, w domain.Window) []domain.Student {
	return SelectByDateWindow(students, w, func(s domain.Student) *time.Time { return s.CreatedAt })
}
