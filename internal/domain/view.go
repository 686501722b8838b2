package domain

import (
	"fmt"
	"strings"
	"time"
)

// CalendarView is one of the calendar layouts a client can request.
type CalendarView string

const (
	ViewMonth  CalendarView = "month"
	ViewWeek   CalendarView = "week"
	ViewDay    CalendarView = "day"
	ViewAgenda CalendarView = "agenda"
)

// ParseCalendarView parses s case-insensitively; an empty string means month.
func ParseCalendarView(s string) (CalendarView, error) {
	switch v := CalendarView(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewMonth, nil
	case ViewMonth, ViewWeek, ViewDay, ViewAgenda:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown view %q", ErrInvalidInput, s)
	}
}

// ViewRange returns the window shown by view around anchor, computed in loc.
// Agenda windows have no upper bound.
func ViewRange(view CalendarView, anchor time.Time, weekStart time.Weekday, loc *time.Location) TimeWindow {
	if loc == nil {
		loc = time.UTC
	}
	a := anchor.In(loc)
	day := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, loc)

	switch view {
	case ViewWeek:
		back := (int(day.Weekday()) - int(weekStart) + 7) % 7
		from := day.AddDate(0, 0, -back)
		return TimeWindow{From: from, To: from.AddDate(0, 0, 7)}
	case ViewDay:
		return TimeWindow{From: day, To: day.AddDate(0, 0, 1)}
	case ViewAgenda:
		return TimeWindow{From: day}
	default:
		from := time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, loc)
		return TimeWindow{From: from, To: from.AddDate(0, 1, 0)}
	}
}

// Overlaps reports whether [start, end) intersects the window.
func (w TimeWindow) Overlaps(start, end time.Time) bool {
	if !w.To.IsZero() && !start.Before(w.To) {
		return false
	}
	if !w.From.IsZero() && !end.After(w.From) {
		return false
	}
	return true
}
