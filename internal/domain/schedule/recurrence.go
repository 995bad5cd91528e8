package schedule

import (
	"time"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

type RecurrenceType string

const (
	Weekly     RecurrenceType = models.RecurrenceWeekly
	MonthlyNth RecurrenceType = models.RecurrenceMonthlyNth
	OneTime    RecurrenceType = models.RecurrenceOneTime
)

// Recurrence is one repetition rule. DayOfWeek uses time.Weekday numbering
// (0 = Sunday). WeekOfMonth is 1-based, see WeekOfMonth.
type Recurrence struct {
	Type        RecurrenceType
	DayOfWeek   int
	WeekOfMonth int
	Date        time.Time
}

// WeekOfMonth counts 7-day blocks from the 1st: days 1-7 are week 1,
// 8-14 week 2 and so on. It is not a calendar week.
func WeekOfMonth(date time.Time) int {
	return (date.Day()-1)/7 + 1
}

// OccursOn reports whether the rule produces an occurrence on date.
func (r Recurrence) OccursOn(date time.Time) bool {
	switch r.Type {
	case Weekly:
		return int(date.Weekday()) == r.DayOfWeek
	case MonthlyNth:
		return int(date.Weekday()) == r.DayOfWeek && WeekOfMonth(date) == r.WeekOfMonth
	case OneTime:
		return sameDay(r.Date, date)
	}
	return false
}

// Conflicts reports whether two rules can land on the same day. The
// predicate is symmetric.
func Conflicts(existing, candidate Recurrence) bool {
	a, b := existing, candidate
	if rank(a.Type) > rank(b.Type) {
		a, b = b, a
	}

	switch a.Type {
	case Weekly:
		switch b.Type {
		case Weekly, MonthlyNth:
			return a.DayOfWeek == b.DayOfWeek
		case OneTime:
			return a.OccursOn(b.Date)
		}
	case MonthlyNth:
		switch b.Type {
		case MonthlyNth:
			return a.DayOfWeek == b.DayOfWeek && a.WeekOfMonth == b.WeekOfMonth
		case OneTime:
			return a.OccursOn(b.Date)
		}
	case OneTime:
		return b.Type == OneTime && sameDay(a.Date, b.Date)
	}
	return false
}

func rank(t RecurrenceType) int {
	switch t {
	case Weekly:
		return 0
	case MonthlyNth:
		return 1
	case OneTime:
		return 2
	}
	return 3
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FromModel converts a stored rule. Missing optional columns read as zero.
func FromModel(m models.ScheduleRecurrence) Recurrence {
	r := Recurrence{Type: RecurrenceType(m.Type)}
	if m.DayOfWeek != nil {
		r.DayOfWeek = *m.DayOfWeek
	}
	if m.WeekOfMonth != nil {
		r.WeekOfMonth = *m.WeekOfMonth
	}
	if m.SpecificDate != nil {
		r.Date = *m.SpecificDate
	}
	return r
}

// OccursOn reports whether a schedule is bookable on date: inside its date
// range and matched by at least one of its rules.
func OccursOn(s *models.ServiceSchedule, date time.Time) bool {
	day := dayOf(date)
	if !s.StartDate.IsZero() && day.Before(dayOf(s.StartDate)) {
		return false
	}
	if s.EndDate != nil && day.After(dayOf(*s.EndDate)) {
		return false
	}

	for _, rec := range s.Recurrences {
		if FromModel(rec).OccursOn(date) {
			return true
		}
	}
	return false
}

// dayOf drops the time of day, keeping the calendar date as written.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
