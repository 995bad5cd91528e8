package schedule

import (
	"context"
	"sort"
	"time"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/timezone"
)

// CandidateInput is a recurrence rule as typed in the schedule editor.
type CandidateInput struct {
	Type        string
	DayOfWeek   *int
	WeekOfMonth *int
	Date        string
}

// Parse validates the candidate rule. Weekly needs a day, monthly needs a
// day and a week between 1 and 5, one-time needs a date.
func (in CandidateInput) Parse() (schedule.Recurrence, error) {
	invalid := httperr.ErrBusiness(domain.CodeInvalidRecurrence)
	rec := schedule.Recurrence{Type: schedule.RecurrenceType(in.Type)}

	validDay := in.DayOfWeek != nil && *in.DayOfWeek >= 0 && *in.DayOfWeek <= 6

	switch rec.Type {
	case schedule.Weekly:
		if !validDay {
			return rec, invalid
		}
		rec.DayOfWeek = *in.DayOfWeek
	case schedule.MonthlyNth:
		if !validDay || in.WeekOfMonth == nil || *in.WeekOfMonth < 1 || *in.WeekOfMonth > 5 {
			return rec, invalid
		}
		rec.DayOfWeek = *in.DayOfWeek
		rec.WeekOfMonth = *in.WeekOfMonth
	case schedule.OneTime:
		d, err := time.Parse(timezone.DateLayout, in.Date)
		if err != nil {
			return rec, invalid
		}
		rec.Date = d
	default:
		return rec, invalid
	}
	return rec, nil
}

type OccupiedRange struct {
	ScheduleID uint   `json:"schedule_id"`
	ServiceID  uint   `json:"service_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type ListOccupiedRanges struct {
	repo domain.Repository
}

func NewListOccupiedRanges(repo domain.Repository) *ListOccupiedRanges {
	return &ListOccupiedRanges{repo: repo}
}

// Execute returns the time windows already taken, across all services of the
// church, on days the candidate rule would also fall on. excludeScheduleID
// skips the schedule being edited.
func (uc *ListOccupiedRanges) Execute(
	ctx context.Context,
	churchID uint,
	candidate schedule.Recurrence,
	excludeScheduleID uint,
) ([]OccupiedRange, error) {

	schedules, err := uc.repo.ListSchedulesForChurch(ctx, churchID)
	if err != nil {
		return nil, err
	}

	out := []OccupiedRange{}
	for i := range schedules {
		s := &schedules[i]
		if excludeScheduleID != 0 && s.ID == excludeScheduleID {
			continue
		}
		if !conflictsWith(s, candidate) {
			continue
		}
		for _, t := range s.Times {
			out = append(out, OccupiedRange{
				ScheduleID: s.ID,
				ServiceID:  s.ServiceID,
				Start:      t.StartTime,
				End:        t.EndTime,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out, nil
}

func conflictsWith(s *models.ServiceSchedule, candidate schedule.Recurrence) bool {
	// A one-time candidate outside the schedule's date range cannot clash.
	if candidate.Type == schedule.OneTime && !withinRange(s, candidate.Date) {
		return false
	}
	for _, rec := range s.Recurrences {
		if schedule.Conflicts(schedule.FromModel(rec), candidate) {
			return true
		}
	}
	return false
}

func withinRange(s *models.ServiceSchedule, date time.Time) bool {
	d := timezone.FormatDate(date)
	if !s.StartDate.IsZero() && d < timezone.FormatDate(s.StartDate) {
		return false
	}
	if s.EndDate != nil && d > timezone.FormatDate(*s.EndDate) {
		return false
	}
	return true
}
