package appointment

import (
	"context"
	"sort"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/timezone"
)

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

// Execute lists the time windows a service offers on a date. Windows that
// were never booked report their full capacity.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	church, err := uc.repo.GetActivePublicChurch(ctx, in.ChurchID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetService(ctx, church.ID, in.ServiceID); err != nil {
		return nil, err
	}

	day, err := timezone.ParseDate(church.Timezone, in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness(domain.CodeInvalidDate)
	}
	slotDate := timezone.FormatDate(day)

	schedules, err := uc.repo.ListSchedulesForService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	slots := []domain.TimeSlot{}
	var timeIDs []uint

	for i := range schedules {
		s := &schedules[i]
		if !schedule.OccursOn(s, day) {
			continue
		}
		for _, t := range s.Times {
			slots = append(slots, domain.TimeSlot{
				ScheduleID:     s.ID,
				ScheduleTimeID: t.ID,
				Start:          t.StartTime,
				End:            t.EndTime,
				Capacity:       s.SlotCapacity,
				Remaining:      s.SlotCapacity,
			})
			timeIDs = append(timeIDs, t.ID)
		}
	}

	if len(timeIDs) == 0 {
		return slots, nil
	}

	days, err := uc.repo.ListSlotDays(ctx, timeIDs, slotDate)
	if err != nil {
		return nil, err
	}

	remaining := make(map[uint]int, len(days))
	for _, d := range days {
		remaining[d.ScheduleTimeID] = d.RemainingSlots
	}
	for i := range slots {
		if r, ok := remaining[slots[i].ScheduleTimeID]; ok {
			slots[i].Remaining = r
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start < slots[j].Start
	})

	return slots, nil
}
