package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/testutil"
)

func intp(v int) *int { return &v }

func TestCandidateInput_Parse(t *testing.T) {
	rec, err := CandidateInput{Type: "monthly_nth", DayOfWeek: intp(1), WeekOfMonth: intp(2)}.Parse()
	require.NoError(t, err)
	assert.Equal(t, schedule.MonthlyNth, rec.Type)
	assert.Equal(t, 2, rec.WeekOfMonth)

	rec, err = CandidateInput{Type: "one_time", Date: "2026-03-10"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, rec.Date.Weekday())

	bad := []CandidateInput{
		{Type: "weekly"},
		{Type: "weekly", DayOfWeek: intp(7)},
		{Type: "monthly_nth", DayOfWeek: intp(1), WeekOfMonth: intp(6)},
		{Type: "one_time", Date: "10/03/2026"},
		{Type: "yearly", DayOfWeek: intp(1)},
	}
	for _, in := range bad {
		_, err := in.Parse()
		assert.True(t, httperr.IsBusiness(err, domain.CodeInvalidRecurrence), "%+v", in)
	}
}

func TestListOccupiedRanges(t *testing.T) {
	db := testutil.OpenDB(t)
	// Weekly on Tuesdays, 09:00-10:00.
	cat := testutil.SeedCatalog(t, db, testutil.CatalogOptions{Weekday: time.Tuesday})

	second := models.ServiceSchedule{
		ServiceID:    cat.Service.ID,
		SlotCapacity: 2,
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Recurrences: []models.ScheduleRecurrence{
			{Type: models.RecurrenceMonthlyNth, DayOfWeek: intp(1), WeekOfMonth: intp(2)},
		},
		Times: []models.ScheduleTime{{StartTime: "15:00", EndTime: "16:00"}},
	}
	require.NoError(t, db.Create(&second).Error)

	uc := NewListOccupiedRanges(repository.NewAppointmentGormRepository(db))
	ctx := context.Background()

	// 2026-03-10 is a Tuesday.
	tuesday := schedule.Recurrence{Type: schedule.OneTime, Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	ranges, err := uc.Execute(ctx, cat.Church.ID, tuesday, 0)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, "09:00", ranges[0].Start)

	// Excluding the schedule being edited.
	ranges, err = uc.Execute(ctx, cat.Church.ID, tuesday, cat.Schedule.ID)
	require.NoError(t, err)
	assert.Empty(t, ranges)

	// 2026-03-09 is the second Monday of March.
	secondMonday := schedule.Recurrence{Type: schedule.OneTime, Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)}
	ranges, err = uc.Execute(ctx, cat.Church.ID, secondMonday, 0)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, "15:00", ranges[0].Start)

	thirdMonday := schedule.Recurrence{Type: schedule.MonthlyNth, DayOfWeek: 1, WeekOfMonth: 3}
	ranges, err = uc.Execute(ctx, cat.Church.ID, thirdMonday, 0)
	require.NoError(t, err)
	assert.Empty(t, ranges)

	// Before the schedules start.
	early := schedule.Recurrence{Type: schedule.OneTime, Date: time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)}
	ranges, err = uc.Execute(ctx, cat.Church.ID, early, 0)
	require.NoError(t, err)
	assert.Empty(t, ranges)
}
