package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/testutil"
)

func TestGetAvailability(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Capacity: 3, IsMass: true})
	uc := NewGetAvailability(h.repo)
	ctx := context.Background()

	early := models.ScheduleTime{ScheduleID: h.cat.Schedule.ID, StartTime: "07:00", EndTime: "08:00"}
	require.NoError(t, h.db.Create(&early).Error)

	in := domain.AvailabilityInput{ChurchID: h.cat.Church.ID, ServiceID: h.cat.Service.ID, Date: bookingDate}

	slots, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "07:00", slots[0].Start)
	assert.Equal(t, 3, slots[1].Remaining)

	book(t, h, 1)

	slots, err = uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 3, slots[0].Remaining)
	assert.Equal(t, 2, slots[1].Remaining)
	assert.Equal(t, 3, slots[1].Capacity)

	// Monday: the schedule does not run.
	in.Date = "2026-03-09"
	slots, err = uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, slots)

	in.Date = "soon"
	_, err = uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, domain.CodeInvalidDate))
}

func TestListAppointments_Scoping(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Capacity: 5, IsMass: true})
	uc := NewListAppointments(h.repo)
	ctx := context.Background()

	book(t, h, 1)
	book(t, h, 1)
	book(t, h, 2)

	mine, total, err := uc.Execute(ctx, applicant(1), ListAppointmentsInput{Mine: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	all, total, err := uc.Execute(ctx, staffOf(h.cat.Church.ID), ListAppointmentsInput{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	_, _, err = uc.Execute(ctx, applicant(1), ListAppointmentsInput{})
	assert.True(t, httperr.IsBusiness(err, domain.CodeForbiddenAppointment))

	_, _, err = uc.Execute(ctx, staffOf(h.cat.Church.ID), ListAppointmentsInput{Status: "whatever"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeInvalidStatus))
}

func TestReapExpiredIntents(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Capacity: 2, Fee: 100})
	uc := NewReapExpiredIntents(h.repo, h.clock, zap.NewNop())
	ctx := context.Background()

	stale := checkout(t, h, 1)
	h.clock.Advance(20 * time.Minute)
	fresh := checkout(t, h, 2)
	h.clock.Advance(15 * time.Minute)

	n, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, models.IntentStatusExpired, intentStatus(t, h, stale))
	assert.Equal(t, models.IntentStatusPending, intentStatus(t, h, fresh))
	assert.Equal(t, 2, h.remaining(t))
}
