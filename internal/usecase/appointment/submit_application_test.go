package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/notify"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/testutil"
)

func countAppointments(t *testing.T, h *harness) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&models.Appointment{}).Count(&n).Error)
	return n
}

func TestSubmit_FreeServiceBooksAndReserves(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Capacity: 1})
	testutil.ApproveMember(t, h.db, 1, h.cat.Church.ID)

	in := h.input()
	in.FormData = map[string]string{
		"field_12": "Maria Santos",
		"7":        "yes",
		"notes":    "skipped, no id",
	}

	res, err := h.submit.Execute(context.Background(), applicant(1), in)
	require.NoError(t, err)

	require.NotNil(t, res.Appointment)
	assert.False(t, res.PaymentRequired)
	assert.Equal(t, "Pending", res.Appointment.Status)
	assert.Equal(t, bookingDate, res.Appointment.SlotDate)
	assert.Equal(t, 9, res.Appointment.AppointmentDate.Hour())
	assert.Equal(t, 0, h.remaining(t))

	var answers []models.AppointmentAnswer
	require.NoError(t, h.db.Order("input_field_id").Find(&answers).Error)
	require.Len(t, answers, 2)
	assert.Equal(t, uint(7), answers[0].InputFieldID)
	assert.Equal(t, uint(12), answers[1].InputFieldID)
	assert.Equal(t, "Maria Santos", answers[1].Value)

	assert.Equal(t, 1, h.events.count(notify.EventAppointmentCreated))
}

func TestSubmit_FreeServiceRequiresMembership(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Capacity: 1})

	_, err := h.submit.Execute(context.Background(), applicant(1), h.input())
	assert.True(t, httperr.IsBusiness(err, domain.CodeMembershipRequired))
	assert.Zero(t, countAppointments(t, h))
	assert.Empty(t, h.events.events)
}

func TestSubmit_MassIsOpenToEveryone(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Capacity: 2, IsMass: true})

	res, err := h.submit.Execute(context.Background(), applicant(1), h.input())
	require.NoError(t, err)
	assert.NotNil(t, res.Appointment)
	assert.Equal(t, 1, h.remaining(t))
}

func TestSubmit_PaidServiceOpensCheckoutWithoutReserving(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Capacity: 1, Fee: 100})
	require.NoError(t, h.db.Model(&h.cat.Service).Updates(map[string]any{
		"discount_type":  models.DiscountPercentage,
		"discount_value": 20,
	}).Error)
	testutil.ApproveMember(t, h.db, 1, h.cat.Church.ID)

	in := h.input()
	in.FormData = map[string]string{"field-3": "Jose"}

	res, err := h.submit.Execute(context.Background(), applicant(1), in)
	require.NoError(t, err)

	assert.True(t, res.PaymentRequired)
	assert.Nil(t, res.Appointment)
	require.NotNil(t, res.Intent)
	assert.Equal(t, 80.0, res.Intent.Amount)
	assert.Equal(t, models.IntentStatusPending, res.Intent.Status)
	assert.Equal(t, testNow.Add(30*time.Minute), res.Intent.ExpiresAt)
	assert.Equal(t, "https://pay.example/"+res.Intent.SessionID, res.CheckoutURL)

	require.Len(t, h.bridge.requests, 1)
	assert.Equal(t, 80.0, h.bridge.requests[0].Amount)
	assert.Equal(t, bookingDate, h.bridge.requests[0].Metadata["slot_date"])

	// Nothing is held while the applicant pays.
	assert.Equal(t, 1, h.remaining(t))
	assert.Zero(t, countAppointments(t, h))
	assert.Empty(t, h.events.events)
}

func TestSubmit_NonMemberPaysFullPrice(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Fee: 100})
	require.NoError(t, h.db.Model(&h.cat.Service).Updates(map[string]any{
		"discount_type":  models.DiscountFixed,
		"discount_value": 30,
	}).Error)

	res, err := h.submit.Execute(context.Background(), applicant(1), h.input())
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Intent.Amount)
}

func TestSubmit_ProviderFailure(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{Fee: 50})
	h.bridge.createErr = errors.New("connection reset")

	_, err := h.submit.Execute(context.Background(), applicant(1), h.input())
	assert.True(t, httperr.IsBusiness(err, domain.CodePaymentProvider))

	var n int64
	require.NoError(t, h.db.Model(&models.PaymentIntent{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSubmit_CatalogMismatch(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{IsMass: true})
	ctx := context.Background()

	in := h.input()
	in.ScheduleTimeID++
	_, err := h.submit.Execute(ctx, applicant(1), in)
	assert.True(t, httperr.IsBusiness(err, domain.CodeCatalogMismatch))

	in = h.input()
	in.ServiceID++
	_, err = h.submit.Execute(ctx, applicant(1), in)
	assert.True(t, httperr.IsBusiness(err, domain.CodeCatalogMismatch))

	require.NoError(t, h.db.Model(&h.cat.Church).Update("is_public", false).Error)
	_, err = h.submit.Execute(ctx, applicant(1), h.input())
	assert.True(t, httperr.IsBusiness(err, domain.CodeCatalogMismatch))
}

func TestSubmit_DateValidation(t *testing.T) {
	h := newHarness(t, testutil.CatalogOptions{IsMass: true})
	ctx := context.Background()

	cases := map[string]string{
		"not-a-date": domain.CodeInvalidDate,
		"2026-02-22": domain.CodeDateInPast,
		"2026-03-09": domain.CodeDateNotScheduled,
	}
	for date, code := range cases {
		in := h.input()
		in.Date = date
		_, err := h.submit.Execute(ctx, applicant(1), in)
		assert.True(t, httperr.IsBusiness(err, code), "date %s: %v", date, err)
	}

	// Today is still bookable.
	in := h.input()
	in.Date = "2026-03-01"
	_, err := h.submit.Execute(ctx, applicant(1), in)
	assert.NoError(t, err)
}

// The sqlite pool has one connection, so these bookings run one transaction
// at a time. The interleaved case is covered by the ledger tests and by the
// Postgres variant behind the integration build tag.
func TestSubmit_ConcurrentBookingsNeverOversell(t *testing.T) {
	const capacity = 3
	h := newHarness(t, testutil.CatalogOptions{Capacity: capacity, IsMass: true})
	assertSubmitNeverOversells(t, h, capacity, 10)
}

func assertSubmitNeverOversells(t *testing.T, h *harness, capacity, attempts int) {
	t.Helper()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		exhausted int
		other     []error
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(user uint) {
			defer wg.Done()
			_, err := h.submit.Execute(context.Background(), applicant(user), h.input())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case httperr.IsBusiness(err, domain.CodeSlotExhausted):
				exhausted++
			default:
				other = append(other, err)
			}
		}(uint(i + 1))
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, capacity, ok)
	assert.Equal(t, attempts-capacity, exhausted)
	assert.Equal(t, 0, h.remaining(t))
	assert.Equal(t, int64(capacity), countAppointments(t, h))
}
