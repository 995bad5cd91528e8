package appointment

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/notify"
)

// BookingResult is what both booking entry points return. Events are
// dispatched by the use case after the transaction commits.
type BookingResult struct {
	Appointment *models.Appointment

	PaymentRequired bool
	Intent          *models.PaymentIntent
	CheckoutURL     string

	// Replayed is set when a duplicate confirmation returned the
	// appointment created by an earlier one.
	Replayed bool

	Events []notify.Event
}

// catalogChain is a validated church → service → schedule → time path.
type catalogChain struct {
	church   *models.Church
	service  *models.SacramentService
	variant  *models.ServiceVariant
	schedule *models.ServiceSchedule
	time     *models.ScheduleTime
}

// loadCatalog resolves every link of the chain. Any missing or foreign link
// fails with catalog_mismatch. publicOnly restricts the church to active
// public ones, which is what new submissions require.
func loadCatalog(
	ctx context.Context,
	repo domain.Repository,
	churchID, serviceID, scheduleID, scheduleTimeID uint,
	publicOnly bool,
) (*catalogChain, error) {

	var (
		church *models.Church
		err    error
	)
	if publicOnly {
		church, err = repo.GetActivePublicChurch(ctx, churchID)
	} else {
		church, err = repo.GetChurch(ctx, churchID)
	}
	if err != nil {
		return nil, err
	}

	service, err := repo.GetService(ctx, church.ID, serviceID)
	if err != nil {
		return nil, err
	}

	schedule, err := repo.GetSchedule(ctx, service.ID, scheduleID)
	if err != nil {
		return nil, err
	}

	st, err := repo.GetScheduleTime(ctx, schedule.ID, scheduleTimeID)
	if err != nil {
		return nil, err
	}

	chain := &catalogChain{
		church:   church,
		service:  service,
		schedule: schedule,
		time:     st,
	}

	if service.IsMultipleService && schedule.VariantID != nil {
		chain.variant, err = repo.GetVariant(ctx, service.ID, *schedule.VariantID)
		if err != nil {
			return nil, err
		}
	}

	return chain, nil
}

func (c *catalogChain) fee(approvedMember bool) float64 {
	return domain.ResolveFee(c.service, c.variant, approvedMember)
}

// booking is everything needed to materialize an appointment.
type booking struct {
	UserID         uint
	ChurchID       uint
	ServiceID      uint
	ScheduleID     uint
	ScheduleTimeID uint
	SlotDate       string
	At             time.Time
	Capacity       int
	Notes          string
	FormData       map[string]string
}

// reserveAndCreate takes one slot and inserts the appointment with its
// answers. It must run inside a transaction: callers rely on the rollback to
// give the slot back when any later step fails.
func reserveAndCreate(ctx context.Context, tx domain.Repository, b booking) (*models.Appointment, error) {
	if _, err := tx.Adjust(ctx, b.ScheduleTimeID, b.SlotDate, -1, b.Capacity); err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		UserID:          b.UserID,
		ChurchID:        b.ChurchID,
		ServiceID:       b.ServiceID,
		ScheduleID:      b.ScheduleID,
		ScheduleTimeID:  b.ScheduleTimeID,
		AppointmentDate: b.At,
		SlotDate:        b.SlotDate,
		Status:          string(domain.InitialStatus()),
		Notes:           b.Notes,
	}
	if err := tx.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	answers := buildAnswers(ap.ID, b.FormData)
	if len(answers) > 0 {
		if err := tx.CreateAnswers(ctx, answers); err != nil {
			return nil, err
		}
		ap.Answers = answers
	}

	return ap, nil
}

// buildAnswers maps submitted form keys to input field ids. Keys without a
// recognizable id are skipped.
func buildAnswers(appointmentID uint, form map[string]string) []models.AppointmentAnswer {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []models.AppointmentAnswer
	for _, k := range keys {
		id, ok := domain.ExtractInputFieldID(k)
		if !ok {
			continue
		}
		out = append(out, models.AppointmentAnswer{
			AppointmentID: appointmentID,
			InputFieldID:  id,
			Value:         form[k],
		})
	}
	return out
}

func decodeForm(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := map[string]string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
