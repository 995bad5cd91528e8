package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/notify"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type SubmitApplicationInput struct {
	ChurchID       uint
	ServiceID      uint
	ScheduleID     uint
	ScheduleTimeID uint

	// YYYY-MM-DD in the church timezone.
	Date string

	FormData map[string]string
	Notes    string
}

// ======================================================
// USE CASE
// ======================================================

type SubmitApplication struct {
	repo      domain.Repository
	payments  domain.PaymentSessionBridge
	events    notify.Emitter
	clock     clock.Clock
	intentTTL time.Duration
	log       *zap.Logger
}

func NewSubmitApplication(
	repo domain.Repository,
	payments domain.PaymentSessionBridge,
	events notify.Emitter,
	clk clock.Clock,
	intentTTL time.Duration,
	log *zap.Logger,
) *SubmitApplication {
	return &SubmitApplication{
		repo:      repo,
		payments:  payments,
		events:    events,
		clock:     clk,
		intentTTL: intentTTL,
		log:       log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *SubmitApplication) Execute(
	ctx context.Context,
	actor domain.Actor,
	in SubmitApplicationInput,
) (*BookingResult, error) {

	// --------------------------------------------------
	// 1️⃣ Catalog chain
	// --------------------------------------------------
	chain, err := loadCatalog(ctx, uc.repo, in.ChurchID, in.ServiceID, in.ScheduleID, in.ScheduleTimeID, true)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Date in the church timezone
	// --------------------------------------------------
	day, err := timezone.ParseDate(chain.church.Timezone, in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness(domain.CodeInvalidDate)
	}
	slotDate := timezone.FormatDate(day)

	now := uc.clock.Now().In(day.Location())
	if slotDate < timezone.FormatDate(now) {
		return nil, httperr.ErrBusiness(domain.CodeDateInPast)
	}

	if !schedule.OccursOn(chain.schedule, day) {
		return nil, httperr.ErrBusiness(domain.CodeDateNotScheduled)
	}

	at, err := timezone.ParseDateTime(chain.church.Timezone, slotDate, chain.time.StartTime)
	if err != nil {
		return nil, httperr.ErrBusiness(domain.CodeInvalidDate)
	}

	// --------------------------------------------------
	// 3️⃣ Fee, discount and membership
	// --------------------------------------------------
	member, err := uc.repo.HasApprovedMembership(ctx, actor.UserID, chain.church.ID)
	if err != nil {
		return nil, err
	}

	fee := chain.fee(member)
	if domain.RequiresMembership(chain.service, fee) && !member {
		return nil, httperr.ErrBusiness(domain.CodeMembershipRequired)
	}

	// --------------------------------------------------
	// 4️⃣ Slot availability
	// --------------------------------------------------
	capacity := chain.schedule.SlotCapacity
	if err := uc.repo.EnsureExists(ctx, chain.time.ID, slotDate, capacity); err != nil {
		return nil, err
	}

	remaining, err := uc.repo.CheckAvailable(ctx, chain.time.ID, slotDate)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return nil, httperr.ErrBusiness(domain.CodeSlotExhausted)
	}

	b := booking{
		UserID:         actor.UserID,
		ChurchID:       chain.church.ID,
		ServiceID:      chain.service.ID,
		ScheduleID:     chain.schedule.ID,
		ScheduleTimeID: chain.time.ID,
		SlotDate:       slotDate,
		At:             at,
		Capacity:       capacity,
		Notes:          in.Notes,
		FormData:       in.FormData,
	}

	// --------------------------------------------------
	// 5️⃣ Paid: checkout first, no slot held
	// --------------------------------------------------
	if fee > 0 {
		return uc.openCheckout(ctx, chain, b, fee)
	}

	// --------------------------------------------------
	// 6️⃣ Free: reserve + insert atomically
	// --------------------------------------------------
	var ap *models.Appointment
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var txErr error
		ap, txErr = reserveAndCreate(ctx, tx, b)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	res := &BookingResult{
		Appointment: ap,
		Events:      []notify.Event{notify.AppointmentCreated(ap, chain.church.ID, uc.clock.Now())},
	}
	uc.events.Dispatch(res.Events...)

	uc.log.Info("appointment booked",
		zap.Uint("appointment_id", ap.ID),
		zap.Uint("schedule_time_id", b.ScheduleTimeID),
		zap.String("slot_date", b.SlotDate),
	)

	return res, nil
}

func (uc *SubmitApplication) openCheckout(
	ctx context.Context,
	chain *catalogChain,
	b booking,
	fee float64,
) (*BookingResult, error) {

	now := uc.clock.Now()
	sessionID := uuid.NewString()
	expiresAt := now.Add(uc.intentTTL)

	description := chain.service.Name
	if chain.variant != nil {
		description = fmt.Sprintf("%s (%s)", chain.service.Name, chain.variant.Name)
	}

	session, err := uc.payments.CreateIntent(ctx, domain.PaymentRequest{
		Reference:   sessionID,
		Amount:      fee,
		Description: description,
		Metadata: map[string]string{
			"church_id":        strconv.FormatUint(uint64(b.ChurchID), 10),
			"service_id":       strconv.FormatUint(uint64(b.ServiceID), 10),
			"schedule_time_id": strconv.FormatUint(uint64(b.ScheduleTimeID), 10),
			"slot_date":        b.SlotDate,
			"user_id":          strconv.FormatUint(uint64(b.UserID), 10),
		},
		ExpiresAt: expiresAt,
	})
	if err != nil {
		if httperr.Code(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", httperr.ErrBusiness(domain.CodePaymentProvider), err)
	}

	if session.SessionID != "" {
		sessionID = session.SessionID
	}
	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(expiresAt) {
		expiresAt = session.ExpiresAt
	}

	form, err := json.Marshal(b.FormData)
	if err != nil {
		return nil, err
	}

	intent := &models.PaymentIntent{
		SessionID:       sessionID,
		ProviderRef:     session.ProviderRef,
		CheckoutURL:     session.CheckoutURL,
		UserID:          b.UserID,
		ChurchID:        b.ChurchID,
		ServiceID:       b.ServiceID,
		ScheduleID:      b.ScheduleID,
		ScheduleTimeID:  b.ScheduleTimeID,
		SlotDate:        b.SlotDate,
		AppointmentTime: b.At,
		Amount:          fee,
		Description:     description,
		FormData:        datatypes.JSON(form),
		Notes:           b.Notes,
		Status:          models.IntentStatusPending,
		ExpiresAt:       expiresAt,
	}
	if err := uc.repo.CreateIntent(ctx, intent); err != nil {
		return nil, err
	}

	uc.log.Info("checkout opened",
		zap.String("session_id", sessionID),
		zap.Float64("amount", fee),
		zap.Uint("schedule_time_id", b.ScheduleTimeID),
		zap.String("slot_date", b.SlotDate),
	)

	return &BookingResult{
		PaymentRequired: true,
		Intent:          intent,
		CheckoutURL:     session.CheckoutURL,
	}, nil
}
