package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/notify"
)

const (
	providerName  = "mercadopago"
	amountEpsilon = 0.005
)

// errAlreadyConsumed aborts the confirmation transaction when another
// delivery of the same session got there first.
var errAlreadyConsumed = errors.New("intent already consumed")

type ConfirmPayment struct {
	repo     domain.Repository
	payments domain.PaymentSessionBridge
	locker   domain.Locker
	events   notify.Emitter
	clock    clock.Clock
	lockTTL  time.Duration
	log      *zap.Logger
}

func NewConfirmPayment(
	repo domain.Repository,
	payments domain.PaymentSessionBridge,
	locker domain.Locker,
	events notify.Emitter,
	clk clock.Clock,
	lockTTL time.Duration,
	log *zap.Logger,
) *ConfirmPayment {
	return &ConfirmPayment{
		repo:     repo,
		payments: payments,
		locker:   locker,
		events:   events,
		clock:    clk,
		lockTTL:  lockTTL,
		log:      log,
	}
}

// Execute turns a paid checkout into an appointment. Calling it again for
// the same session returns the same appointment without touching the ledger.
func (uc *ConfirmPayment) Execute(ctx context.Context, sessionID string) (*BookingResult, error) {
	log := uc.log.With(zap.String("session_id", sessionID))

	// --------------------------------------------------
	// 1️⃣ Per-session lock (best effort)
	// --------------------------------------------------
	token, ok, err := uc.locker.TryLock(ctx, "confirm:"+sessionID, uc.lockTTL)
	switch {
	case err != nil:
		log.Warn("confirmation lock unavailable, relying on storage constraints", zap.Error(err))
	case !ok:
		return nil, httperr.ErrBusiness(domain.CodeConfirmationBusy)
	default:
		defer func() {
			if err := uc.locker.Unlock(context.WithoutCancel(ctx), "confirm:"+sessionID, token); err != nil {
				log.Warn("confirmation unlock failed", zap.Error(err))
			}
		}()
	}

	// --------------------------------------------------
	// 2️⃣ Intent state
	// --------------------------------------------------
	intent, err := uc.repo.GetIntentBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch intent.Status {
	case models.IntentStatusConsumed:
		return uc.replay(ctx, sessionID)
	case models.IntentStatusExpired:
		return nil, httperr.ErrBusiness(domain.CodeIntentExpired)
	case models.IntentStatusFailed:
		return nil, httperr.ErrBusiness(domain.CodeIntentFailed)
	}

	now := uc.clock.Now()
	if !now.Before(intent.ExpiresAt) {
		if err := uc.repo.MarkIntentStatus(ctx, intent.ID, models.IntentStatusExpired, domain.CodeIntentExpired); err != nil {
			return nil, err
		}
		log.Info("payment intent expired before confirmation")
		return nil, httperr.ErrBusiness(domain.CodeIntentExpired)
	}

	// --------------------------------------------------
	// 3️⃣ Provider says paid?
	// --------------------------------------------------
	verification, err := uc.payments.Verify(ctx, sessionID)
	if err != nil {
		if httperr.Code(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", httperr.ErrBusiness(domain.CodePaymentProvider), err)
	}
	if !verification.Paid {
		return nil, httperr.ErrBusiness(domain.CodePaymentNotCompleted)
	}

	// --------------------------------------------------
	// 4️⃣ Authoritative fee
	// --------------------------------------------------
	chain, err := loadCatalog(ctx, uc.repo, intent.ChurchID, intent.ServiceID, intent.ScheduleID, intent.ScheduleTimeID, false)
	if err != nil {
		return nil, err
	}

	member, err := uc.repo.HasApprovedMembership(ctx, intent.UserID, intent.ChurchID)
	if err != nil {
		return nil, err
	}

	fee := chain.fee(member)
	if verification.Amount+amountEpsilon < fee {
		log.Warn("paid amount below fee",
			zap.Float64("paid", verification.Amount),
			zap.Float64("fee", fee),
		)
		return uc.fail(ctx, intent, domain.CodeAmountMismatch)
	}

	// --------------------------------------------------
	// 5️⃣ Availability may have changed since checkout
	// --------------------------------------------------
	capacity := chain.schedule.SlotCapacity
	if err := uc.repo.EnsureExists(ctx, intent.ScheduleTimeID, intent.SlotDate, capacity); err != nil {
		return nil, err
	}

	remaining, err := uc.repo.CheckAvailable(ctx, intent.ScheduleTimeID, intent.SlotDate)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return uc.fail(ctx, intent, domain.CodeSlotExhausted)
	}

	// --------------------------------------------------
	// 6️⃣ Reserve + insert + record + consume, atomically
	// --------------------------------------------------
	paid := verification.Amount
	if paid <= 0 {
		paid = intent.Amount
	}

	var ap *models.Appointment
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		locked, err := tx.GetIntentForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if locked.Status == models.IntentStatusConsumed {
			return errAlreadyConsumed
		}
		if locked.Status != models.IntentStatusPending {
			return httperr.ErrBusiness(domain.CodeIntentFailed)
		}

		ap, err = reserveAndCreate(ctx, tx, booking{
			UserID:         locked.UserID,
			ChurchID:       locked.ChurchID,
			ServiceID:      locked.ServiceID,
			ScheduleID:     locked.ScheduleID,
			ScheduleTimeID: locked.ScheduleTimeID,
			SlotDate:       locked.SlotDate,
			At:             locked.AppointmentTime,
			Capacity:       capacity,
			Notes:          locked.Notes,
			FormData:       decodeForm(locked.FormData),
		})
		if err != nil {
			return err
		}

		err = tx.CreatePaymentTransaction(ctx, &models.PaymentTransaction{
			SessionID:     sessionID,
			AppointmentID: ap.ID,
			UserID:        locked.UserID,
			ChurchID:      locked.ChurchID,
			Amount:        paid,
			Provider:      providerName,
			Status:        "paid",
		})
		if err != nil {
			if httperr.IsUniqueViolation(err) {
				return errAlreadyConsumed
			}
			return err
		}

		consumed, err := tx.MarkIntentConsumed(ctx, locked.ID, ap.ID, now)
		if err != nil {
			return err
		}
		if !consumed {
			return errAlreadyConsumed
		}
		return nil
	})

	switch {
	case errors.Is(err, errAlreadyConsumed):
		return uc.replay(ctx, sessionID)
	case httperr.IsBusiness(err, domain.CodeSlotExhausted):
		return uc.fail(ctx, intent, domain.CodeSlotExhausted)
	case err != nil:
		return nil, err
	}

	res := &BookingResult{
		Appointment: ap,
		Events:      []notify.Event{notify.AppointmentCreated(ap, ap.ChurchID, now)},
	}
	uc.events.Dispatch(res.Events...)

	log.Info("payment confirmed",
		zap.Uint("appointment_id", ap.ID),
		zap.Uint("schedule_time_id", ap.ScheduleTimeID),
		zap.String("slot_date", ap.SlotDate),
	)

	return res, nil
}

// replay returns the appointment a previous confirmation created.
func (uc *ConfirmPayment) replay(ctx context.Context, sessionID string) (*BookingResult, error) {
	txn, err := uc.repo.GetPaymentTransaction(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, txn.AppointmentID)
	if err != nil {
		return nil, err
	}

	uc.log.Info("duplicate payment confirmation",
		zap.String("session_id", sessionID),
		zap.Uint("appointment_id", ap.ID),
	)

	return &BookingResult{Appointment: ap, Replayed: true}, nil
}

// fail marks the intent failed and returns the business error for code.
// A concurrent delivery may have consumed the intent in the meantime; the
// caller then gets that booking instead. Refunds are handled elsewhere.
func (uc *ConfirmPayment) fail(ctx context.Context, intent *models.PaymentIntent, code string) (*BookingResult, error) {
	if err := uc.repo.MarkIntentStatus(ctx, intent.ID, models.IntentStatusFailed, code); err != nil {
		return nil, err
	}

	current, err := uc.repo.GetIntentBySession(ctx, intent.SessionID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.IntentStatusConsumed {
		return uc.replay(ctx, intent.SessionID)
	}

	uc.log.Warn("payment intent failed",
		zap.String("session_id", intent.SessionID),
		zap.String("reason", code),
	)
	return nil, httperr.ErrBusiness(code)
}
