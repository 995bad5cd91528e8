package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/audit"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/notify"
)

type StatusChange struct {
	Status               string
	CancellationCategory string
	Note                 string
}

type BulkItemResult struct {
	AppointmentID uint                `json:"appointment_id"`
	Appointment   *models.Appointment `json:"appointment,omitempty"`
	ErrorCode     string              `json:"error_code,omitempty"`
}

type UpdateStatus struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	events notify.Emitter
	clock  clock.Clock
	log    *zap.Logger
}

func NewUpdateStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	events notify.Emitter,
	clk clock.Clock,
	log *zap.Logger,
) *UpdateStatus {
	return &UpdateStatus{
		repo:   repo,
		audit:  audit,
		events: events,
		clock:  clk,
		log:    log,
	}
}

type parsedChange struct {
	status   domain.Status
	override *domain.CancellationCategory
	note     string
}

func parseChange(change StatusChange) (*parsedChange, error) {
	st, ok := domain.ParseStatus(change.Status)
	if !ok {
		return nil, httperr.ErrBusiness(domain.CodeInvalidStatus)
	}

	out := &parsedChange{status: st, note: change.Note}
	if change.CancellationCategory != "" {
		cat, ok := domain.ParseCancellationCategory(change.CancellationCategory)
		if !ok {
			return nil, httperr.ErrBusiness(domain.CodeInvalidCategory)
		}
		out.override = &cat
	}
	return out, nil
}

// Execute moves one appointment to a new status. Any transition is allowed;
// the slot ledger follows whatever the status change implies.
func (uc *UpdateStatus) Execute(
	ctx context.Context,
	actor domain.Actor,
	appointmentID uint,
	change StatusChange,
) (*models.Appointment, error) {

	pc, err := parseChange(change)
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, actor, appointmentID, pc)
}

// ExecuteBulk applies the same change to many appointments, each in its own
// transaction. One failure does not stop the others.
func (uc *UpdateStatus) ExecuteBulk(
	ctx context.Context,
	actor domain.Actor,
	appointmentIDs []uint,
	change StatusChange,
) ([]BulkItemResult, error) {

	pc, err := parseChange(change)
	if err != nil {
		return nil, err
	}

	results := make([]BulkItemResult, 0, len(appointmentIDs))
	for _, id := range appointmentIDs {
		item := BulkItemResult{AppointmentID: id}

		ap, err := uc.apply(ctx, actor, id, pc)
		switch {
		case err == nil:
			item.Appointment = ap
		case httperr.Code(err) != "":
			item.ErrorCode = httperr.Code(err)
		default:
			return results, err
		}
		results = append(results, item)
	}
	return results, nil
}

func (uc *UpdateStatus) apply(
	ctx context.Context,
	actor domain.Actor,
	appointmentID uint,
	pc *parsedChange,
) (*models.Appointment, error) {

	var (
		ap *models.Appointment
		tr domain.TransitionResult
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if !actor.CanManageChurch(ap.ChurchID) {
			return httperr.ErrBusiness(domain.CodeForbiddenAppointment)
		}

		tr = domain.Transition(domain.CurrentStatus(ap), pc.status, pc.override, pc.note)

		if tr.Delta != 0 {
			sched, err := tx.GetSchedule(ctx, ap.ServiceID, ap.ScheduleID)
			if err != nil {
				return err
			}
			if err := tx.EnsureExists(ctx, ap.ScheduleTimeID, ap.SlotDate, sched.SlotCapacity); err != nil {
				return err
			}
			if _, err := tx.Adjust(ctx, ap.ScheduleTimeID, ap.SlotDate, tr.Delta, sched.SlotCapacity); err != nil {
				return err
			}
		}

		domain.Apply(ap, tr)
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	if tr.Unusual {
		uc.log.Warn("unusual status transition",
			zap.Uint("appointment_id", ap.ID),
			zap.String("from", string(tr.From)),
			zap.String("to", string(tr.To)),
			zap.Uint("actor_id", actor.UserID),
		)
	}

	if tr.From == tr.To {
		return ap, nil
	}

	meta := map[string]any{
		"from":       tr.From,
		"to":         tr.To,
		"slot_delta": tr.Delta,
		"unusual":    tr.Unusual,
	}
	if tr.Category != nil {
		meta["cancellation_category"] = *tr.Category
	}

	uc.audit.Dispatch(audit.Event{
		ChurchID: ap.ChurchID,
		UserID:   &actor.UserID,
		Action:   "appointment_status_changed",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: meta,
	})

	uc.events.Dispatch(notify.StatusChanged(ap, string(tr.From), string(tr.To), uc.clock.Now()))

	return ap, nil
}
