package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

// SlotLedger guards the remaining capacity of (schedule time, date) pairs.
// Implementations must mutate with a single conditional UPDATE so that
// concurrent reservations can never oversell.
type SlotLedger interface {
	// EnsureExists materializes the ledger row with RemainingSlots=capacity.
	// Safe to call concurrently and repeatedly.
	EnsureExists(ctx context.Context, scheduleTimeID uint, slotDate string, capacity int) error

	// CheckAvailable returns the remaining slots; a missing row reads as 0.
	CheckAvailable(ctx context.Context, scheduleTimeID uint, slotDate string) (int, error)

	// Adjust applies remaining = clamp(remaining+delta, 0, capacity) and
	// returns the new value. Fails with slot_exhausted when a negative delta
	// would take the counter below zero.
	Adjust(ctx context.Context, scheduleTimeID uint, slotDate string, delta, capacity int) (int, error)

	ListSlotDays(ctx context.Context, scheduleTimeIDs []uint, slotDate string) ([]models.ScheduleTimeSlotDay, error)
}

type AppointmentFilter struct {
	UserID   *uint
	ChurchID *uint
	Status   string
	SlotDate string
	Limit    int
	Offset   int
}

type Repository interface {
	SlotLedger

	// Transaction runs fn against a repository bound to one database
	// transaction. Any error returned by fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// -------- Catalog --------
	GetActivePublicChurch(ctx context.Context, churchID uint) (*models.Church, error)
	GetChurch(ctx context.Context, churchID uint) (*models.Church, error)
	GetService(ctx context.Context, churchID, serviceID uint) (*models.SacramentService, error)
	GetVariant(ctx context.Context, serviceID, variantID uint) (*models.ServiceVariant, error)
	GetSchedule(ctx context.Context, serviceID, scheduleID uint) (*models.ServiceSchedule, error)
	GetScheduleTime(ctx context.Context, scheduleID, scheduleTimeID uint) (*models.ScheduleTime, error)
	ListSchedulesForService(ctx context.Context, serviceID uint) ([]models.ServiceSchedule, error)
	ListSchedulesForChurch(ctx context.Context, churchID uint) ([]models.ServiceSchedule, error)
	HasApprovedMembership(ctx context.Context, userID, churchID uint) (bool, error)

	// -------- Appointments --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	CreateAnswers(ctx context.Context, answers []models.AppointmentAnswer) error
	GetAppointment(ctx context.Context, appointmentID uint) (*models.Appointment, error)
	GetAppointmentForUpdate(ctx context.Context, appointmentID uint) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, int64, error)
	CreateRequirement(ctx context.Context, req *models.RequirementSubmission) error

	// -------- Payment intents --------
	CreateIntent(ctx context.Context, intent *models.PaymentIntent) error
	GetIntentBySession(ctx context.Context, sessionID string) (*models.PaymentIntent, error)
	GetIntentForUpdate(ctx context.Context, sessionID string) (*models.PaymentIntent, error)
	// MarkIntentConsumed flips a pending intent to consumed. Returns false
	// when the intent was no longer pending.
	MarkIntentConsumed(ctx context.Context, intentID, appointmentID uint, at time.Time) (bool, error)
	MarkIntentStatus(ctx context.Context, intentID uint, status, reason string) error
	ExpireStaleIntents(ctx context.Context, now time.Time) (int64, error)

	// -------- Payment transactions --------
	CreatePaymentTransaction(ctx context.Context, tx *models.PaymentTransaction) error
	GetPaymentTransaction(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
}

// ===============================
// External collaborators
// ===============================

type PaymentRequest struct {
	Reference   string
	Amount      float64
	Description string
	Metadata    map[string]string
	ExpiresAt   time.Time
}

type PaymentSession struct {
	SessionID   string
	ProviderRef string
	CheckoutURL string
	// Zero when the provider does not report one.
	ExpiresAt time.Time
}

type PaymentVerification struct {
	Paid     bool
	Amount   float64
	Metadata map[string]string
}

// PaymentSessionBridge is the opaque checkout provider.
type PaymentSessionBridge interface {
	CreateIntent(ctx context.Context, req PaymentRequest) (*PaymentSession, error)
	Verify(ctx context.Context, sessionID string) (*PaymentVerification, error)
}

// Locker serializes work on one key across processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Actor is the authenticated caller, passed explicitly to every operation.
type Actor struct {
	UserID   uint
	ChurchID *uint
	Role     string
}

const (
	RoleApplicant = "applicant"
	RoleStaff     = "staff"
	RoleAdmin     = "admin"
)

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// CanManageChurch: admins manage every church, staff only their own.
func (a Actor) CanManageChurch(churchID uint) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.Role == RoleStaff && a.ChurchID != nil && *a.ChurchID == churchID
}

// ObjectStore keeps uploaded requirement documents.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (url string, err error)
}
