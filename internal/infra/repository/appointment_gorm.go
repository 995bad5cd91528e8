package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	*SlotLedgerGorm
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{
		SlotLedgerGorm: NewSlotLedgerGorm(db),
		db:             db,
	}
}

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewAppointmentGormRepository(tx))
	})
}

// notFound turns a missing row into the given business code.
func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusiness(code)
	}
	return err
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetActivePublicChurch(
	ctx context.Context,
	churchID uint,
) (*models.Church, error) {

	var church models.Church
	if err := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND is_public = ?", churchID, models.ChurchStatusActive, true).
		First(&church).Error; err != nil {
		return nil, notFound(err, domain.CodeCatalogMismatch)
	}
	return &church, nil
}

func (r *AppointmentGormRepository) GetChurch(
	ctx context.Context,
	churchID uint,
) (*models.Church, error) {

	var church models.Church
	if err := r.db.WithContext(ctx).First(&church, churchID).Error; err != nil {
		return nil, notFound(err, domain.CodeCatalogMismatch)
	}
	return &church, nil
}

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	churchID uint,
	serviceID uint,
) (*models.SacramentService, error) {

	var service models.SacramentService
	if err := r.db.WithContext(ctx).
		Where("id = ? AND church_id = ? AND active = ?", serviceID, churchID, true).
		First(&service).Error; err != nil {
		return nil, notFound(err, domain.CodeCatalogMismatch)
	}
	return &service, nil
}

func (r *AppointmentGormRepository) GetVariant(
	ctx context.Context,
	serviceID uint,
	variantID uint,
) (*models.ServiceVariant, error) {

	var variant models.ServiceVariant
	if err := r.db.WithContext(ctx).
		Where("id = ? AND service_id = ?", variantID, serviceID).
		First(&variant).Error; err != nil {
		return nil, notFound(err, domain.CodeCatalogMismatch)
	}
	return &variant, nil
}

func (r *AppointmentGormRepository) GetSchedule(
	ctx context.Context,
	serviceID uint,
	scheduleID uint,
) (*models.ServiceSchedule, error) {

	var schedule models.ServiceSchedule
	if err := r.db.WithContext(ctx).
		Preload("Recurrences").
		Where("id = ? AND service_id = ?", scheduleID, serviceID).
		First(&schedule).Error; err != nil {
		return nil, notFound(err, domain.CodeCatalogMismatch)
	}
	return &schedule, nil
}

func (r *AppointmentGormRepository) GetScheduleTime(
	ctx context.Context,
	scheduleID uint,
	scheduleTimeID uint,
) (*models.ScheduleTime, error) {

	var st models.ScheduleTime
	if err := r.db.WithContext(ctx).
		Where("id = ? AND schedule_id = ?", scheduleTimeID, scheduleID).
		First(&st).Error; err != nil {
		return nil, notFound(err, domain.CodeCatalogMismatch)
	}
	return &st, nil
}

func (r *AppointmentGormRepository) ListSchedulesForService(
	ctx context.Context,
	serviceID uint,
) ([]models.ServiceSchedule, error) {

	var schedules []models.ServiceSchedule
	if err := r.db.WithContext(ctx).
		Preload("Recurrences").
		Preload("Times", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_time ASC")
		}).
		Where("service_id = ?", serviceID).
		Order("id ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *AppointmentGormRepository) ListSchedulesForChurch(
	ctx context.Context,
	churchID uint,
) ([]models.ServiceSchedule, error) {

	var schedules []models.ServiceSchedule
	if err := r.db.WithContext(ctx).
		Preload("Recurrences").
		Preload("Times", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_time ASC")
		}).
		Where("service_id IN (?)", r.db.
			Model(&models.SacramentService{}).
			Select("id").
			Where("church_id = ?", churchID),
		).
		Order("id ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *AppointmentGormRepository) HasApprovedMembership(
	ctx context.Context,
	userID uint,
	churchID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ? AND church_id = ? AND status = ?", userID, churchID, models.MembershipStatusApproved).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
}

func (r *AppointmentGormRepository) CreateAnswers(
	ctx context.Context,
	answers []models.AppointmentAnswer,
) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&answers).Error
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Answers").
		First(&ap, appointmentID).Error; err != nil {
		return nil, notFound(err, domain.CodeAppointmentNotFound)
	}
	return &ap, nil
}

// GetAppointmentForUpdate locks the row until the surrounding transaction
// ends, so a staff update cannot interleave with another one.
func (r *AppointmentGormRepository) GetAppointmentForUpdate(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, appointmentID).Error; err != nil {
		return nil, notFound(err, domain.CodeAppointmentNotFound)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	filter domain.AppointmentFilter,
) ([]models.Appointment, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.ChurchID != nil {
		q = q.Where("church_id = ?", *filter.ChurchID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SlotDate != "" {
		q = q.Where("slot_date = ?", filter.SlotDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var apps []models.Appointment
	if err := q.
		Preload("Church").
		Preload("Service").
		Preload("ScheduleTime").
		Order("appointment_date ASC").
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *AppointmentGormRepository) CreateRequirement(
	ctx context.Context,
	req *models.RequirementSubmission,
) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// --------------------------------------------------
// Payment intents
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateIntent(
	ctx context.Context,
	intent *models.PaymentIntent,
) error {
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *AppointmentGormRepository) GetIntentBySession(
	ctx context.Context,
	sessionID string,
) (*models.PaymentIntent, error) {

	var intent models.PaymentIntent
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&intent).Error; err != nil {
		return nil, notFound(err, domain.CodeIntentNotFound)
	}
	return &intent, nil
}

func (r *AppointmentGormRepository) GetIntentForUpdate(
	ctx context.Context,
	sessionID string,
) (*models.PaymentIntent, error) {

	var intent models.PaymentIntent
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ?", sessionID).
		First(&intent).Error; err != nil {
		return nil, notFound(err, domain.CodeIntentNotFound)
	}
	return &intent, nil
}

func (r *AppointmentGormRepository) MarkIntentConsumed(
	ctx context.Context,
	intentID uint,
	appointmentID uint,
	at time.Time,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", intentID, models.IntentStatusPending).
		Updates(map[string]any{
			"status":         models.IntentStatusConsumed,
			"appointment_id": appointmentID,
			"consumed_at":    at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("consume intent: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkIntentStatus only moves pending intents; a consumed intent is final.
func (r *AppointmentGormRepository) MarkIntentStatus(
	ctx context.Context,
	intentID uint,
	status string,
	reason string,
) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", intentID, models.IntentStatusPending).
		Updates(map[string]any{
			"status":         status,
			"failure_reason": reason,
		}).Error
}

func (r *AppointmentGormRepository) ExpireStaleIntents(
	ctx context.Context,
	now time.Time,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("status = ? AND expires_at < ?", models.IntentStatusPending, now).
		Updates(map[string]any{
			"status":         models.IntentStatusExpired,
			"failure_reason": domain.CodeIntentExpired,
		})
	return res.RowsAffected, res.Error
}

// --------------------------------------------------
// Payment transactions
// --------------------------------------------------

func (r *AppointmentGormRepository) CreatePaymentTransaction(
	ctx context.Context,
	tx *models.PaymentTransaction,
) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *AppointmentGormRepository) GetPaymentTransaction(
	ctx context.Context,
	sessionID string,
) (*models.PaymentTransaction, error) {

	var tx models.PaymentTransaction
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&tx).Error; err != nil {
		return nil, notFound(err, domain.CodeIntentNotFound)
	}
	return &tx, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
