package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

type SlotLedgerGorm struct {
	db *gorm.DB
}

func NewSlotLedgerGorm(db *gorm.DB) *SlotLedgerGorm {
	return &SlotLedgerGorm{db: db}
}

// EnsureExists relies on the (schedule_time_id, slot_date) unique index:
// racing first bookings all issue the insert and all but one become no-ops.
func (l *SlotLedgerGorm) EnsureExists(
	ctx context.Context,
	scheduleTimeID uint,
	slotDate string,
	capacity int,
) error {

	row := models.ScheduleTimeSlotDay{
		ScheduleTimeID: scheduleTimeID,
		SlotDate:       slotDate,
		RemainingSlots: capacity,
		SlotCapacity:   capacity,
	}

	if err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_time_id"}, {Name: "slot_date"}},
			DoNothing: true,
		}).
		Create(&row).Error; err != nil {
		return fmt.Errorf("ensure slot day: %w", err)
	}
	return nil
}

func (l *SlotLedgerGorm) CheckAvailable(
	ctx context.Context,
	scheduleTimeID uint,
	slotDate string,
) (int, error) {

	var row models.ScheduleTimeSlotDay
	err := l.db.WithContext(ctx).
		Select("remaining_slots").
		Where("schedule_time_id = ? AND slot_date = ?", scheduleTimeID, slotDate).
		Take(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read slot day: %w", err)
	}
	return row.RemainingSlots, nil
}

// Adjust is one conditional UPDATE: the WHERE clause refuses to go below
// zero and the CASE clamps at the lower of capacity and the capacity the row
// was created with. The stored capacity itself is never rewritten. No value
// is read beforehand.
// capExpr is the effective ceiling; it binds the caller capacity twice.
const capExpr = "(CASE WHEN slot_capacity < ? THEN slot_capacity ELSE ? END)"

func (l *SlotLedgerGorm) Adjust(
	ctx context.Context,
	scheduleTimeID uint,
	slotDate string,
	delta int,
	capacity int,
) (int, error) {

	db := l.db.WithContext(ctx)

	if delta != 0 {
		res := db.
			Model(&models.ScheduleTimeSlotDay{}).
			Where("schedule_time_id = ? AND slot_date = ?", scheduleTimeID, slotDate).
			Where("remaining_slots + ? >= 0", delta).
			Update("remaining_slots", gorm.Expr(
				"CASE WHEN remaining_slots + ? > "+capExpr+" THEN "+capExpr+" ELSE remaining_slots + ? END",
				delta, capacity, capacity, capacity, capacity, delta,
			))
		if res.Error != nil {
			return 0, fmt.Errorf("adjust slot day: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return 0, l.missOrExhausted(ctx, scheduleTimeID, slotDate)
		}
	}

	var row models.ScheduleTimeSlotDay
	if err := db.
		Where("schedule_time_id = ? AND slot_date = ?", scheduleTimeID, slotDate).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, httperr.ErrBusiness(domain.CodeSlotNotFound)
		}
		return 0, fmt.Errorf("read slot day: %w", err)
	}

	return row.RemainingSlots, nil
}

func (l *SlotLedgerGorm) missOrExhausted(
	ctx context.Context,
	scheduleTimeID uint,
	slotDate string,
) error {

	var count int64
	if err := l.db.WithContext(ctx).
		Model(&models.ScheduleTimeSlotDay{}).
		Where("schedule_time_id = ? AND slot_date = ?", scheduleTimeID, slotDate).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count slot day: %w", err)
	}

	if count == 0 {
		return httperr.ErrBusiness(domain.CodeSlotNotFound)
	}
	return httperr.ErrBusiness(domain.CodeSlotExhausted)
}

func (l *SlotLedgerGorm) ListSlotDays(
	ctx context.Context,
	scheduleTimeIDs []uint,
	slotDate string,
) ([]models.ScheduleTimeSlotDay, error) {

	var rows []models.ScheduleTimeSlotDay
	if len(scheduleTimeIDs) == 0 {
		return rows, nil
	}

	if err := l.db.WithContext(ctx).
		Where("schedule_time_id IN ? AND slot_date = ?", scheduleTimeIDs, slotDate).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list slot days: %w", err)
	}
	return rows, nil
}

var _ domain.SlotLedger = (*SlotLedgerGorm)(nil)
