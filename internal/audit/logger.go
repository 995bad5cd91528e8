package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(
	churchID uint,
	userID *uint,
	action string,
	entity string,
	entityID *uint,
	metadata any,
) error {

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		ChurchID: churchID,
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: metaJSON,
	}

	return l.db.Create(&entry).Error
}

type ListFilter struct {
	ChurchID *uint
	Action   string
	Limit    int
	Offset   int
}

func (l *Logger) List(ctx context.Context, f ListFilter) ([]models.AuditLog, int64, error) {
	q := l.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.ChurchID != nil {
		q = q.Where("church_id = ?", *f.ChurchID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []models.AuditLog
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(f.Offset).Find(&rows).Error
	return rows, total, err
}
