package models

import "time"

const (
	RecurrenceWeekly     = "weekly"
	RecurrenceMonthlyNth = "monthly_nth"
	RecurrenceOneTime    = "one_time"
)

type ServiceSchedule struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ServiceID uint             `gorm:"index" json:"service_id"`
	Service   SacramentService `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	VariantID *uint            `json:"variant_id"`

	SlotCapacity int        `gorm:"not null;default:1" json:"slot_capacity"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`

	Recurrences []ScheduleRecurrence `gorm:"foreignKey:ScheduleID" json:"recurrences"`
	Times       []ScheduleTime       `gorm:"foreignKey:ScheduleID" json:"times"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScheduleRecurrence struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ScheduleID uint   `gorm:"index" json:"schedule_id"`
	Type       string `gorm:"size:20;not null" json:"type"`

	DayOfWeek    *int       `json:"day_of_week"`
	WeekOfMonth  *int       `json:"week_of_month"`
	SpecificDate *time.Time `json:"specific_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleTime is a time-of-day window of a schedule. Together with a
// calendar date it identifies a bookable slot.
type ScheduleTime struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ScheduleID uint   `gorm:"index" json:"schedule_id"`
	StartTime  string `gorm:"size:5;not null" json:"start_time"`
	EndTime    string `gorm:"size:5;not null" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
