package models

import "time"

// ScheduleTimeSlotDay is the remaining capacity of one schedule time on one
// calendar date. Rows are created lazily and never deleted.
type ScheduleTimeSlotDay struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ScheduleTimeID uint   `gorm:"not null;uniqueIndex:ux_slot_day_time_date,priority:1" json:"schedule_time_id"`
	SlotDate       string `gorm:"size:10;not null;uniqueIndex:ux_slot_day_time_date,priority:2" json:"slot_date"`
	RemainingSlots int    `gorm:"not null" json:"remaining_slots"`
	SlotCapacity   int    `gorm:"not null" json:"slot_capacity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
