package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   *uint  `gorm:"index" json:"user_id"`
	ChurchID uint   `gorm:"index" json:"church_id"`
	Type     string `gorm:"size:50;not null" json:"type"`
	Title    string `gorm:"size:150" json:"title"`
	Message  string `gorm:"size:255" json:"message"`

	Payload datatypes.JSON `json:"payload"`
	ReadAt  *time.Time     `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`
}
