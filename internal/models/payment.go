package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	IntentStatusPending  = "pending"
	IntentStatusConsumed = "consumed"
	IntentStatusFailed   = "failed"
	IntentStatusExpired  = "expired"
)

// PaymentIntent captures a prospective booking while the applicant is at the
// checkout. It is consumed at most once.
type PaymentIntent struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SessionID   string `gorm:"size:64;not null;uniqueIndex" json:"session_id"`
	ProviderRef string `gorm:"size:128" json:"provider_ref"`
	CheckoutURL string `gorm:"size:512" json:"checkout_url"`

	UserID          uint      `gorm:"index" json:"user_id"`
	ChurchID        uint      `json:"church_id"`
	ServiceID       uint      `json:"service_id"`
	ScheduleID      uint      `json:"schedule_id"`
	ScheduleTimeID  uint      `json:"schedule_time_id"`
	SlotDate        string    `gorm:"size:10" json:"slot_date"`
	AppointmentTime time.Time `json:"appointment_time"`

	Amount      float64        `json:"amount"`
	Description string         `gorm:"size:255" json:"description"`
	FormData    datatypes.JSON `json:"form_data"`
	Notes       string         `gorm:"size:255" json:"notes"`

	Status        string `gorm:"size:20;default:'pending';index" json:"status"`
	FailureReason string `gorm:"size:100" json:"failure_reason"`
	AppointmentID *uint  `json:"appointment_id"`

	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentTransaction records a confirmed payment. The unique session id is
// what makes confirmation idempotent under duplicate webhook delivery.
type PaymentTransaction struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	SessionID     string  `gorm:"size:64;not null;uniqueIndex" json:"session_id"`
	AppointmentID uint    `gorm:"index" json:"appointment_id"`
	UserID        uint    `json:"user_id"`
	ChurchID      uint    `json:"church_id"`
	Amount        float64 `json:"amount"`
	Provider      string  `gorm:"size:30" json:"provider"`
	Status        string  `gorm:"size:20" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}
