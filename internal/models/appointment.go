package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"index" json:"user_id"`

	ChurchID uint   `gorm:"index" json:"church_id"`
	Church   Church `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"church"`

	ServiceID uint             `json:"service_id"`
	Service   SacramentService `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	ScheduleID     uint         `json:"schedule_id"`
	ScheduleTimeID uint         `gorm:"index:idx_appointment_slot" json:"schedule_time_id"`
	ScheduleTime   ScheduleTime `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"schedule_time"`

	AppointmentDate time.Time `json:"appointment_date"`
	SlotDate        string    `gorm:"size:10;index:idx_appointment_slot" json:"slot_date"`

	Status string `gorm:"size:20;default:'Pending';index" json:"status"`

	CancellationCategory *string `gorm:"size:20" json:"cancellation_category"`
	CancellationNote     string  `gorm:"size:255" json:"cancellation_note"`
	Notes                string  `gorm:"size:255" json:"notes"`

	Answers      []AppointmentAnswer     `gorm:"foreignKey:AppointmentID" json:"answers,omitempty"`
	Requirements []RequirementSubmission `gorm:"foreignKey:AppointmentID" json:"requirements,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppointmentAnswer struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AppointmentID uint   `gorm:"index" json:"appointment_id"`
	InputFieldID  uint   `json:"input_field_id"`
	Value         string `gorm:"type:text" json:"value"`

	CreatedAt time.Time `json:"created_at"`
}

type RequirementSubmission struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	AppointmentID   uint   `gorm:"index" json:"appointment_id"`
	RequirementName string `gorm:"size:120" json:"requirement_name"`
	ObjectKey       string `gorm:"size:255" json:"object_key"`
	URL             string `gorm:"size:512" json:"url"`
	ContentType     string `gorm:"size:100" json:"content_type"`
	Size            int64  `json:"size"`

	CreatedAt time.Time `json:"created_at"`
}
