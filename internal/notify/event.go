package notify

import (
	"time"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

type EventType string

const (
	EventAppointmentCreated EventType = "appointment.created"
	EventStatusChanged      EventType = "appointment.status_changed"
)

type Event struct {
	Type          EventType `json:"event"`
	AppointmentID uint      `json:"appointment_id"`
	UserID        uint      `json:"user_id"`
	ChurchID      uint      `json:"church_id"`
	ServiceID     uint      `json:"service_id"`
	SlotDate      string    `json:"slot_date"`
	OldStatus     string    `json:"old_status,omitempty"`
	NewStatus     string    `json:"new_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func AppointmentCreated(ap *models.Appointment, churchID uint, at time.Time) Event {
	return Event{
		Type:          EventAppointmentCreated,
		AppointmentID: ap.ID,
		UserID:        ap.UserID,
		ChurchID:      churchID,
		ServiceID:     ap.ServiceID,
		SlotDate:      ap.SlotDate,
		NewStatus:     ap.Status,
		OccurredAt:    at,
	}
}

func StatusChanged(ap *models.Appointment, oldStatus, newStatus string, at time.Time) Event {
	return Event{
		Type:          EventStatusChanged,
		AppointmentID: ap.ID,
		UserID:        ap.UserID,
		ChurchID:      ap.ChurchID,
		ServiceID:     ap.ServiceID,
		SlotDate:      ap.SlotDate,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		OccurredAt:    at,
	}
}

// Emitter receives events once the transaction that produced them has
// committed. Implementations must not block and must not fail the caller.
type Emitter interface {
	Dispatch(events ...Event)
}
