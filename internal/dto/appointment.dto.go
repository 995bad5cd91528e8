package dto

import (
	"time"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

type AnswerDTO struct {
	InputFieldID uint   `json:"input_field_id"`
	Value        string `json:"value"`
}

type AppointmentDTO struct {
	ID                   uint        `json:"id"`
	UserID               uint        `json:"user_id"`
	ChurchID             uint        `json:"church_id"`
	ChurchName           string      `json:"church_name,omitempty"`
	ServiceID            uint        `json:"service_id"`
	ServiceName          string      `json:"service_name,omitempty"`
	ScheduleID           uint        `json:"schedule_id"`
	ScheduleTimeID       uint        `json:"schedule_time_id"`
	SlotDate             string      `json:"slot_date"`
	StartTime            string      `json:"start_time,omitempty"`
	EndTime              string      `json:"end_time,omitempty"`
	AppointmentDate      time.Time   `json:"appointment_date"`
	Status               string      `json:"status"`
	CancellationCategory *string     `json:"cancellation_category,omitempty"`
	CancellationNote     string      `json:"cancellation_note,omitempty"`
	Notes                string      `json:"notes,omitempty"`
	Answers              []AnswerDTO `json:"answers,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
}

func FromAppointment(ap *models.Appointment) AppointmentDTO {
	out := AppointmentDTO{
		ID:                   ap.ID,
		UserID:               ap.UserID,
		ChurchID:             ap.ChurchID,
		ChurchName:           ap.Church.Name,
		ServiceID:            ap.ServiceID,
		ServiceName:          ap.Service.Name,
		ScheduleID:           ap.ScheduleID,
		ScheduleTimeID:       ap.ScheduleTimeID,
		SlotDate:             ap.SlotDate,
		StartTime:            ap.ScheduleTime.StartTime,
		EndTime:              ap.ScheduleTime.EndTime,
		AppointmentDate:      ap.AppointmentDate,
		Status:               ap.Status,
		CancellationCategory: ap.CancellationCategory,
		CancellationNote:     ap.CancellationNote,
		Notes:                ap.Notes,
		CreatedAt:            ap.CreatedAt,
	}
	for _, a := range ap.Answers {
		out.Answers = append(out.Answers, AnswerDTO{InputFieldID: a.InputFieldID, Value: a.Value})
	}
	return out
}

func FromAppointments(list []models.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(list))
	for i := range list {
		out = append(out, FromAppointment(&list[i]))
	}
	return out
}

// CheckoutDTO is returned with 402 when the booking needs payment first.
type CheckoutDTO struct {
	ErrorCode   string    `json:"error_code"`
	SessionID   string    `json:"session_id"`
	CheckoutURL string    `json:"checkout_url"`
	Amount      float64   `json:"amount"`
	ExpiresAt   time.Time `json:"expires_at"`
}
