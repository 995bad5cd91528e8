package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

// StoreSink writes in-app notifications: one for the applicant and, on new
// bookings, one on the church feed read by staff.
type StoreSink struct {
	db *gorm.DB
}

func NewStoreSink(db *gorm.DB) *StoreSink {
	return &StoreSink{db: db}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Send(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	userID := ev.UserID
	rows := []models.Notification{}

	switch ev.Type {
	case EventAppointmentCreated:
		rows = append(rows,
			models.Notification{
				UserID:   &userID,
				ChurchID: ev.ChurchID,
				Type:     string(ev.Type),
				Title:    "Appointment submitted",
				Message:  fmt.Sprintf("Your appointment for %s was received and is pending review.", ev.SlotDate),
				Payload:  datatypes.JSON(payload),
			},
			models.Notification{
				ChurchID: ev.ChurchID,
				Type:     string(ev.Type),
				Title:    "New appointment",
				Message:  fmt.Sprintf("A new appointment was booked for %s.", ev.SlotDate),
				Payload:  datatypes.JSON(payload),
			},
		)
	case EventStatusChanged:
		rows = append(rows, models.Notification{
			UserID:   &userID,
			ChurchID: ev.ChurchID,
			Type:     string(ev.Type),
			Title:    "Appointment " + ev.NewStatus,
			Message:  fmt.Sprintf("Your appointment on %s changed from %s to %s.", ev.SlotDate, ev.OldStatus, ev.NewStatus),
			Payload:  datatypes.JSON(payload),
		})
	default:
		return nil
	}

	return s.db.WithContext(ctx).Create(&rows).Error
}
