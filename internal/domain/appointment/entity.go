package appointment

import (
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Apply writes a computed transition onto the appointment row.
func Apply(ap *models.Appointment, tr TransitionResult) {
	ap.Status = string(tr.To)

	if tr.To != StatusCancelled {
		ap.CancellationCategory = nil
		ap.CancellationNote = ""
		return
	}
	if tr.Category != nil {
		category := string(*tr.Category)
		ap.CancellationCategory = &category
		ap.CancellationNote = tr.Note
	}
}

// CurrentStatus reads the status of a stored appointment. Unknown legacy
// values are treated as Pending so they keep holding their slot.
func CurrentStatus(ap *models.Appointment) Status {
	if st, ok := ParseStatus(ap.Status); ok {
		return st
	}
	return StatusPending
}
