package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
)

type businessMapping struct {
	status  int
	message string
}

var businessErrors = map[string]businessMapping{
	domain.CodeCatalogMismatch:      {http.StatusNotFound, "Church, service, schedule or time not found."},
	domain.CodeMembershipRequired:   {http.StatusForbidden, "An approved parish membership is required for this service."},
	domain.CodeSlotExhausted:        {http.StatusConflict, "This time slot is fully booked."},
	domain.CodeSlotNotFound:         {http.StatusConflict, "This time slot is not open for booking."},
	domain.CodeDateNotScheduled:     {http.StatusUnprocessableEntity, "The service is not offered on that date."},
	domain.CodeInvalidDate:          {http.StatusUnprocessableEntity, "Invalid date."},
	domain.CodeInvalidRecurrence:    {http.StatusUnprocessableEntity, "Invalid recurrence rule."},
	domain.CodeDateInPast:           {http.StatusUnprocessableEntity, "The date is in the past."},
	domain.CodeInvalidStatus:        {http.StatusUnprocessableEntity, "Invalid status."},
	domain.CodeInvalidCategory:      {http.StatusUnprocessableEntity, "Invalid cancellation category."},
	domain.CodeAppointmentNotFound:  {http.StatusNotFound, "Appointment not found."},
	domain.CodeIntentNotFound:       {http.StatusNotFound, "Payment session not found."},
	domain.CodeIntentExpired:        {http.StatusGone, "The payment session has expired."},
	domain.CodeIntentFailed:         {http.StatusConflict, "The payment session can no longer be confirmed."},
	domain.CodePaymentNotCompleted:  {http.StatusPaymentRequired, "Payment has not been completed."},
	domain.CodeAmountMismatch:       {http.StatusPaymentRequired, "The amount paid does not cover the fee."},
	domain.CodePaymentProvider:      {http.StatusServiceUnavailable, "The payment provider is unavailable."},
	domain.CodePaymentsDisabled:     {http.StatusServiceUnavailable, "Online payments are not available."},
	domain.CodeConfirmationBusy:     {http.StatusConflict, "This payment is already being confirmed."},
	domain.CodeStorageDisabled:      {http.StatusServiceUnavailable, "File uploads are not available."},
	domain.CodeUnsupportedFile:      {http.StatusUnprocessableEntity, "Only JPEG, PNG, WebP or PDF files are accepted."},
	domain.CodeForbiddenAppointment: {http.StatusForbidden, "You cannot access this appointment."},
}

// StatusFor maps a business code to its HTTP status. Unknown codes are 500.
func StatusFor(code string) int {
	if m, ok := businessErrors[code]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

// writeError renders err. Business errors carry their code; anything else is
// logged and hidden behind a generic 500.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	code := httperr.Code(err)
	if m, ok := businessErrors[code]; ok {
		if m.status >= http.StatusInternalServerError {
			log.Warn("upstream dependency failed", zap.String("error_code", code), zap.Error(err))
		}
		httperr.Write(c, m.status, code, m.message)
		return
	}

	log.Error("unexpected error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	httperr.Internal(c, "internal_error", "Unexpected error.")
}

func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.Unprocessable(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return uint(v), true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}
