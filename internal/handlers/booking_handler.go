package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/dto"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/sacrament-scheduler/internal/usecase/appointment"
)

const maxUploadSize = 10 << 20

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	submit       *ucAppointment.SubmitApplication
	confirm      *ucAppointment.ConfirmPayment
	list         *ucAppointment.ListAppointments
	availability *ucAppointment.GetAvailability
	requirements *ucAppointment.AttachRequirement
	log          *zap.Logger
}

func NewBookingHandler(
	submit *ucAppointment.SubmitApplication,
	confirm *ucAppointment.ConfirmPayment,
	list *ucAppointment.ListAppointments,
	availability *ucAppointment.GetAvailability,
	requirements *ucAppointment.AttachRequirement,
	log *zap.Logger,
) *BookingHandler {
	return &BookingHandler{
		submit:       submit,
		confirm:      confirm,
		list:         list,
		availability: availability,
		requirements: requirements,
		log:          log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type SubmitApplicationRequest struct {
	ServiceID      uint              `json:"service_id" binding:"required"`
	ScheduleID     uint              `json:"schedule_id" binding:"required"`
	ScheduleTimeID uint              `json:"schedule_time_id" binding:"required"`
	Date           string            `json:"date" binding:"required"`
	FormData       map[string]string `json:"form_data"`
	Notes          string            `json:"notes"`
}

type WebhookRequest struct {
	SessionID         string `json:"session_id"`
	ExternalReference string `json:"external_reference"`
}

// ======================================================
// SUBMIT
// ======================================================

func (h *BookingHandler) Submit(c *gin.Context) {
	churchID, ok := paramID(c, "churchID")
	if !ok {
		return
	}

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Unprocessable(c, "invalid_request", "Invalid request body.")
		return
	}

	res, err := h.submit.Execute(c.Request.Context(), middleware.ActorFrom(c), ucAppointment.SubmitApplicationInput{
		ChurchID:       churchID,
		ServiceID:      req.ServiceID,
		ScheduleID:     req.ScheduleID,
		ScheduleTimeID: req.ScheduleTimeID,
		Date:           req.Date,
		FormData:       req.FormData,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	if res.PaymentRequired {
		c.JSON(http.StatusPaymentRequired, dto.CheckoutDTO{
			ErrorCode:   "payment_required",
			SessionID:   res.Intent.SessionID,
			CheckoutURL: res.CheckoutURL,
			Amount:      res.Intent.Amount,
			ExpiresAt:   res.Intent.ExpiresAt,
		})
		return
	}

	httpresp.Created(c, dto.FromAppointment(res.Appointment))
}

// ======================================================
// PAYMENT CONFIRMATION
// ======================================================

// Confirm serves the browser return from checkout.
func (h *BookingHandler) Confirm(c *gin.Context) {
	res, err := h.confirm.Execute(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.writeConfirmation(c, res)
}

// Webhook is the provider callback. Final business outcomes answer 200 so the
// provider stops retrying; infrastructure failures answer 5xx so it retries.
func (h *BookingHandler) Webhook(c *gin.Context) {
	var req WebhookRequest
	_ = c.ShouldBindJSON(&req)

	session := req.SessionID
	if session == "" {
		session = req.ExternalReference
	}
	if session == "" {
		session = c.Query("session_id")
	}
	if session == "" {
		httperr.Unprocessable(c, "missing_session_id", "Missing session id.")
		return
	}

	res, err := h.confirm.Execute(c.Request.Context(), session)
	if err != nil {
		code := httperr.Code(err)
		if code == "" || StatusFor(code) >= http.StatusInternalServerError || code == domain.CodeConfirmationBusy {
			writeError(c, h.log, err)
			return
		}
		h.log.Info("webhook not applied", zap.String("session_id", session), zap.String("error_code", code))
		c.JSON(http.StatusOK, gin.H{"processed": false, "error_code": code})
		return
	}
	h.writeConfirmation(c, res)
}

func (h *BookingHandler) writeConfirmation(c *gin.Context, res *ucAppointment.BookingResult) {
	body := gin.H{
		"processed":   true,
		"replayed":    res.Replayed,
		"appointment": dto.FromAppointment(res.Appointment),
	}
	if res.Replayed {
		httpresp.OK(c, body)
		return
	}
	httpresp.Created(c, body)
}

// ======================================================
// QUERIES
// ======================================================

func (h *BookingHandler) MyAppointments(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	list, total, err := h.list.Execute(c.Request.Context(), middleware.ActorFrom(c), ucAppointment.ListAppointmentsInput{
		Mine:     true,
		Status:   c.Query("status"),
		SlotDate: c.Query("date"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Page(c, dto.FromAppointments(list), total, limit, offset)
}

func (h *BookingHandler) Availability(c *gin.Context) {
	churchID, ok := paramID(c, "churchID")
	if !ok {
		return
	}
	serviceID, ok := paramID(c, "serviceID")
	if !ok {
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		ChurchID:  churchID,
		ServiceID: serviceID,
		Date:      c.Query("date"),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// REQUIREMENTS
// ======================================================

func (h *BookingHandler) UploadRequirement(c *gin.Context) {
	appointmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fh, err := c.FormFile("file")
	if err != nil {
		httperr.Unprocessable(c, "missing_file", "Missing file.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "unreadable_file", "Could not read file.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		httperr.BadRequest(c, "unreadable_file", "Could not read file.")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = fh.Filename
	}

	req, err := h.requirements.Execute(c.Request.Context(), middleware.ActorFrom(c), appointmentID, ucAppointment.RequirementUpload{
		Name: name,
		Data: data,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, req)
}
