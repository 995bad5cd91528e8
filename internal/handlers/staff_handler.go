package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/dto"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/sacrament-scheduler/internal/usecase/appointment"
)

type StaffHandler struct {
	status *ucAppointment.UpdateStatus
	list   *ucAppointment.ListAppointments
	log    *zap.Logger
}

func NewStaffHandler(
	status *ucAppointment.UpdateStatus,
	list *ucAppointment.ListAppointments,
	log *zap.Logger,
) *StaffHandler {
	return &StaffHandler{status: status, list: list, log: log}
}

type UpdateStatusRequest struct {
	Status               string `json:"status" binding:"required"`
	CancellationCategory string `json:"cancellation_category"`
	Note                 string `json:"note"`
}

type BulkUpdateStatusRequest struct {
	AppointmentIDs []uint `json:"appointment_ids" binding:"required,min=1,max=200"`
	UpdateStatusRequest
}

func (r UpdateStatusRequest) change() ucAppointment.StatusChange {
	return ucAppointment.StatusChange{
		Status:               r.Status,
		CancellationCategory: r.CancellationCategory,
		Note:                 r.Note,
	}
}

func (h *StaffHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Unprocessable(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, err := h.status.Execute(c.Request.Context(), middleware.ActorFrom(c), id, req.change())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

func (h *StaffHandler) BulkUpdateStatus(c *gin.Context) {
	var req BulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Unprocessable(c, "invalid_request", "Invalid request body.")
		return
	}

	results, err := h.status.ExecuteBulk(c.Request.Context(), middleware.ActorFrom(c), req.AppointmentIDs, req.change())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, results)
}

func (h *StaffHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	in := ucAppointment.ListAppointmentsInput{
		Status:   c.Query("status"),
		SlotDate: c.Query("date"),
		Limit:    limit,
		Offset:   offset,
	}
	if v := queryInt(c, "church_id", 0); v > 0 {
		id := uint(v)
		in.ChurchID = &id
	}

	list, total, err := h.list.Execute(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Page(c, dto.FromAppointments(list), total, limit, offset)
}
