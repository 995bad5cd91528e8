package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/middleware"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	logger *audit.Logger
	log    *zap.Logger
}

func NewAuditLogsHandler(logger *audit.Logger, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logger: logger, log: log}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	page := queryInt(c, "page", 1)
	if page <= 0 {
		page = 1
	}
	limit := queryInt(c, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	f := audit.ListFilter{
		Action: c.Query("action"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	// Staff only ever see their own church.
	switch {
	case actor.Role == domain.RoleAdmin:
		if v := queryInt(c, "church_id", 0); v > 0 {
			id := uint(v)
			f.ChurchID = &id
		}
	case actor.ChurchID != nil:
		f.ChurchID = actor.ChurchID
	default:
		httperr.Forbidden(c, "staff_only", "Staff only.")
		return
	}

	logs, total, err := h.logger.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(200, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}
