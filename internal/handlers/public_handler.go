package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	churchID, ok := paramID(c, "churchID")
	if !ok {
		return
	}

	var church models.Church
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND status = ? AND is_public = ?", churchID, models.ChurchStatusActive, true).
		First(&church).Error; err != nil {
		httperr.NotFound(c, "church_not_found", "Church not found.")
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Preload("Variants").
		Where("church_id = ? AND active = ?", church.ID, true)

	if query := strings.TrimSpace(strings.ToLower(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.SacramentService
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "services_list_failed", "Could not list services.")
		return
	}

	httpresp.List(c, services)
}
