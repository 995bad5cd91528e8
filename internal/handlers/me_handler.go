package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/middleware"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var memberships []models.Membership
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", actor.UserID).
		Find(&memberships).Error; err != nil {
		httperr.Internal(c, "memberships_failed", "Could not load memberships.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":        actor.UserID,
			"role":      actor.Role,
			"church_id": actor.ChurchID,
		},
		"memberships": memberships,
	})
}

// Notifications lists the actor's notifications, newest first. Staff also
// see their church feed.
func (h *MeHandler) Notifications(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Notification{})
	if actor.IsStaff() && actor.ChurchID != nil {
		q = q.Where("user_id = ? OR (user_id IS NULL AND church_id = ?)", actor.UserID, *actor.ChurchID)
	} else {
		q = q.Where("user_id = ?", actor.UserID)
	}
	if c.Query("unread") == "true" {
		q = q.Where("read_at IS NULL")
	}

	var list []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(100).Find(&list).Error; err != nil {
		httperr.Internal(c, "notifications_failed", "Could not load notifications.")
		return
	}

	httpresp.List(c, list)
}

func (h *MeHandler) MarkNotificationRead(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, actor.UserID).
		Update("read_at", time.Now().UTC())
	if res.Error != nil {
		httperr.Internal(c, "notification_update_failed", "Could not update notification.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "notification_not_found", "Notification not found.")
		return
	}

	c.Status(http.StatusNoContent)
}
