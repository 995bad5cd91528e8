package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/httpresp"
	ucSchedule "github.com/BruksfildServices01/sacrament-scheduler/internal/usecase/schedule"
)

type ScheduleHandler struct {
	occupied *ucSchedule.ListOccupiedRanges
	log      *zap.Logger
}

func NewScheduleHandler(occupied *ucSchedule.ListOccupiedRanges, log *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{occupied: occupied, log: log}
}

// Occupied lists time windows that a new rule would overlap with, so the
// schedule editor can grey them out.
func (h *ScheduleHandler) Occupied(c *gin.Context) {
	churchID, ok := paramID(c, "churchID")
	if !ok {
		return
	}

	in := ucSchedule.CandidateInput{
		Type:        c.Query("type"),
		DayOfWeek:   optionalInt(c.Query("day_of_week")),
		WeekOfMonth: optionalInt(c.Query("week_of_month")),
		Date:        c.Query("date"),
	}
	candidate, err := in.Parse()
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	exclude := queryInt(c, "exclude", 0)

	ranges, err := h.occupied.Execute(c.Request.Context(), churchID, candidate, uint(exclude))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, ranges)
}

func optionalInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
