package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sturmfeder/guild-portal/internal/dto"
	"github.com/sturmfeder/guild-portal/internal/service"
)

// ActivityHandler handles weekly vault activity requests
type ActivityHandler struct {
	activities service.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activities service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// Get returns the current week's snapshot for one character
// @Summary Get weekly activity
// @Tags member
// @Produce json
// @Success 200 {object} domain.WeeklyActivity
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /member/characters/{id}/weekly-activity [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	activity, err := h.activities.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// Refresh recomputes the current week's snapshot from Battle.net
// @Summary Refresh weekly activity
// @Tags member
// @Produce json
// @Success 200 {object} domain.WeeklyActivity
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /member/characters/{id}/weekly-activity [post]
func (h *ActivityHandler) Refresh(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	activity, err := h.activities.Refresh(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// Overview returns the current week's activity of all main characters
// @Summary Guild-wide weekly overview
// @Tags member
// @Produce json
// @Success 200 {object} dto.OverviewResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /member/weekly-overview [get]
func (h *ActivityHandler) Overview(c *gin.Context) {
	if _, ok := accountID(c); !ok {
		return
	}

	entries, err := h.activities.WeeklyOverview(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	week := service.CurrentWeek(time.Now())
	c.JSON(http.StatusOK, dto.OverviewResponse{
		WeekStart: week.Start.Format("2006-01-02"),
		WeekEnd:   week.End.Format("2006-01-02"),
		Entries:   entries,
		Count:     len(entries),
	})
}
