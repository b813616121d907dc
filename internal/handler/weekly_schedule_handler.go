package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/response"
)

type weeklyScheduleService interface {
	Get(ctx context.Context, weekStart string) (*models.WeeklyScheduleView, error)
	GetOrCreate(ctx context.Context, req dto.WeeklyScheduleRequest) (*models.WeeklyScheduleView, bool, error)
	Confirm(ctx context.Context, id string) (*models.WeeklyScheduleView, error)
	UpdateAttendance(ctx context.Context, req dto.UpdateLessonAttendanceRequest) (*models.WeeklyScheduleDetail, error)
}

// WeeklyScheduleHandler exposes weekly lesson snapshots.
type WeeklyScheduleHandler struct {
	weekly weeklyScheduleService
}

// NewWeeklyScheduleHandler constructs WeeklyScheduleHandler.
func NewWeeklyScheduleHandler(weekly weeklyScheduleService) *WeeklyScheduleHandler {
	return &WeeklyScheduleHandler{weekly: weekly}
}

// Get godoc
// @Summary Get the snapshot of a week
// @Description Returns a null snapshot and no details when the week was never materialised.
// @Tags Weekly Schedules
// @Produce json
// @Param week_start query string true "Week start (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/weekly [get]
func (h *WeeklyScheduleHandler) Get(c *gin.Context) {
	view, err := h.weekly.Get(c.Request.Context(), c.Query("week_start"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// GetOrCreate godoc
// @Summary Get or create the snapshot of a week
// @Description An existing snapshot is returned untouched; otherwise it is seeded from last week or from the base schedule.
// @Tags Weekly Schedules
// @Accept json
// @Produce json
// @Param payload body dto.WeeklyScheduleRequest true "Week payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/weekly [post]
func (h *WeeklyScheduleHandler) GetOrCreate(c *gin.Context) {
	var req dto.WeeklyScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	view, created, err := h.weekly.GetOrCreate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(c, status, view, nil, map[string]interface{}{"created": created})
}

// Confirm godoc
// @Summary Confirm a weekly snapshot
// @Description Confirming twice keeps the first confirmation time.
// @Tags Weekly Schedules
// @Produce json
// @Param id path string true "Snapshot ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/weekly/{id}/confirm [post]
func (h *WeeklyScheduleHandler) Confirm(c *gin.Context) {
	view, err := h.weekly.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// UpdateAttendance godoc
// @Summary Record attendance on a lesson slot
// @Tags Weekly Schedules
// @Accept json
// @Produce json
// @Description The detail row is identified by the id in the body.
// @Param payload body dto.UpdateLessonAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/weekly [put]
func (h *WeeklyScheduleHandler) UpdateAttendance(c *gin.Context) {
	var req dto.UpdateLessonAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.weekly.UpdateAttendance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
