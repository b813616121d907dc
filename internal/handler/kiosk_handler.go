package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/response"
)

type studentSearcher interface {
	Search(ctx context.Context, q string) ([]models.StudentLookup, error)
}

type attendanceService interface {
	CheckIn(ctx context.Context, req dto.KioskCheckInRequest) (*dto.KioskCheckInResponse, error)
	ListByDate(ctx context.Context, date string) ([]models.Attendance, error)
}

// KioskHandler serves the front-desk check-in tablet and the admin
// attendance view.
type KioskHandler struct {
	students   studentSearcher
	attendance attendanceService
}

// NewKioskHandler constructs KioskHandler.
func NewKioskHandler(students studentSearcher, attendance attendanceService) *KioskHandler {
	return &KioskHandler{students: students, attendance: attendance}
}

// SearchStudents godoc
// @Summary Search active students by name
// @Tags Kiosk
// @Produce json
// @Param q query string true "Name fragment"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /kiosk/students [get]
func (h *KioskHandler) SearchStudents(c *gin.Context) {
	students, err := h.students.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// CheckIn godoc
// @Summary Check a student in for today
// @Tags Kiosk
// @Accept json
// @Produce json
// @Param payload body dto.KioskCheckInRequest true "Student"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /kiosk/check-in [post]
func (h *KioskHandler) CheckIn(c *gin.Context) {
	var req dto.KioskCheckInRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.attendance.CheckIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Attendance godoc
// @Summary Check-ins of a day
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [get]
func (h *KioskHandler) Attendance(c *gin.Context) {
	records, err := h.attendance.ListByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
