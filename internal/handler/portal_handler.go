package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
	"github.com/noah-isme/piano-academy-api/pkg/response"
)

type portalService interface {
	Login(ctx context.Context, req models.ParentLoginRequest) (*models.ParentSession, error)
	Me(ctx context.Context, parentID string) (*dto.PortalProfile, error)
	Children(ctx context.Context, parentID string) ([]dto.PortalChild, error)
	ChildAttendance(ctx context.Context, parentID, studentID string, from, to *models.Date) ([]models.Attendance, error)
	ChildPayments(ctx context.Context, parentID, studentID string, page, pageSize int) ([]models.Payment, *models.Pagination, error)
}

// PortalCookie configures the parent session cookie.
type PortalCookie struct {
	Name   string
	Secure bool
}

// PortalHandler serves the parent portal.
type PortalHandler struct {
	service portalService
	cookie  PortalCookie
}

// NewPortalHandler constructs a PortalHandler.
func NewPortalHandler(svc portalService, cookie PortalCookie) *PortalHandler {
	if cookie.Name == "" {
		cookie.Name = "piano_portal"
	}
	return &PortalHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Parent portal login
// @Description Authenticates a parent by phone number and PIN and sets an HttpOnly session cookie.
// @Tags Portal
// @Accept json
// @Produce json
// @Param payload body models.ParentLoginRequest true "Phone and PIN"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /portal/login [post]
func (h *PortalHandler) Login(c *gin.Context) {
	var req models.ParentLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, session.Token, maxAge, "/", "", h.cookie.Secure, true)
	response.JSON(c, http.StatusOK, session, nil)
}

// Logout godoc
// @Summary Parent portal logout
// @Tags Portal
// @Success 204
// @Router /portal/logout [post]
func (h *PortalHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.NoContent(c)
}

// Me godoc
// @Summary Current parent profile
// @Tags Portal
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /portal/me [get]
func (h *PortalHandler) Me(c *gin.Context) {
	parentID, ok := h.parentID(c)
	if !ok {
		return
	}
	profile, err := h.service.Me(c.Request.Context(), parentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Children godoc
// @Summary Children of the signed-in parent
// @Tags Portal
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /portal/children [get]
func (h *PortalHandler) Children(c *gin.Context) {
	parentID, ok := h.parentID(c)
	if !ok {
		return
	}
	children, err := h.service.Children(c.Request.Context(), parentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children, nil)
}

// ChildAttendance godoc
// @Summary Attendance of one child
// @Tags Portal
// @Produce json
// @Param id path string true "Student ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /portal/children/{id}/attendance [get]
func (h *PortalHandler) ChildAttendance(c *gin.Context) {
	parentID, ok := h.parentID(c)
	if !ok {
		return
	}
	from, err := queryDate(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.service.ChildAttendance(c.Request.Context(), parentID, c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ChildPayments godoc
// @Summary Payment history of one child
// @Tags Portal
// @Produce json
// @Param id path string true "Student ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /portal/children/{id}/payments [get]
func (h *PortalHandler) ChildPayments(c *gin.Context) {
	parentID, ok := h.parentID(c)
	if !ok {
		return
	}
	page, size := queryPage(c)
	payments, pagination, err := h.service.ChildPayments(c.Request.Context(), parentID, c.Param("id"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

func (h *PortalHandler) parentID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != models.RoleParent {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}
