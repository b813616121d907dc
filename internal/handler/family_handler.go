package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/service"
	"github.com/noah-isme/piano-academy-api/pkg/response"
)

// FamilyHandler exposes family registration endpoints.
type FamilyHandler struct {
	families *service.FamilyService
}

// NewFamilyHandler constructs FamilyHandler.
func NewFamilyHandler(families *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{families: families}
}

// Create godoc
// @Summary Register a family
// @Description Creates the family, its parents, its students and the parent links in one transaction.
// @Tags Families
// @Accept json
// @Produce json
// @Param payload body dto.CreateFamilyRequest true "Family payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /families [post]
func (h *FamilyHandler) Create(c *gin.Context) {
	var req dto.CreateFamilyRequest
	if !bindJSON(c, &req) {
		return
	}
	family, err := h.families.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, family)
}

// Get godoc
// @Summary Get family detail
// @Tags Families
// @Produce json
// @Param id path string true "Family ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /families/{id} [get]
func (h *FamilyHandler) Get(c *gin.Context) {
	family, err := h.families.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, family, nil)
}

// UpdateDiscountTier godoc
// @Summary Change a family's discount tier
// @Description Applies to payments created afterwards only.
// @Tags Families
// @Accept json
// @Produce json
// @Param id path string true "Family ID"
// @Param payload body dto.UpdateDiscountTierRequest true "Tier payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /families/{id}/discount-tier [patch]
func (h *FamilyHandler) UpdateDiscountTier(c *gin.Context) {
	var req dto.UpdateDiscountTierRequest
	if !bindJSON(c, &req) {
		return
	}
	family, err := h.families.UpdateDiscountTier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, family, nil)
}
