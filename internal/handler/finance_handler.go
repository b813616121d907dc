package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/internal/service"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
	"github.com/noah-isme/piano-academy-api/pkg/response"
)

type financeService interface {
	Summary(ctx context.Context, year int) (*models.FinanceSummary, error)
	ExportSummary(ctx context.Context, year int, format string) (*service.ExportFile, error)
	ListRevenues(ctx context.Context, filter models.LedgerFilter) ([]models.Revenue, *models.Pagination, error)
	CreateRevenue(ctx context.Context, req dto.RevenueRequest) (*models.Revenue, error)
	UpdateRevenue(ctx context.Context, id string, req dto.RevenueRequest) (*models.Revenue, error)
	DeleteRevenue(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, filter models.LedgerFilter) ([]models.Expense, *models.Pagination, error)
	CreateExpense(ctx context.Context, req dto.ExpenseRequest) (*models.Expense, error)
	UpdateExpense(ctx context.Context, id string, req dto.ExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// FinanceHandler exposes the yearly finance summary and the manual ledgers.
type FinanceHandler struct {
	finance financeService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance financeService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// Summary godoc
// @Summary Yearly finance summary
// @Description Monthly income, expenses and net profit combining processor sales with the manual ledgers.
// @Tags Finance
// @Produce json
// @Param year query int false "Year (defaults to the current year)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	summary, err := h.finance.Summary(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportSummary godoc
// @Summary Export the yearly finance summary
// @Tags Finance
// @Produce octet-stream
// @Param year query int false "Year"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /finance/summary/export [get]
func (h *FinanceHandler) ExportSummary(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	file, err := h.finance.ExportSummary(c.Request.Context(), year, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

// ListRevenues godoc
// @Summary List manual revenues
// @Tags Finance
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month"
// @Param category query string false "Category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/revenues [get]
func (h *FinanceHandler) ListRevenues(c *gin.Context) {
	filter := ledgerFilter(c)
	revenues, pagination, err := h.finance.ListRevenues(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, revenues, pagination)
}

// CreateRevenue godoc
// @Summary Create manual revenue
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body dto.RevenueRequest true "Revenue payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/revenues [post]
func (h *FinanceHandler) CreateRevenue(c *gin.Context) {
	var req dto.RevenueRequest
	if !bindJSON(c, &req) {
		return
	}
	revenue, err := h.finance.CreateRevenue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, revenue)
}

// UpdateRevenue godoc
// @Summary Update manual revenue
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Revenue ID"
// @Param payload body dto.RevenueRequest true "Revenue payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/revenues/{id} [put]
func (h *FinanceHandler) UpdateRevenue(c *gin.Context) {
	var req dto.RevenueRequest
	if !bindJSON(c, &req) {
		return
	}
	revenue, err := h.finance.UpdateRevenue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, revenue, nil)
}

// DeleteRevenue godoc
// @Summary Delete manual revenue
// @Tags Finance
// @Param id path string true "Revenue ID"
// @Success 204
// @Security BearerAuth
// @Router /finance/revenues/{id} [delete]
func (h *FinanceHandler) DeleteRevenue(c *gin.Context) {
	if err := h.finance.DeleteRevenue(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListExpenses godoc
// @Summary List expenses
// @Tags Finance
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month"
// @Param category query string false "Category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/expenses [get]
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	filter := ledgerFilter(c)
	expenses, pagination, err := h.finance.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expenses, pagination)
}

// CreateExpense godoc
// @Summary Create expense
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body dto.ExpenseRequest true "Expense payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/expenses [post]
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	expense, err := h.finance.CreateExpense(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, expense)
}

// UpdateExpense godoc
// @Summary Update expense
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param payload body dto.ExpenseRequest true "Expense payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/expenses/{id} [put]
func (h *FinanceHandler) UpdateExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	expense, err := h.finance.UpdateExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expense, nil)
}

// DeleteExpense godoc
// @Summary Delete expense
// @Tags Finance
// @Param id path string true "Expense ID"
// @Success 204
// @Security BearerAuth
// @Router /finance/expenses/{id} [delete]
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	if err := h.finance.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func yearParam(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
		return 0, false
	}
	return year, true
}

func ledgerFilter(c *gin.Context) models.LedgerFilter {
	filter := models.LedgerFilter{Category: c.Query("category")}
	filter.Year, _ = strconv.Atoi(c.Query("year"))
	filter.Month, _ = strconv.Atoi(c.Query("month"))
	filter.Page, filter.PageSize = queryPage(c)
	return filter
}
