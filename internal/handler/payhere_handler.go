package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/piano-academy-api/internal/middleware"
	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/internal/service"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
	"github.com/noah-isme/piano-academy-api/pkg/response"
)

type payhereService interface {
	ParseRange(from, to string) (service.DateRange, error)
	Upload(ctx context.Context, in service.UploadInput) (*models.UploadResult, error)
	Summary(ctx context.Context, r service.DateRange) (*models.SalesSummary, bool, error)
	ListSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, *models.Pagination, bool, error)
	ExportSales(ctx context.Context, filter models.SalesFilter, format string) (*service.ExportFile, error)
	Daily(ctx context.Context, r service.DateRange) ([]models.DailySalesSummary, bool, error)
	ListSettlements(ctx context.Context, r service.DateRange) ([]models.SettlementRecord, bool, error)
	ListBatches(ctx context.Context) ([]models.UploadBatch, error)
	DeleteBatch(ctx context.Context, id string) (int64, error)
}

// PayhereHandler exposes card processor imports and the sales views.
type PayhereHandler struct {
	payhere  payhereService
	maxBytes int64
}

// NewPayhereHandler constructs PayhereHandler. maxBytes bounds how much of an
// upload is read into memory.
func NewPayhereHandler(payhere payhereService, maxBytes int64) *PayhereHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &PayhereHandler{payhere: payhere, maxBytes: maxBytes}
}

// Upload godoc
// @Summary Import a processor export
// @Description Accepts .xlsx, .xls or .csv sales or daily summary exports. Malformed rows are reported, not fatal.
// @Tags PayHere
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet"
// @Param fileType formData string false "sales or daily_summary"
// @Success 201 {object} models.UploadResult
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /payhere/upload [post]
func (h *PayhereHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Validation(err, "file is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Validation(err, "file could not be opened"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		response.Error(c, appErrors.Validation(err, "file could not be read"))
		return
	}

	in := service.UploadInput{FileName: header.Filename, Data: data, FileType: c.PostForm("fileType")}
	if claims := claimsFromContext(c); claims != nil {
		in.CreatedBy = &claims.UserID
	}

	result, err := h.payhere.Upload(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.BatchID != "" {
		status = http.StatusCreated
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(status, result)
}

// Summary godoc
// @Summary Sales totals over a range
// @Tags PayHere
// @Produce json
// @Param from query string false "From (YYYY-MM-DD), defaults to the first of this month"
// @Param to query string false "To (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payhere/summary [get]
func (h *PayhereHandler) Summary(c *gin.Context) {
	r, err := h.payhere.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, placeholder, err := h.payhere.Summary(c.Request.Context(), r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, placeholderMeta(c, placeholder))
}

// Sales godoc
// @Summary List sales records
// @Tags PayHere
// @Produce json
// @Param from query string false "From (YYYY-MM-DD)"
// @Param to query string false "To (YYYY-MM-DD)"
// @Param status query string false "completed, refunded or pending"
// @Param batchId query string false "Upload batch"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payhere/sales [get]
func (h *PayhereHandler) Sales(c *gin.Context) {
	filter, ok := h.salesFilter(c)
	if !ok {
		return
	}
	records, pagination, placeholder, err := h.payhere.ListSales(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination, placeholderMeta(c, placeholder))
}

// ExportSales godoc
// @Summary Export sales records
// @Tags PayHere
// @Produce octet-stream
// @Param from query string false "From (YYYY-MM-DD)"
// @Param to query string false "To (YYYY-MM-DD)"
// @Param status query string false "Status"
// @Param batchId query string false "Upload batch"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /payhere/sales/export [get]
func (h *PayhereHandler) ExportSales(c *gin.Context) {
	filter, ok := h.salesFilter(c)
	if !ok {
		return
	}
	file, err := h.payhere.ExportSales(c.Request.Context(), filter, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

// Daily godoc
// @Summary Daily sales summaries
// @Tags PayHere
// @Produce json
// @Param from query string false "From (YYYY-MM-DD)"
// @Param to query string false "To (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payhere/daily [get]
func (h *PayhereHandler) Daily(c *gin.Context) {
	r, err := h.payhere.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	days, placeholder, err := h.payhere.Daily(c.Request.Context(), r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil, placeholderMeta(c, placeholder))
}

// Settlements godoc
// @Summary Settlements overlapping a range
// @Tags PayHere
// @Produce json
// @Param from query string false "From (YYYY-MM-DD)"
// @Param to query string false "To (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payhere/settlements [get]
func (h *PayhereHandler) Settlements(c *gin.Context) {
	r, err := h.payhere.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	settlements, placeholder, err := h.payhere.ListSettlements(c.Request.Context(), r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settlements, nil, placeholderMeta(c, placeholder))
}

// Batches godoc
// @Summary List upload batches
// @Tags PayHere
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payhere/batches [get]
func (h *PayhereHandler) Batches(c *gin.Context) {
	batches, err := h.payhere.ListBatches(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, nil)
}

// DeleteBatch godoc
// @Summary Delete an upload batch
// @Description Removes every sales record and daily summary imported by the batch plus the stored file.
// @Tags PayHere
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /payhere/batches/{id} [delete]
func (h *PayhereHandler) DeleteBatch(c *gin.Context) {
	removed, err := h.payhere.DeleteBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"batchId": c.Param("id"), "deletedRows": removed}, nil)
}

func (h *PayhereHandler) salesFilter(c *gin.Context) (models.SalesFilter, bool) {
	r, err := h.payhere.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return models.SalesFilter{}, false
	}
	filter := models.SalesFilter{From: &r.From, To: &r.To, Status: c.Query("status"), BatchID: c.Query("batchId")}
	filter.Page, filter.PageSize = queryPage(c)
	return filter, true
}

func placeholderMeta(c *gin.Context, placeholder bool) map[string]interface{} {
	if placeholder {
		middleware.SetMeta(c, "placeholder", true)
	}
	return middleware.ExtractMeta(c)
}
