package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/middleware"
	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/internal/service"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type fakePayhereSrv struct {
	upload      service.UploadInput
	uploadErr   error
	placeholder bool
	lastFilter  models.SalesFilter
	deleted     string
}

func (f *fakePayhereSrv) ParseRange(from, to string) (service.DateRange, error) {
	if from == "bad" {
		return service.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD")
	}
	return service.DateRange{From: models.NewDate(2024, 3, 1), To: models.NewDate(2024, 3, 20)}, nil
}

func (f *fakePayhereSrv) Upload(ctx context.Context, in service.UploadInput) (*models.UploadResult, error) {
	f.upload = in
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &models.UploadResult{Success: true, Message: "2 rows imported", BatchID: "batch-1", FileType: models.FileTypeSales, Stats: models.UploadStats{TotalRows: 2, Imported: 2}}, nil
}

func (f *fakePayhereSrv) Summary(ctx context.Context, r service.DateRange) (*models.SalesSummary, bool, error) {
	return &models.SalesSummary{From: r.From.String(), To: r.To.String(), NetSales: 1000}, f.placeholder, nil
}

func (f *fakePayhereSrv) ListSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, *models.Pagination, bool, error) {
	f.lastFilter = filter
	return []models.SalesRecord{}, &models.Pagination{Page: 1, PageSize: 20}, f.placeholder, nil
}

func (f *fakePayhereSrv) ExportSales(ctx context.Context, filter models.SalesFilter, format string) (*service.ExportFile, error) {
	return &service.ExportFile{FileName: "sales.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("a,b\n")}, nil
}

func (f *fakePayhereSrv) Daily(ctx context.Context, r service.DateRange) ([]models.DailySalesSummary, bool, error) {
	return []models.DailySalesSummary{}, f.placeholder, nil
}

func (f *fakePayhereSrv) ListSettlements(ctx context.Context, r service.DateRange) ([]models.SettlementRecord, bool, error) {
	return []models.SettlementRecord{}, f.placeholder, nil
}

func (f *fakePayhereSrv) ListBatches(ctx context.Context) ([]models.UploadBatch, error) {
	return []models.UploadBatch{{ID: "batch-1"}}, nil
}

func (f *fakePayhereSrv) DeleteBatch(ctx context.Context, id string) (int64, error) {
	f.deleted = id
	return 12, nil
}

func multipartUpload(t *testing.T, name string, content []byte, fileType string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if fileType != "" {
		require.NoError(t, w.WriteField("fileType", fileType))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/payhere/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestPayhereHandlerUpload(t *testing.T) {
	svc := &fakePayhereSrv{}
	h := NewPayhereHandler(svc, 1024)

	c, rec := newTestContext()
	c.Request = multipartUpload(t, "sales.csv", []byte("결제일,결제 시간\n"), "sales")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sales.csv", svc.upload.FileName)
	assert.Equal(t, "sales", svc.upload.FileType)
	require.NotNil(t, svc.upload.CreatedBy)
	assert.Equal(t, "admin-1", *svc.upload.CreatedBy)

	var result models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "batch-1", result.BatchID)
	assert.Equal(t, 2, result.Stats.Imported)
}

func TestPayhereHandlerUploadTruncatesOversizedFiles(t *testing.T) {
	svc := &fakePayhereSrv{uploadErr: appErrors.Clone(appErrors.ErrValidation, "file exceeds 8 bytes")}
	h := NewPayhereHandler(svc, 8)

	c, rec := newTestContext()
	c.Request = multipartUpload(t, "big.csv", bytes.Repeat([]byte("x"), 64), "")

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, svc.upload.Data, 9)
}

func TestPayhereHandlerUploadRequiresFile(t *testing.T) {
	h := NewPayhereHandler(&fakePayhereSrv{}, 0)

	c, rec := newTestContext()
	c.Request = httptest.NewRequest(http.MethodPost, "/payhere/upload", nil)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Code)
}

func TestPayhereHandlerSummaryPlaceholderMeta(t *testing.T) {
	h := NewPayhereHandler(&fakePayhereSrv{placeholder: true}, 0)

	c, rec := newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/payhere/summary", nil)

	h.Summary(c)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["placeholder"])
}

func TestPayhereHandlerSalesFilterAndRange(t *testing.T) {
	svc := &fakePayhereSrv{}
	h := NewPayhereHandler(svc, 0)

	c, rec := newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/payhere/sales?status=refunded&batchId=b9&page=2&limit=50", nil)
	h.Sales(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeEnvelope(t, rec).Meta)
	assert.Equal(t, "refunded", svc.lastFilter.Status)
	assert.Equal(t, "b9", svc.lastFilter.BatchID)
	assert.Equal(t, 2, svc.lastFilter.Page)
	assert.Equal(t, "2024-03-01", svc.lastFilter.From.String())

	c, rec = newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/payhere/sales?from=bad", nil)
	h.Sales(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayhereHandlerExportAndDelete(t *testing.T) {
	svc := &fakePayhereSrv{}
	h := NewPayhereHandler(svc, 0)

	c, rec := newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/payhere/sales/export", nil)
	h.ExportSales(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="sales.csv"`)
	assert.Equal(t, "a,b\n", rec.Body.String())

	c, rec = newTestContext()
	c.Request = httptest.NewRequest(http.MethodDelete, "/payhere/batches/batch-7", nil)
	c.Params = gin.Params{{Key: "id", Value: "batch-7"}}
	h.DeleteBatch(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "batch-7", svc.deleted)
}
