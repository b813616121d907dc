package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/cache"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
	"github.com/noah-isme/piano-academy-api/pkg/spreadsheet"
)

// ImportLockKey serialises spreadsheet imports across instances.
const ImportLockKey = "payhere:import"

type payhereRepository interface {
	ImportSales(ctx context.Context, batch *models.UploadBatch, records []models.SalesRecord) error
	ImportDailySummaries(ctx context.Context, batch *models.UploadBatch, summaries []models.DailySalesSummary) error
	ListSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, int, error)
	SummarizeDaily(ctx context.Context, from, to models.Date) (*models.SalesSummary, error)
	ListDaily(ctx context.Context, from, to models.Date) ([]models.DailySalesSummary, error)
	ListSettlements(ctx context.Context, from, to models.Date) ([]models.SettlementRecord, error)
	ListBatches(ctx context.Context) ([]models.UploadBatch, error)
	FindBatch(ctx context.Context, id string) (*models.UploadBatch, error)
	DeleteBatch(ctx context.Context, id string) (int64, error)
}

type uploadStorage interface {
	Save(name string, data []byte) (string, error)
	Delete(name string) error
}

type importLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

type financeInvalidator interface {
	Invalidate(ctx context.Context)
}

// PayhereConfig tunes uploads and the placeholder fallback.
type PayhereConfig struct {
	MaxUploadBytes  int64
	LockTTL         time.Duration
	PlaceholderData bool
}

// UploadInput is one spreadsheet handed to Upload.
type UploadInput struct {
	FileName  string
	Data      []byte
	FileType  string
	CreatedBy *string
}

// DateRange is an inclusive day range.
type DateRange struct {
	From models.Date
	To   models.Date
}

// PayhereService ingests processor exports and serves the sales views.
type PayhereService struct {
	repo     payhereRepository
	storage  uploadStorage
	locker   importLocker
	finance  financeInvalidator
	exporter *ExportService
	metrics  *MetricsService
	cfg      PayhereConfig
	logger   *zap.Logger
	today    func() models.Date
}

// NewPayhereService constructs the processor data service.
func NewPayhereService(repo payhereRepository, storage uploadStorage, locker importLocker, finance financeInvalidator, exporter *ExportService, metrics *MetricsService, cfg PayhereConfig, logger *zap.Logger) *PayhereService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if exporter == nil {
		exporter = NewExportService(logger)
	}
	return &PayhereService{
		repo:     repo,
		storage:  storage,
		locker:   locker,
		finance:  finance,
		exporter: exporter,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
		today:    models.Today,
	}
}

// ParseRange validates a from/to query pair. Missing bounds default to the
// first day of the current month and today.
func (s *PayhereService) ParseRange(from, to string) (DateRange, error) {
	today := s.today()
	r := DateRange{From: models.NewDate(today.Year(), today.Month(), 1), To: today}
	if from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			return DateRange{}, appErrors.Validation(err, "from must be YYYY-MM-DD")
		}
		r.From = d
	}
	if to != "" {
		d, err := models.ParseDate(to)
		if err != nil {
			return DateRange{}, appErrors.Validation(err, "to must be YYYY-MM-DD")
		}
		r.To = d
	}
	if r.To.Before(r.From.Time) {
		return DateRange{}, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	return r, nil
}

// Upload parses a processor export and stores its rows under a new batch.
func (s *PayhereService) Upload(ctx context.Context, in UploadInput) (*models.UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(in.FileName))
	if !spreadsheet.Supported(in.FileName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file must be .xlsx, .xls or .csv")
	}
	if int64(len(in.Data)) > s.cfg.MaxUploadBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadBytes))
	}
	hint := models.FileType(strings.TrimSpace(in.FileType))
	if hint != "" && hint != models.FileTypeSales && hint != models.FileTypeDailySummary {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fileType must be sales or daily_summary")
	}

	rows, err := spreadsheet.ReadRows(in.Data, in.FileName)
	if err != nil {
		return nil, appErrors.Validation(err, "could not read spreadsheet")
	}

	fileType := hint
	if fileType == "" && len(rows) > 0 {
		fileType = DetectFileType(rows[FindHeaderRow(rows)])
	}
	switch fileType {
	case "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognized format; pass fileType")
	case models.FileTypeSettlement:
		return nil, appErrors.Clone(appErrors.ErrValidation, "settlement exports cannot be imported")
	}

	var (
		totalRows int
		rowErrors []models.RowError
		imported  int
		success   bool
		sales     []models.SalesRecord
		summaries []models.DailySalesSummary
	)
	if fileType == models.FileTypeSales {
		parsed := ParseSalesRows(rows)
		totalRows, rowErrors, success, sales = parsed.TotalRows, parsed.Errors, parsed.Success, parsed.Data
		imported = len(sales)
	} else {
		parsed := ParseDailySummaryRows(rows)
		totalRows, rowErrors, success, summaries = parsed.TotalRows, parsed.Errors, parsed.Success, parsed.Data
		imported = len(summaries)
	}

	result := &models.UploadResult{
		Success:  success,
		FileType: fileType,
		Stats:    models.UploadStats{TotalRows: totalRows, Imported: imported, Errors: len(rowErrors)},
		Errors:   rowErrors,
	}
	if imported == 0 {
		result.Message = "no rows imported"
		s.metrics.RecordImport(fileType, 0, len(rowErrors), "empty")
		return result, nil
	}

	release, err := s.locker.Acquire(ctx, ImportLockKey, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "another import is in progress")
		}
		return nil, appErrors.Internal(err, "failed to acquire import lock")
	}
	defer release()

	batch := &models.UploadBatch{
		ID:         uuid.NewString(),
		FileName:   filepath.Base(in.FileName),
		FileType:   fileType,
		TotalRows:  totalRows,
		Imported:   imported,
		ErrorCount: len(rowErrors),
		CreatedBy:  in.CreatedBy,
	}
	stored, err := s.storage.Save(batch.ID+ext, in.Data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store upload")
	}
	batch.StoredPath = stored

	if fileType == models.FileTypeSales {
		err = s.repo.ImportSales(ctx, batch, sales)
	} else {
		err = s.repo.ImportDailySummaries(ctx, batch, summaries)
	}
	if err != nil {
		if delErr := s.storage.Delete(stored); delErr != nil {
			s.logger.Warn("remove stored upload failed", zap.String("path", stored), zap.Error(delErr))
		}
		s.metrics.RecordImport(fileType, 0, len(rowErrors), "failed")
		return nil, appErrors.Internal(err, "failed to import rows")
	}

	s.metrics.RecordImport(fileType, imported, len(rowErrors), "success")
	s.finance.Invalidate(ctx)
	s.logger.Info("processor export imported",
		zap.String("batch_id", batch.ID),
		zap.String("file_type", string(fileType)),
		zap.Int("imported", imported),
		zap.Int("row_errors", len(rowErrors)))

	result.BatchID = batch.ID
	result.Message = fmt.Sprintf("%d rows imported", imported)
	if len(rowErrors) > 0 {
		result.Message += fmt.Sprintf(", %d rows skipped", len(rowErrors))
	}
	return result, nil
}

// Summary totals the daily summaries of a range. placeholder is true when
// synthetic data was served.
func (s *PayhereService) Summary(ctx context.Context, r DateRange) (*models.SalesSummary, bool, error) {
	summary, err := s.repo.SummarizeDaily(ctx, r.From, r.To)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to summarize sales")
	}
	if summary.Days == 0 && s.cfg.PlaceholderData {
		return placeholderSummary(r.From, r.To), true, nil
	}
	summary.From = r.From.String()
	summary.To = r.To.String()
	return summary, false, nil
}

// ListSales returns a page of sales records.
func (s *PayhereService) ListSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, *models.Pagination, bool, error) {
	records, total, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return nil, nil, false, appErrors.Internal(err, "failed to list sales")
	}
	page, size, offset := models.NormalizePage(filter.Page, filter.PageSize)
	if total == 0 && s.cfg.PlaceholderData && filter.BatchID == "" && filter.Status != models.SaleStatusRefunded && filter.Status != models.SaleStatusPending {
		from, to := s.filterRange(filter)
		all := placeholderSales(from, to)
		end := offset + size
		if offset > len(all) {
			offset = len(all)
		}
		if end > len(all) {
			end = len(all)
		}
		return all[offset:end], &models.Pagination{Page: page, PageSize: size, TotalCount: len(all)}, true, nil
	}
	if records == nil {
		records = []models.SalesRecord{}
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, false, nil
}

// ExportSales renders every record matching the filter.
func (s *PayhereService) ExportSales(ctx context.Context, filter models.SalesFilter, format string) (*ExportFile, error) {
	var all []models.SalesRecord
	filter.PageSize = 100
	for filter.Page = 1; ; filter.Page++ {
		records, pagination, _, err := s.ListSales(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if len(records) == 0 || len(all) >= pagination.TotalCount {
			break
		}
	}
	from, to := s.filterRange(filter)
	return s.exporter.SalesRecords(all, format, fmt.Sprintf("sales_%s_%s", from.Format("20060102"), to.Format("20060102")))
}

// Daily returns daily summaries in a range.
func (s *PayhereService) Daily(ctx context.Context, r DateRange) ([]models.DailySalesSummary, bool, error) {
	days, err := s.repo.ListDaily(ctx, r.From, r.To)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list daily sales")
	}
	if len(days) == 0 && s.cfg.PlaceholderData {
		return placeholderDaily(r.From, r.To), true, nil
	}
	if days == nil {
		days = []models.DailySalesSummary{}
	}
	return days, false, nil
}

// ListSettlements returns settlements overlapping a range.
func (s *PayhereService) ListSettlements(ctx context.Context, r DateRange) ([]models.SettlementRecord, bool, error) {
	settlements, err := s.repo.ListSettlements(ctx, r.From, r.To)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list settlements")
	}
	if len(settlements) == 0 && s.cfg.PlaceholderData {
		return placeholderSettlements(r.From, r.To, s.today()), true, nil
	}
	if settlements == nil {
		settlements = []models.SettlementRecord{}
	}
	return settlements, false, nil
}

// ListBatches returns upload batches newest first.
func (s *PayhereService) ListBatches(ctx context.Context) ([]models.UploadBatch, error) {
	batches, err := s.repo.ListBatches(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list batches")
	}
	if batches == nil {
		batches = []models.UploadBatch{}
	}
	return batches, nil
}

// DeleteBatch removes the rows and stored file of one upload.
func (s *PayhereService) DeleteBatch(ctx context.Context, id string) (int64, error) {
	batch, err := s.repo.FindBatch(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return 0, appErrors.Internal(err, "failed to load batch")
	}
	removed, err := s.repo.DeleteBatch(ctx, id)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to delete batch")
	}
	if batch.StoredPath != "" {
		if err := s.storage.Delete(batch.StoredPath); err != nil {
			s.logger.Warn("remove stored upload failed", zap.String("batch_id", id), zap.Error(err))
		}
	}
	s.finance.Invalidate(ctx)
	s.logger.Info("upload batch deleted", zap.String("batch_id", id), zap.Int64("rows", removed))
	return removed, nil
}

func (s *PayhereService) filterRange(filter models.SalesFilter) (models.Date, models.Date) {
	today := s.today()
	from := models.NewDate(today.Year(), today.Month(), 1)
	to := today
	if filter.From != nil {
		from = *filter.From
	}
	if filter.To != nil {
		to = *filter.To
	}
	return from, to
}
