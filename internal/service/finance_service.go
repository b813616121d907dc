package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type revenueRepository interface {
	List(ctx context.Context, filter models.LedgerFilter) ([]models.Revenue, int, error)
	ListBetween(ctx context.Context, from, to models.Date) ([]models.Revenue, error)
	FindByID(ctx context.Context, id string) (*models.Revenue, error)
	Create(ctx context.Context, revenue *models.Revenue) error
	Update(ctx context.Context, revenue *models.Revenue) error
	Delete(ctx context.Context, id string) error
}

type expenseRepository interface {
	List(ctx context.Context, filter models.LedgerFilter) ([]models.Expense, int, error)
	ListBetween(ctx context.Context, from, to models.Date) ([]models.Expense, error)
	FindByID(ctx context.Context, id string) (*models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id string) error
}

type dailyNetSource interface {
	DailyNetFromSummaries(ctx context.Context, from, to models.Date) ([]models.DailyNet, error)
	DailyNetFromSales(ctx context.Context, from, to models.Date) ([]models.DailyNet, error)
}

// FinanceService owns the manual ledger and the yearly summary.
type FinanceService struct {
	revenues  revenueRepository
	expenses  expenseRepository
	sales     dailyNetSource
	cache     *CacheService
	exporter  *ExportService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// FinanceServiceConfig groups optional collaborators.
type FinanceServiceConfig struct {
	Cache    *CacheService
	Exporter *ExportService
	CacheTTL time.Duration
}

// NewFinanceService constructs a FinanceService.
func NewFinanceService(revenues revenueRepository, expenses expenseRepository, sales dailyNetSource, cfg FinanceServiceConfig, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Exporter == nil {
		cfg.Exporter = NewExportService(logger)
	}
	return &FinanceService{
		revenues:  revenues,
		expenses:  expenses,
		sales:     sales,
		cache:     cfg.Cache,
		exporter:  cfg.Exporter,
		cacheTTL:  cfg.CacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// Summary returns the profit and loss of a year, served from cache when possible.
func (s *FinanceService) Summary(ctx context.Context, year int) (*models.FinanceSummary, error) {
	if year < 2000 || year > 2100 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year must be between 2000 and 2100")
	}
	key := FinanceSummaryKey(year)
	var cached models.FinanceSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	from := models.NewDate(year, time.January, 1)
	to := models.NewDate(year, time.December, 31)

	summaries, err := s.sales.DailyNetFromSummaries(ctx, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load daily summaries")
	}
	sales, err := s.sales.DailyNetFromSales(ctx, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load sales")
	}
	revenues, err := s.revenues.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load revenues")
	}
	expenses, err := s.expenses.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load expenses")
	}

	summary := AggregateYear(year, MergeDailyNet(summaries, sales), revenues, expenses)
	s.cache.Set(ctx, key, summary, s.cacheTTL)
	return &summary, nil
}

// ExportSummary renders the yearly summary as csv, pdf or xlsx.
func (s *FinanceService) ExportSummary(ctx context.Context, year int, format string) (*ExportFile, error) {
	summary, err := s.Summary(ctx, year)
	if err != nil {
		return nil, err
	}
	return s.exporter.FinanceSummary(*summary, format)
}

// Invalidate drops cached summaries after processor data changes.
func (s *FinanceService) Invalidate(ctx context.Context) {
	s.cache.InvalidateFinance(ctx)
}

// ListRevenues returns manual revenue lines.
func (s *FinanceService) ListRevenues(ctx context.Context, filter models.LedgerFilter) ([]models.Revenue, *models.Pagination, error) {
	items, total, err := s.revenues.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list revenues")
	}
	if items == nil {
		items = []models.Revenue{}
	}
	page, size, _ := models.NormalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// CreateRevenue stores a revenue line.
func (s *FinanceService) CreateRevenue(ctx context.Context, req dto.RevenueRequest) (*models.Revenue, error) {
	revenue := &models.Revenue{}
	if err := s.applyRevenue(revenue, req); err != nil {
		return nil, err
	}
	if err := s.revenues.Create(ctx, revenue); err != nil {
		return nil, appErrors.Internal(err, "failed to create revenue")
	}
	s.Invalidate(ctx)
	return revenue, nil
}

// UpdateRevenue replaces a revenue line.
func (s *FinanceService) UpdateRevenue(ctx context.Context, id string, req dto.RevenueRequest) (*models.Revenue, error) {
	revenue, err := s.revenues.FindByID(ctx, id)
	if err != nil {
		return nil, ledgerLookupError(err, "revenue")
	}
	if err := s.applyRevenue(revenue, req); err != nil {
		return nil, err
	}
	if err := s.revenues.Update(ctx, revenue); err != nil {
		return nil, appErrors.Internal(err, "failed to update revenue")
	}
	s.Invalidate(ctx)
	return revenue, nil
}

// DeleteRevenue removes a revenue line.
func (s *FinanceService) DeleteRevenue(ctx context.Context, id string) error {
	if err := s.revenues.Delete(ctx, id); err != nil {
		return ledgerLookupError(err, "revenue")
	}
	s.Invalidate(ctx)
	return nil
}

// ListExpenses returns manual expense lines.
func (s *FinanceService) ListExpenses(ctx context.Context, filter models.LedgerFilter) ([]models.Expense, *models.Pagination, error) {
	items, total, err := s.expenses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list expenses")
	}
	if items == nil {
		items = []models.Expense{}
	}
	page, size, _ := models.NormalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// CreateExpense stores an expense line.
func (s *FinanceService) CreateExpense(ctx context.Context, req dto.ExpenseRequest) (*models.Expense, error) {
	expense := &models.Expense{}
	if err := s.applyExpense(expense, req); err != nil {
		return nil, err
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, appErrors.Internal(err, "failed to create expense")
	}
	s.Invalidate(ctx)
	return expense, nil
}

// UpdateExpense replaces an expense line.
func (s *FinanceService) UpdateExpense(ctx context.Context, id string, req dto.ExpenseRequest) (*models.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, ledgerLookupError(err, "expense")
	}
	if err := s.applyExpense(expense, req); err != nil {
		return nil, err
	}
	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, appErrors.Internal(err, "failed to update expense")
	}
	s.Invalidate(ctx)
	return expense, nil
}

// DeleteExpense removes an expense line.
func (s *FinanceService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.expenses.Delete(ctx, id); err != nil {
		return ledgerLookupError(err, "expense")
	}
	s.Invalidate(ctx)
	return nil
}

func (s *FinanceService) applyRevenue(revenue *models.Revenue, req dto.RevenueRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid revenue payload")
	}
	date, err := models.ParseDate(req.RevenueDate)
	if err != nil {
		return appErrors.Validation(err, "invalid revenue_date")
	}
	revenue.RevenueDate = date
	revenue.Description = req.Description
	revenue.Amount = req.Amount
	revenue.Category = req.Category
	revenue.Notes = req.Notes
	return nil
}

func (s *FinanceService) applyExpense(expense *models.Expense, req dto.ExpenseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid expense payload")
	}
	date, err := models.ParseDate(req.ExpenseDate)
	if err != nil {
		return appErrors.Validation(err, "invalid expense_date")
	}
	var until *models.Date
	if req.RecurringUntil != nil {
		parsed, err := models.ParseDate(*req.RecurringUntil)
		if err != nil {
			return appErrors.Validation(err, "invalid recurring_until")
		}
		until = &parsed
	}
	expense.ExpenseDate = date
	expense.Description = req.Description
	expense.Amount = req.Amount
	expense.Category = req.Category
	expense.IsFixed = req.IsFixed
	expense.RecurringDay = req.RecurringDay
	expense.RecurringUntil = until
	expense.Notes = req.Notes
	return nil
}

func ledgerLookupError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return appErrors.Internal(err, "failed to load "+what)
}
