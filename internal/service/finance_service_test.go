package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type ledgerFake struct {
	revenues map[string]*models.Revenue
	expenses map[string]*models.Expense
	summary  []models.DailyNet
	sales    []models.DailyNet
	loads    int
}

func newLedgerFake() *ledgerFake {
	return &ledgerFake{revenues: map[string]*models.Revenue{}, expenses: map[string]*models.Expense{}}
}

type revenueSide struct{ *ledgerFake }
type expenseSide struct{ *ledgerFake }

func (f revenueSide) List(ctx context.Context, filter models.LedgerFilter) ([]models.Revenue, int, error) {
	var out []models.Revenue
	for _, r := range f.revenues {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f revenueSide) ListBetween(ctx context.Context, from, to models.Date) ([]models.Revenue, error) {
	f.loads++
	var out []models.Revenue
	for _, r := range f.revenues {
		out = append(out, *r)
	}
	return out, nil
}

func (f revenueSide) FindByID(ctx context.Context, id string) (*models.Revenue, error) {
	r, ok := f.revenues[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *r
	return &clone, nil
}

func (f revenueSide) Create(ctx context.Context, revenue *models.Revenue) error {
	revenue.ID = "rev-1"
	f.revenues[revenue.ID] = revenue
	return nil
}

func (f revenueSide) Update(ctx context.Context, revenue *models.Revenue) error {
	f.revenues[revenue.ID] = revenue
	return nil
}

func (f revenueSide) Delete(ctx context.Context, id string) error {
	if _, ok := f.revenues[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.revenues, id)
	return nil
}

func (f expenseSide) List(ctx context.Context, filter models.LedgerFilter) ([]models.Expense, int, error) {
	var out []models.Expense
	for _, e := range f.expenses {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f expenseSide) ListBetween(ctx context.Context, from, to models.Date) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.expenses {
		out = append(out, *e)
	}
	return out, nil
}

func (f expenseSide) FindByID(ctx context.Context, id string) (*models.Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (f expenseSide) Create(ctx context.Context, expense *models.Expense) error {
	expense.ID = "exp-1"
	f.expenses[expense.ID] = expense
	return nil
}

func (f expenseSide) Update(ctx context.Context, expense *models.Expense) error {
	f.expenses[expense.ID] = expense
	return nil
}

func (f expenseSide) Delete(ctx context.Context, id string) error {
	if _, ok := f.expenses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.expenses, id)
	return nil
}

func (f *ledgerFake) DailyNetFromSummaries(ctx context.Context, from, to models.Date) ([]models.DailyNet, error) {
	return f.summary, nil
}

func (f *ledgerFake) DailyNetFromSales(ctx context.Context, from, to models.Date) ([]models.DailyNet, error) {
	return f.sales, nil
}

func newFinanceFixture(withCache bool) (*FinanceService, *ledgerFake) {
	ledger := newLedgerFake()
	cfg := FinanceServiceConfig{}
	if withCache {
		cfg.Cache = NewCacheService(newCacheRepoFake(), nil, 0, nil)
	}
	return NewFinanceService(revenueSide{ledger}, expenseSide{ledger}, ledger, cfg, nil, nil), ledger
}

func TestFinanceServiceSummaryMergesProcessorSources(t *testing.T) {
	svc, ledger := newFinanceFixture(false)
	ledger.summary = []models.DailyNet{{Date: models.NewDate(2024, 5, 1), NetAmount: 300000}}
	ledger.sales = []models.DailyNet{
		{Date: models.NewDate(2024, 5, 1), NetAmount: 1},
		{Date: models.NewDate(2024, 5, 2), NetAmount: 200000},
	}

	summary, err := svc.Summary(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), summary.Monthly[4].PayhereSales)
	assert.Equal(t, int64(500000), summary.Yearly.NetProfit)
}

func TestFinanceServiceSummaryFromImportedDailySheet(t *testing.T) {
	parsed := ParseDailySummaryRows([][]string{
		{"영업일", "결제 건수", "총 매출", "실 매출"},
		{"2025-01-05", "4건", "210,000", "200,000"},
		{"2025-01-20", "3건", "150,000", "150,000"},
	})
	require.True(t, parsed.Success)
	require.Len(t, parsed.Data, 2)

	svc, ledger := newFinanceFixture(false)
	for _, day := range parsed.Data {
		ledger.summary = append(ledger.summary, models.DailyNet{Date: day.SummaryDate, NetAmount: day.NetSales})
	}
	ledger.revenues["rev-1"] = &models.Revenue{ID: "rev-1", RevenueDate: models.NewDate(2025, 1, 10), Description: "Recital tickets", Amount: 50000, Category: "event"}
	ledger.expenses["exp-1"] = &models.Expense{ID: "exp-1", ExpenseDate: models.NewDate(2025, 1, 1), Description: "Studio rent", Amount: 100000, Category: "rent", IsFixed: true}

	summary, err := svc.Summary(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, summary.Monthly, 12)

	jan := summary.Monthly[0]
	assert.Equal(t, int64(350000), jan.PayhereSales)
	assert.Equal(t, int64(400000), jan.TotalIncome)
	assert.Equal(t, int64(100000), jan.FixedExpenses)
	assert.Equal(t, int64(300000), jan.NetProfit)

	var income, expenses, net int64
	for _, month := range summary.Monthly {
		income += month.TotalIncome
		expenses += month.Expenses
		net += month.NetProfit
	}
	assert.Equal(t, summary.Yearly.TotalIncome, income)
	assert.Equal(t, summary.Yearly.Expenses, expenses)
	assert.Equal(t, summary.Yearly.NetProfit, net)
}

func TestFinanceServiceSummaryCacheInvalidatedOnWrite(t *testing.T) {
	svc, ledger := newFinanceFixture(true)
	ctx := context.Background()

	_, err := svc.Summary(ctx, 2024)
	require.NoError(t, err)
	_, err = svc.Summary(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.loads)

	_, err = svc.CreateExpense(ctx, dto.ExpenseRequest{ExpenseDate: "2024-02-01", Description: "Rent", Amount: 700000, Category: "rent", IsFixed: true})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.loads)
	assert.Equal(t, int64(700000), summary.Monthly[1].FixedExpenses)
	assert.Equal(t, int64(700000), summary.ExpensesByCategory["rent"])
}

func TestFinanceServiceLedgerValidation(t *testing.T) {
	svc, _ := newFinanceFixture(false)
	ctx := context.Background()

	_, err := svc.CreateRevenue(ctx, dto.RevenueRequest{RevenueDate: "2024-02-01", Description: "Recital", Amount: 10000, Category: "tuition"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	day := 32
	_, err = svc.CreateExpense(ctx, dto.ExpenseRequest{ExpenseDate: "2024-02-01", Description: "Rent", Amount: 1, Category: "rent", RecurringDay: &day})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Summary(ctx, 1999)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFinanceServiceRevenueLifecycle(t *testing.T) {
	svc, ledger := newFinanceFixture(false)
	ctx := context.Background()

	created, err := svc.CreateRevenue(ctx, dto.RevenueRequest{RevenueDate: "2024-06-10", Description: "Recital tickets", Amount: 90000, Category: "event"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", created.RevenueDate.String())

	updated, err := svc.UpdateRevenue(ctx, created.ID, dto.RevenueRequest{RevenueDate: "2024-06-11", Description: "Recital tickets", Amount: 95000, Category: "event"})
	require.NoError(t, err)
	assert.Equal(t, int64(95000), updated.Amount)

	require.NoError(t, svc.DeleteRevenue(ctx, created.ID))
	assert.Empty(t, ledger.revenues)

	err = svc.DeleteRevenue(ctx, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateExpense(ctx, "missing", dto.ExpenseRequest{ExpenseDate: "2024-02-01", Description: "x", Amount: 1, Category: "other"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFinanceServiceExportSummary(t *testing.T) {
	svc, _ := newFinanceFixture(false)
	file, err := svc.ExportSummary(context.Background(), 2024, "csv")
	require.NoError(t, err)
	assert.Equal(t, "finance_2024.csv", file.FileName)
}
