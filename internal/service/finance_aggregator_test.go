package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

func TestMergeDailyNetPrefersSummaries(t *testing.T) {
	summaries := []models.DailyNet{
		{Date: models.NewDate(2024, 3, 2), NetAmount: 500000},
	}
	sales := []models.DailyNet{
		{Date: models.NewDate(2024, 3, 2), NetAmount: 123},
		{Date: models.NewDate(2024, 3, 1), NetAmount: 200000},
	}

	merged := MergeDailyNet(summaries, sales)
	require.Len(t, merged, 2)
	assert.Equal(t, "2024-03-01", merged[0].Date.String())
	assert.Equal(t, int64(200000), merged[0].NetAmount)
	assert.Equal(t, int64(500000), merged[1].NetAmount)
}

func TestAggregateYearEmpty(t *testing.T) {
	summary := AggregateYear(2024, nil, nil, nil)

	require.Len(t, summary.Monthly, 12)
	assert.Equal(t, 1, summary.Monthly[0].Month)
	assert.Equal(t, 12, summary.Monthly[11].Month)
	assert.Equal(t, models.MonthlyFinance{}, summary.Yearly)
	assert.Len(t, summary.ExpensesByCategory, 6)
	for _, category := range models.ExpenseCategories {
		assert.Equal(t, int64(0), summary.ExpensesByCategory[category])
	}
}

func TestAggregateYearBuckets(t *testing.T) {
	dailyNet := []models.DailyNet{
		{Date: models.NewDate(2024, 3, 1), NetAmount: 1000000},
		{Date: models.NewDate(2024, 3, 15), NetAmount: 500000},
		{Date: models.NewDate(2023, 12, 31), NetAmount: 999},
	}
	revenues := []models.Revenue{
		{RevenueDate: models.NewDate(2024, 3, 20), Amount: 300000, Category: models.RevenueCategoryEvent},
		{RevenueDate: models.NewDate(2025, 1, 1), Amount: 1, Category: models.RevenueCategoryOther},
	}
	expenses := []models.Expense{
		{ExpenseDate: models.NewDate(2024, 3, 1), Amount: 800000, Category: models.ExpenseCategoryRent, IsFixed: true},
		{ExpenseDate: models.NewDate(2024, 3, 10), Amount: 100000, Category: models.ExpenseCategoryMaterials},
		{ExpenseDate: models.NewDate(2024, 7, 5), Amount: 50000, Category: "parking"},
	}

	summary := AggregateYear(2024, dailyNet, revenues, expenses)

	march := summary.Monthly[2]
	assert.Equal(t, int64(1500000), march.PayhereSales)
	assert.Equal(t, int64(300000), march.Revenues)
	assert.Equal(t, int64(900000), march.Expenses)
	assert.Equal(t, int64(800000), march.FixedExpenses)
	assert.Equal(t, int64(100000), march.VariableExpenses)
	assert.Equal(t, int64(1800000), march.TotalIncome)
	assert.Equal(t, int64(900000), march.NetProfit)

	july := summary.Monthly[6]
	assert.Equal(t, int64(-50000), july.NetProfit)

	assert.Equal(t, int64(1500000), summary.Yearly.PayhereSales)
	assert.Equal(t, int64(950000), summary.Yearly.Expenses)
	assert.Equal(t, int64(850000), summary.Yearly.NetProfit)
	assert.Equal(t, summary.Yearly.TotalIncome-summary.Yearly.Expenses, summary.Yearly.NetProfit)

	assert.Equal(t, int64(800000), summary.ExpensesByCategory["rent"])
	assert.Equal(t, int64(100000), summary.ExpensesByCategory["materials"])
	assert.Equal(t, int64(50000), summary.ExpensesByCategory["parking"])
	assert.Len(t, summary.ExpensesByCategory, 7)
}
