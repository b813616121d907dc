package service

import (
	"sort"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

// MergeDailyNet combines processor net sales per day. Daily summaries win for
// the days they cover; completed sales fill the remaining days.
func MergeDailyNet(summaries, sales []models.DailyNet) []models.DailyNet {
	covered := make(map[string]struct{}, len(summaries))
	merged := make([]models.DailyNet, 0, len(summaries)+len(sales))
	for _, day := range summaries {
		covered[day.Date.String()] = struct{}{}
		merged = append(merged, day)
	}
	for _, day := range sales {
		if _, ok := covered[day.Date.String()]; ok {
			continue
		}
		merged = append(merged, day)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date.Time)
	})
	return merged
}

// AggregateYear builds the monthly and yearly profit and loss for year.
// Records dated outside the year are ignored.
func AggregateYear(year int, dailyNet []models.DailyNet, revenues []models.Revenue, expenses []models.Expense) models.FinanceSummary {
	monthly := make([]models.MonthlyFinance, 12)
	for i := range monthly {
		monthly[i].Month = i + 1
	}

	byCategory := make(map[string]int64, len(models.ExpenseCategories))
	for _, category := range models.ExpenseCategories {
		byCategory[category] = 0
	}

	for _, day := range dailyNet {
		if day.Date.Year() != year {
			continue
		}
		monthly[day.Date.Month()-1].PayhereSales += day.NetAmount
	}
	for _, revenue := range revenues {
		if revenue.RevenueDate.Year() != year {
			continue
		}
		monthly[revenue.RevenueDate.Month()-1].Revenues += revenue.Amount
	}
	for _, expense := range expenses {
		if expense.ExpenseDate.Year() != year {
			continue
		}
		bucket := &monthly[expense.ExpenseDate.Month()-1]
		bucket.Expenses += expense.Amount
		if expense.IsFixed {
			bucket.FixedExpenses += expense.Amount
		} else {
			bucket.VariableExpenses += expense.Amount
		}
		byCategory[expense.Category] += expense.Amount
	}

	var yearly models.MonthlyFinance
	for i := range monthly {
		m := &monthly[i]
		m.TotalIncome = m.PayhereSales + m.Revenues
		m.NetProfit = m.TotalIncome - m.Expenses

		yearly.PayhereSales += m.PayhereSales
		yearly.Revenues += m.Revenues
		yearly.Expenses += m.Expenses
		yearly.FixedExpenses += m.FixedExpenses
		yearly.VariableExpenses += m.VariableExpenses
		yearly.TotalIncome += m.TotalIncome
		yearly.NetProfit += m.NetProfit
	}

	return models.FinanceSummary{
		Year:               year,
		Monthly:            monthly,
		Yearly:             yearly,
		ExpensesByCategory: byCategory,
	}
}
