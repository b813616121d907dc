package models

import "time"

// Revenue categories accepted at write time.
const (
	RevenueCategoryLesson   = "lesson"
	RevenueCategoryMaterial = "material"
	RevenueCategoryEvent    = "event"
	RevenueCategoryOther    = "other"
)

// Expense categories accepted at write time and pre-seeded in summaries.
const (
	ExpenseCategoryRent       = "rent"
	ExpenseCategorySalary     = "salary"
	ExpenseCategoryUtilities  = "utilities"
	ExpenseCategoryOperations = "operations"
	ExpenseCategoryMaterials  = "materials"
	ExpenseCategoryOther      = "other"
)

// ExpenseCategories lists the known expense buckets in display order.
var ExpenseCategories = []string{
	ExpenseCategoryRent,
	ExpenseCategorySalary,
	ExpenseCategoryUtilities,
	ExpenseCategoryOperations,
	ExpenseCategoryMaterials,
	ExpenseCategoryOther,
}

// Revenue is a manually entered income line outside the payment processor.
type Revenue struct {
	ID          string    `db:"id" json:"id"`
	RevenueDate Date      `db:"revenue_date" json:"revenue_date"`
	Description string    `db:"description" json:"description"`
	Amount      int64     `db:"amount" json:"amount"`
	Category    string    `db:"category" json:"category"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Expense is a manually entered cost line. Recurrence fields are advisory.
type Expense struct {
	ID             string    `db:"id" json:"id"`
	ExpenseDate    Date      `db:"expense_date" json:"expense_date"`
	Description    string    `db:"description" json:"description"`
	Amount         int64     `db:"amount" json:"amount"`
	Category       string    `db:"category" json:"category"`
	IsFixed        bool      `db:"is_fixed" json:"is_fixed"`
	RecurringDay   *int      `db:"recurring_day" json:"recurring_day,omitempty"`
	RecurringUntil *Date     `db:"recurring_until" json:"recurring_until,omitempty"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// LedgerFilter narrows revenue and expense listings.
type LedgerFilter struct {
	Year     int
	Month    int
	Category string
	Page     int
	PageSize int
}

// MonthlyFinance holds one month (or the yearly total when Month is 0).
type MonthlyFinance struct {
	Month            int   `json:"month,omitempty"`
	PayhereSales     int64 `json:"payhere_sales"`
	Revenues         int64 `json:"revenues"`
	Expenses         int64 `json:"expenses"`
	FixedExpenses    int64 `json:"fixed_expenses"`
	VariableExpenses int64 `json:"variable_expenses"`
	TotalIncome      int64 `json:"total_income"`
	NetProfit        int64 `json:"net_profit"`
}

// FinanceSummary is the yearly P&L breakdown.
type FinanceSummary struct {
	Year               int              `json:"year"`
	Monthly            []MonthlyFinance `json:"monthly"`
	Yearly             MonthlyFinance   `json:"yearly"`
	ExpensesByCategory map[string]int64 `json:"expenses_by_category"`
}
