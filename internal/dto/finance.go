package dto

// RevenueRequest creates or replaces a manual revenue line.
type RevenueRequest struct {
	RevenueDate string  `json:"revenue_date" validate:"required,datetime=2006-01-02"`
	Description string  `json:"description" validate:"required,max=200"`
	Amount      int64   `json:"amount" validate:"gt=0"`
	Category    string  `json:"category" validate:"required,oneof=lesson material event other"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

// ExpenseRequest creates or replaces a manual expense line.
type ExpenseRequest struct {
	ExpenseDate    string  `json:"expense_date" validate:"required,datetime=2006-01-02"`
	Description    string  `json:"description" validate:"required,max=200"`
	Amount         int64   `json:"amount" validate:"gt=0"`
	Category       string  `json:"category" validate:"required,oneof=rent salary utilities operations materials other"`
	IsFixed        bool    `json:"is_fixed"`
	RecurringDay   *int    `json:"recurring_day" validate:"omitempty,min=1,max=31"`
	RecurringUntil *string `json:"recurring_until" validate:"omitempty,datetime=2006-01-02"`
	Notes          *string `json:"notes" validate:"omitempty,max=500"`
}
