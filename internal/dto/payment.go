package dto

// CreatePaymentRequest records a tuition payment for a student.
type CreatePaymentRequest struct {
	StudentID          string  `json:"student_id" validate:"required"`
	BaseAmount         int64   `json:"base_amount" validate:"required,gt=0"`
	AdditionalDiscount int64   `json:"additional_discount" validate:"min=0"`
	PaymentMethod      *string `json:"payment_method" validate:"omitempty,oneof=card cash transfer"`
	PaymentDate        string  `json:"payment_date" validate:"required,datetime=2006-01-02"`
	MonthYear          string  `json:"month_year" validate:"required,datetime=2006-01"`
	Notes              *string `json:"notes" validate:"omitempty,max=500"`
}
