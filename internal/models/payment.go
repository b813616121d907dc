package models

import "time"

// Payment records one tuition collection. Discounts are captured at creation
// and never recomputed.
type Payment struct {
	ID                 string    `db:"id" json:"id"`
	StudentID          string    `db:"student_id" json:"student_id"`
	BaseAmount         int64     `db:"base_amount" json:"base_amount"`
	FamilyDiscount     int64     `db:"family_discount" json:"family_discount"`
	AdditionalDiscount int64     `db:"additional_discount" json:"additional_discount"`
	FinalAmount        int64     `db:"final_amount" json:"final_amount"`
	PaymentMethod      *string   `db:"payment_method" json:"payment_method,omitempty"`
	PaymentDate        Date      `db:"payment_date" json:"payment_date"`
	MonthYear          string    `db:"month_year" json:"month_year"`
	Notes              *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	StudentID  string
	StudentIDs []string
	MonthYear  string
	Page       int
	PageSize   int
}

// FamilyDiscountInfo describes the discount applied to a payment.
type FamilyDiscountInfo struct {
	Tier   int   `json:"tier"`
	Rate   int64 `json:"rate"`
	Amount int64 `json:"amount"`
}

// PaymentResult is returned after creating a payment.
type PaymentResult struct {
	Payment        *Payment           `json:"payment"`
	FamilyDiscount FamilyDiscountInfo `json:"family_discount"`
}
