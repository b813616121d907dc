package models

import "time"

// DiscountTier values map to a family discount rate.
const (
	DiscountTierNone   = 0
	DiscountTierSilver = 1
	DiscountTierGold   = 2
)

// Family groups parents and siblings enrolled at the academy.
type Family struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DiscountTier int       `db:"discount_tier" json:"discount_tier"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Parent is a guardian able to sign into the portal. The phone number is
// stored encrypted; PhoneHash is the lookup key.
type Parent struct {
	ID             string    `db:"id" json:"id"`
	FamilyID       string    `db:"family_id" json:"family_id"`
	Name           string    `db:"name" json:"name"`
	PhoneEncrypted string    `db:"phone_encrypted" json:"-"`
	PhoneHash      string    `db:"phone_hash" json:"-"`
	PINHash        string    `db:"pin_hash" json:"-"`
	Phone          string    `db:"-" json:"phone,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ParentStudent links a parent to one of their children.
type ParentStudent struct {
	ParentID     string `db:"parent_id" json:"parent_id"`
	StudentID    string `db:"student_id" json:"student_id"`
	Relationship string `db:"relationship" json:"relationship"`
}

// FamilyDetail aggregates a family with its members.
type FamilyDetail struct {
	Family
	Parents  []Parent  `json:"parents"`
	Students []Student `json:"students"`
}

// FamilyDiscountRate returns the percentage applied for a tier. Unknown tiers
// receive no discount.
func FamilyDiscountRate(tier int) int64 {
	switch tier {
	case DiscountTierSilver:
		return 5
	case DiscountTierGold:
		return 10
	default:
		return 0
	}
}
