package dto

import "github.com/noah-isme/piano-academy-api/internal/models"

// CreateFamilyRequest registers a household with its parents and children in
// one call.
type CreateFamilyRequest struct {
	Name         string               `json:"name" validate:"required,max=100"`
	DiscountTier int                  `json:"discount_tier" validate:"min=0,max=2"`
	Notes        *string              `json:"notes"`
	Parents      []FamilyParentInput  `json:"parents" validate:"required,min=1,dive"`
	Students     []FamilyStudentInput `json:"students" validate:"dive"`
}

// FamilyParentInput describes one parent of a new family.
type FamilyParentInput struct {
	Name         string `json:"name" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"required,min=9,max=20"`
	PIN          string `json:"pin" validate:"required,numeric,min=4,max=8"`
	Relationship string `json:"relationship" validate:"omitempty,max=30"`
}

// FamilyStudentInput describes one child of a new family.
type FamilyStudentInput struct {
	Name      string       `json:"name" validate:"required,max=100"`
	BirthDate *models.Date `json:"birth_date"`
	Grade     *string      `json:"grade"`
	Level     *string      `json:"level"`
	Notes     *string      `json:"notes"`
}

// UpdateDiscountTierRequest changes the tier applied to future payments.
type UpdateDiscountTierRequest struct {
	DiscountTier *int `json:"discount_tier" validate:"required,min=0,max=2"`
}

// ParentView is a parent as shown to operators, with a masked phone.
type ParentView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaskedPhone string `json:"phone"`
}

// FamilyResponse is returned by family endpoints.
type FamilyResponse struct {
	models.Family
	Parents  []ParentView     `json:"parents"`
	Students []models.Student `json:"students"`
}
