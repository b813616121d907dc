package dto

import "github.com/noah-isme/piano-academy-api/internal/models"

// PortalProfile is returned by GET /portal/me.
type PortalProfile struct {
	ParentID     string `json:"parent_id"`
	Name         string `json:"name"`
	MaskedPhone  string `json:"phone"`
	FamilyID     string `json:"family_id"`
	FamilyName   string `json:"family_name"`
	DiscountTier int    `json:"discount_tier"`
}

// PortalChild is a child as seen by their parent.
type PortalChild struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Level  *string `json:"level,omitempty"`
	Active bool    `json:"active"`
}

// KioskCheckInRequest is posted by the attendance kiosk.
type KioskCheckInRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// KioskCheckInResponse confirms a check-in.
type KioskCheckInResponse struct {
	Attendance  *models.Attendance `json:"attendance"`
	StudentName string             `json:"student_name"`
}
