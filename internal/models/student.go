package models

import "time"

// Student is an enrolled piano student.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FamilyID  *string   `db:"family_id" json:"family_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	BirthDate *Date     `db:"birth_date" json:"birth_date,omitempty"`
	Grade     *string   `db:"grade" json:"grade,omitempty"`
	Level     *string   `db:"level" json:"level,omitempty"`
	Active    bool      `db:"active" json:"active"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter defines query parameters for listing students.
type StudentFilter struct {
	Search   string
	FamilyID string
	Active   *bool
	Page     int
	PageSize int
}

// StudentLookup is the minimal projection returned to the kiosk.
type StudentLookup struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
