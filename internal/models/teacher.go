package models

import "time"

// Teacher is an instructor giving one-on-one lessons.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Color     *string   `db:"color" json:"color,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter represents list filters for teachers.
type TeacherFilter struct {
	Search string
	Active *bool
}
