package models

import "time"

// Schedule is one recurring weekly lesson of the base template.
type Schedule struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Active      bool      `db:"active" json:"active"`
	StudentName string    `db:"student_name" json:"student_name,omitempty"`
	TeacherName string    `db:"teacher_name" json:"teacher_name,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	TeacherID string
	StudentID string
	DayOfWeek *int
	Active    *bool
}

// BoardEntry positions a schedule on the live board's 10-minute grid.
type BoardEntry struct {
	Schedule
	BoardRow int `json:"board_row"`
	RowSpan  int `json:"row_span"`
}
