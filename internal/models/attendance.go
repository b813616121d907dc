package models

import "time"

// Attendance check-in methods.
const (
	CheckInMethodKiosk = "kiosk"
	CheckInMethodAdmin = "admin"
)

// Attendance is a kiosk check-in. One row per student per day.
type Attendance struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	AttendanceDate Date      `db:"attendance_date" json:"attendance_date"`
	CheckInTime    time.Time `db:"check_in_time" json:"check_in_time"`
	Method         string    `db:"method" json:"method"`
	StudentName    string    `db:"student_name" json:"student_name,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	Date      *Date
	StudentID string
	From      *Date
	To        *Date
}
