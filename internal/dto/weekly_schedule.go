package dto

// WeeklyScheduleRequest asks for the snapshot of a week, creating it if needed.
type WeeklyScheduleRequest struct {
	WeekStart        string `json:"week_start" validate:"required,datetime=2006-01-02"`
	WeekEnd          string `json:"week_end" validate:"omitempty,datetime=2006-01-02"`
	Confirm          bool   `json:"confirm"`
	CopyFromLastWeek bool   `json:"copy_from_last_week"`
}

// UpdateLessonAttendanceRequest overwrites the attendance of one lesson slot.
type UpdateLessonAttendanceRequest struct {
	ID               string  `json:"id" validate:"required"`
	AttendanceStatus string  `json:"attendance_status" validate:"required,oneof=scheduled attended absent cancelled"`
	Notes            *string `json:"notes" validate:"omitempty,max=500"`
}
