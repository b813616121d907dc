package models

import "time"

// SnapshotStatus tracks the lifecycle of a weekly schedule snapshot.
type SnapshotStatus string

const (
	SnapshotStatusDraft     SnapshotStatus = "draft"
	SnapshotStatusConfirmed SnapshotStatus = "confirmed"
)

// LessonStatus is the attendance state of one slot in a snapshot.
type LessonStatus string

const (
	LessonStatusScheduled LessonStatus = "scheduled"
	LessonStatusAttended  LessonStatus = "attended"
	LessonStatusAbsent    LessonStatus = "absent"
	LessonStatusCancelled LessonStatus = "cancelled"
)

// WeeklySchedule is the confirmable per-week copy of the base schedule.
type WeeklySchedule struct {
	ID          string         `db:"id" json:"id"`
	WeekStart   Date           `db:"week_start" json:"week_start"`
	WeekEnd     Date           `db:"week_end" json:"week_end"`
	Status      SnapshotStatus `db:"status" json:"status"`
	ConfirmedAt *time.Time     `db:"confirmed_at" json:"confirmed_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// WeeklyScheduleDetail is one lesson slot inside a snapshot.
type WeeklyScheduleDetail struct {
	ID               string       `db:"id" json:"id"`
	SnapshotID       string       `db:"snapshot_id" json:"snapshot_id"`
	StudentID        string       `db:"student_id" json:"student_id"`
	TeacherID        string       `db:"teacher_id" json:"teacher_id"`
	DayOfWeek        int          `db:"day_of_week" json:"day_of_week"`
	StartTime        string       `db:"start_time" json:"start_time"`
	EndTime          string       `db:"end_time" json:"end_time"`
	SlotNumber       int          `db:"slot_number" json:"slot_number"`
	AttendanceStatus LessonStatus `db:"attendance_status" json:"attendance_status"`
	Notes            *string      `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// WeeklyScheduleView is returned by the weekly schedule endpoints.
type WeeklyScheduleView struct {
	Snapshot *WeeklySchedule        `json:"snapshot"`
	Details  []WeeklyScheduleDetail `json:"details"`
}
