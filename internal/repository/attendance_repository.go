package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

// ErrDuplicateAttendance is returned when a student already checked in on a date.
var ErrDuplicateAttendance = errors.New("attendance already recorded")

// AttendanceRepository persists kiosk check-ins.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts a check-in. The (student_id, attendance_date) unique index
// rejects a second check-in on the same date.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	if attendance.CreatedAt.IsZero() {
		attendance.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendances (id, student_id, attendance_date, check_in_time, method, created_at) VALUES (:id, :student_id, :attendance_date, :check_in_time, :method, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateAttendance
		}
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// List returns check-ins matching the filter with student names.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	var conditions []string
	var args []interface{}

	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("a.attendance_date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.attendance_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.attendance_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	query := `SELECT a.id, a.student_id, a.attendance_date, a.check_in_time, a.method, a.created_at, COALESCE(s.name, '') AS student_name
        FROM attendances a LEFT JOIN students s ON s.id = a.student_id WHERE 1=1`
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.attendance_date DESC, a.check_in_time DESC"

	attendances := []models.Attendance{}
	if err := r.db.SelectContext(ctx, &attendances, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return attendances, nil
}
