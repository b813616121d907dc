package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/database"
)

// WeeklyScheduleRepository persists weekly snapshots and their lesson slots.
type WeeklyScheduleRepository struct {
	db *sqlx.DB
}

// NewWeeklyScheduleRepository constructs a WeeklyScheduleRepository.
func NewWeeklyScheduleRepository(db *sqlx.DB) *WeeklyScheduleRepository {
	return &WeeklyScheduleRepository{db: db}
}

const (
	snapshotColumns = `id, week_start, week_end, status, confirmed_at, created_at, updated_at`
	detailColumns   = `id, snapshot_id, student_id, teacher_id, day_of_week, start_time, end_time, slot_number, attendance_status, notes, created_at, updated_at`
)

// FindByWeekStart returns the snapshot of a week or sql.ErrNoRows.
func (r *WeeklyScheduleRepository) FindByWeekStart(ctx context.Context, weekStart models.Date) (*models.WeeklySchedule, error) {
	query := `SELECT ` + snapshotColumns + ` FROM weekly_schedules WHERE week_start = $1`
	var snapshot models.WeeklySchedule
	if err := r.db.GetContext(ctx, &snapshot, query, weekStart); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find weekly schedule: %w", err)
	}
	return &snapshot, nil
}

// FindByID returns a snapshot by id.
func (r *WeeklyScheduleRepository) FindByID(ctx context.Context, id string) (*models.WeeklySchedule, error) {
	query := `SELECT ` + snapshotColumns + ` FROM weekly_schedules WHERE id = $1`
	var snapshot models.WeeklySchedule
	if err := r.db.GetContext(ctx, &snapshot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find weekly schedule by id: %w", err)
	}
	return &snapshot, nil
}

// ListDetails returns the lesson slots of a snapshot.
func (r *WeeklyScheduleRepository) ListDetails(ctx context.Context, snapshotID string) ([]models.WeeklyScheduleDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM weekly_schedule_details WHERE snapshot_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	details := []models.WeeklyScheduleDetail{}
	if err := r.db.SelectContext(ctx, &details, query, snapshotID); err != nil {
		return nil, fmt.Errorf("list weekly schedule details: %w", err)
	}
	return details, nil
}

// CreateWithDetails inserts the snapshot and its slots atomically. When a
// snapshot for the same week_start already exists nothing is written and
// created is false.
func (r *WeeklyScheduleRepository) CreateWithDetails(ctx context.Context, snapshot *models.WeeklySchedule, details []models.WeeklyScheduleDetail) (created bool, err error) {
	now := time.Now().UTC()
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	snapshot.CreatedAt = now
	snapshot.UpdatedAt = now

	err = database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insertSnapshot = `INSERT INTO weekly_schedules (id, week_start, week_end, status, confirmed_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (week_start) DO NOTHING RETURNING id`
		var id string
		row := tx.QueryRowxContext(ctx, insertSnapshot, snapshot.ID, snapshot.WeekStart, snapshot.WeekEnd, snapshot.Status, snapshot.ConfirmedAt, snapshot.CreatedAt, snapshot.UpdatedAt)
		if scanErr := row.Scan(&id); scanErr != nil {
			if scanErr == sql.ErrNoRows {
				return nil
			}
			return fmt.Errorf("create weekly schedule: %w", scanErr)
		}
		created = true

		const insertDetail = `INSERT INTO weekly_schedule_details (id, snapshot_id, student_id, teacher_id, day_of_week, start_time, end_time, slot_number, attendance_status, notes, created_at, updated_at)
        VALUES (:id, :snapshot_id, :student_id, :teacher_id, :day_of_week, :start_time, :end_time, :slot_number, :attendance_status, :notes, :created_at, :updated_at)`
		for i := range details {
			detail := &details[i]
			if detail.ID == "" {
				detail.ID = uuid.NewString()
			}
			detail.SnapshotID = id
			detail.CreatedAt = now
			detail.UpdatedAt = now
			if _, execErr := tx.NamedExecContext(ctx, insertDetail, detail); execErr != nil {
				return fmt.Errorf("create weekly schedule detail: %w", execErr)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Confirm moves a draft snapshot to confirmed. Already confirmed snapshots are
// left untouched and false is returned.
func (r *WeeklyScheduleRepository) Confirm(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE weekly_schedules SET status = $2, confirmed_at = $3, updated_at = $3 WHERE id = $1 AND status <> $2`
	res, err := r.db.ExecContext(ctx, query, id, models.SnapshotStatusConfirmed, at)
	if err != nil {
		return false, fmt.Errorf("confirm weekly schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("confirm weekly schedule rows: %w", err)
	}
	return affected > 0, nil
}

// UpdateAttendance overwrites the attendance status and notes of one slot.
func (r *WeeklyScheduleRepository) UpdateAttendance(ctx context.Context, detailID string, status models.LessonStatus, notes *string) (*models.WeeklyScheduleDetail, error) {
	query := `UPDATE weekly_schedule_details SET attendance_status = $2, notes = COALESCE($3, notes), updated_at = $4 WHERE id = $1 RETURNING ` + detailColumns
	var detail models.WeeklyScheduleDetail
	if err := r.db.GetContext(ctx, &detail, query, detailID, status, notes, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update attendance status: %w", err)
	}
	return &detail, nil
}
