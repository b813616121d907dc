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
	"github.com/noah-isme/piano-academy-api/pkg/database"
)

// ErrScheduleOverlap is returned when an active schedule would share time
// with another active lesson of the same teacher on the same day.
var ErrScheduleOverlap = errors.New("schedule overlaps another lesson of the teacher")

// ScheduleRepository provides persistence for the recurring base schedule.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleSelect = `SELECT sc.id, sc.student_id, sc.teacher_id, sc.day_of_week, sc.start_time, sc.end_time, sc.active, sc.created_at, sc.updated_at,
        COALESCE(st.name, '') AS student_name, COALESCE(t.name, '') AS teacher_name
        FROM schedules sc LEFT JOIN students st ON st.id = sc.student_id LEFT JOIN teachers t ON t.id = sc.teacher_id`

// List returns schedules ordered by day and start time.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("sc.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("sc.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.DayOfWeek != nil {
		conditions = append(conditions, fmt.Sprintf("sc.day_of_week = $%d", len(args)+1))
		args = append(args, *filter.DayOfWeek)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("sc.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	query := scheduleSelect + " WHERE 1=1"
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sc.day_of_week ASC, sc.start_time ASC"

	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// ListActive returns every active schedule, the seed of a new weekly snapshot.
func (r *ScheduleRepository) ListActive(ctx context.Context) ([]models.Schedule, error) {
	active := true
	return r.List(ctx, models.ScheduleFilter{Active: &active})
}

// FindByID loads a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	var sched models.Schedule
	if err := r.db.GetContext(ctx, &sched, scheduleSelect+" WHERE sc.id = $1", id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// findOverlapping returns active schedules of a teacher on a day whose
// [start, end) interval intersects the given one.
func findOverlapping(ctx context.Context, q sqlx.QueryerContext, teacherID string, dayOfWeek int, start, end, excludeID string) ([]models.Schedule, error) {
	query := scheduleSelect + ` WHERE sc.teacher_id = $1 AND sc.day_of_week = $2 AND sc.active = TRUE AND sc.start_time < $3 AND sc.end_time > $4`
	args := []interface{}{teacherID, dayOfWeek, end, start}
	if excludeID != "" {
		query += " AND sc.id <> $5"
		args = append(args, excludeID)
	}
	var schedules []models.Schedule
	if err := sqlx.SelectContext(ctx, q, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("find overlapping schedules: %w", err)
	}
	return schedules, nil
}

// Create stores a new schedule record. The overlap check and the insert run
// in one transaction holding the teacher's advisory lock.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, student_id, teacher_id, day_of_week, start_time, end_time, active, created_at, updated_at) VALUES (:id, :student_id, :teacher_id, :day_of_week, :start_time, :end_time, :active, :created_at, :updated_at)`
	if err := r.writeExclusive(ctx, schedule, query); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies a schedule record under the same guard as Create.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET student_id = :student_id, teacher_id = :teacher_id, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, active = :active, updated_at = :updated_at WHERE id = :id`
	if err := r.writeExclusive(ctx, schedule, query); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// writeExclusive serialises writers per teacher with pg_advisory_xact_lock so
// two requests cannot both pass the overlap check. The schedules_teacher_no_overlap
// exclusion constraint backs it up for writers that skip this path.
func (r *ScheduleRepository) writeExclusive(ctx context.Context, schedule *models.Schedule, query string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if schedule.Active {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "schedule:"+schedule.TeacherID); err != nil {
				return fmt.Errorf("lock teacher: %w", err)
			}
			conflicts, err := findOverlapping(ctx, tx, schedule.TeacherID, schedule.DayOfWeek, schedule.StartTime, schedule.EndTime, schedule.ID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return ErrScheduleOverlap
			}
		}
		if _, err := tx.NamedExecContext(ctx, query, schedule); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23P01" {
				return ErrScheduleOverlap
			}
			return err
		}
		return nil
	})
}

// Delete removes a schedule by id.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
