package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

func TestWeeklyScheduleRepositoryCreateWithDetails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (week_start) DO NOTHING RETURNING id")).
		WithArgs(sqlmock.AnyArg(), "2025-01-06", "2025-01-12", models.SnapshotStatusDraft, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w1"))
	mock.ExpectExec("INSERT INTO weekly_schedule_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO weekly_schedule_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	snapshot := &models.WeeklySchedule{ID: "w1", WeekStart: models.NewDate(2025, 1, 6), WeekEnd: models.NewDate(2025, 1, 12), Status: models.SnapshotStatusDraft}
	details := []models.WeeklyScheduleDetail{
		{StudentID: "s1", TeacherID: "t1", DayOfWeek: 1, StartTime: "13:00:00", EndTime: "13:50:00", SlotNumber: 1, AttendanceStatus: models.LessonStatusScheduled},
		{StudentID: "s2", TeacherID: "t1", DayOfWeek: 1, StartTime: "14:10:00", EndTime: "15:00:00", SlotNumber: 2, AttendanceStatus: models.LessonStatusScheduled},
	}
	created, err := repo.CreateWithDetails(context.Background(), snapshot, details)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "w1", details[0].SnapshotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyScheduleRepositoryCreateLosesRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (week_start) DO NOTHING RETURNING id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	snapshot := &models.WeeklySchedule{WeekStart: models.NewDate(2025, 1, 6), WeekEnd: models.NewDate(2025, 1, 12), Status: models.SnapshotStatusDraft}
	created, err := repo.CreateWithDetails(context.Background(), snapshot, []models.WeeklyScheduleDetail{{StudentID: "s1"}})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyScheduleRepositoryConfirmIsConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	at := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE weekly_schedules SET status = $2, confirmed_at = $3, updated_at = $3 WHERE id = $1 AND status <> $2")).
		WithArgs("w1", models.SnapshotStatusConfirmed, at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.Confirm(context.Background(), "w1", at)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyScheduleRepositoryUpdateAttendance(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	now := time.Now()
	notes := "left early"
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE weekly_schedule_details SET attendance_status = $2")).
		WithArgs("d1", models.LessonStatusAttended, notes, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "snapshot_id", "student_id", "teacher_id", "day_of_week", "start_time", "end_time", "slot_number", "attendance_status", "notes", "created_at", "updated_at"}).
			AddRow("d1", "w1", "s1", "t1", 1, "13:00:00", "13:50:00", 1, "attended", notes, now, now))

	detail, err := repo.UpdateAttendance(context.Background(), "d1", models.LessonStatusAttended, &notes)
	require.NoError(t, err)
	assert.Equal(t, models.LessonStatusAttended, detail.AttendanceStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
