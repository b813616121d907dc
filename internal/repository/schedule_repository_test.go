package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

var scheduleRowColumns = []string{"id", "student_id", "teacher_id", "day_of_week", "start_time", "end_time", "active", "created_at", "updated_at", "student_name", "teacher_name"}

func TestScheduleRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND sc.active = $1 ORDER BY sc.day_of_week ASC, sc.start_time ASC")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns).
			AddRow("sc1", "s1", "t1", 1, "13:00:00", "13:50:00", true, now, now, "Jiwoo", "Park"))

	schedules, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "13:00:00", schedules[0].StartTime)
	assert.Equal(t, "Park", schedules[0].TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateLocksTeacherAndInserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	schedule := &models.Schedule{ID: "sc9", StudentID: "s1", TeacherID: "t1", DayOfWeek: 2, StartTime: "14:00:00", EndTime: "15:00:00", Active: true}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("schedule:t1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("sc.start_time < $3 AND sc.end_time > $4 AND sc.id <> $5")).
		WithArgs("t1", 2, "15:00:00", "14:00:00", "sc9").
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns))
	mock.ExpectExec("INSERT INTO schedules").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), schedule))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateRejectsOverlapInsideTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	schedule := &models.Schedule{StudentID: "s2", TeacherID: "t1", DayOfWeek: 2, StartTime: "14:30:00", EndTime: "15:20:00", Active: true}

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("sc.teacher_id = \\$1").
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns).
			AddRow("sc1", "s1", "t1", 2, "14:00:00", "14:50:00", true, now, now, "Jiwoo", "Park"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), schedule)
	assert.ErrorIs(t, err, ErrScheduleOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateMapsExclusionViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	schedule := &models.Schedule{ID: "sc2", StudentID: "s2", TeacherID: "t1", DayOfWeek: 2, StartTime: "14:30:00", EndTime: "15:20:00", Active: true}

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("sc.teacher_id = \\$1").WillReturnRows(sqlmock.NewRows(scheduleRowColumns))
	mock.ExpectExec("UPDATE schedules SET").WillReturnError(&pq.Error{Code: "23P01"})
	mock.ExpectRollback()

	err := repo.Update(context.Background(), schedule)
	assert.ErrorIs(t, err, ErrScheduleOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInactiveSkipsOverlapCheck(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), &models.Schedule{ID: "sc2", TeacherID: "t1", StartTime: "14:30:00", EndTime: "15:20:00"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
