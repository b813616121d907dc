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

var studentRowColumns = []string{"id", "family_id", "name", "birth_date", "grade", "level", "active", "notes", "created_at", "updated_at"}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("s1", "f1", "Jiwoo", "2015-03-02", nil, nil, true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, family_id, name, birth_date, grade, level, active, notes, created_at, updated_at FROM students WHERE 1=1 AND active = $1 AND LOWER(name) LIKE $2 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs(true, "%ji%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1 AND active = $1 AND LOWER(name) LIKE $2")).
		WithArgs(true, "%ji%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active := true
	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Ji", Active: &active})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2015-03-02", students[0].BirthDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySearchActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM students WHERE active = TRUE AND LOWER(name) LIKE $1 ORDER BY name ASC LIMIT $2")).
		WithArgs("%kim%", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("s1", "Kim Minji"))

	students, err := repo.SearchActive(context.Background(), "Kim", 10)
	require.NoError(t, err)
	assert.Equal(t, []models.StudentLookup{{ID: "s1", Name: "Kim Minji"}}, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), nil, "Jiwoo", nil, nil, nil, true, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{Name: "Jiwoo", Active: true}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
