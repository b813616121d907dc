package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

func TestFamilyRepositoryCreateWithMembersCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFamilyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO families").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO parents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO parent_students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	family := &models.Family{Name: "Kim", DiscountTier: 1}
	parent := &models.Parent{ID: "p1", Name: "Kim Mother"}
	student := &models.Student{ID: "s1", Name: "Kim Jiwoo", Active: true}
	err := repo.CreateWithMembers(context.Background(), family, []*models.Parent{parent}, []*models.Student{student},
		[]models.ParentStudent{{ParentID: "p1", StudentID: "s1", Relationship: "mother"}})
	require.NoError(t, err)
	assert.Equal(t, family.ID, parent.FamilyID)
	require.NotNil(t, student.FamilyID)
	assert.Equal(t, family.ID, *student.FamilyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepositoryCreateWithMembersRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFamilyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO families").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO parents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").WillReturnError(errors.New("constraint violated"))
	mock.ExpectRollback()

	err := repo.CreateWithMembers(context.Background(), &models.Family{Name: "Lee"},
		[]*models.Parent{{Name: "Lee Father"}}, []*models.Student{{Name: "Lee Minho"}}, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepositoryFindByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFamilyRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM families f JOIN students s ON s.family_id = f.id WHERE s.id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "discount_tier", "notes", "created_at", "updated_at"}).
			AddRow("f1", "Kim", 2, nil, now, now))

	family, err := repo.FindByStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, family.DiscountTier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepositoryUpdateDiscountTierMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFamilyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE families SET discount_tier = $2")).
		WithArgs("missing", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDiscountTier(context.Background(), "missing", 1)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepositoryParentHasStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFamilyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM parent_students WHERE parent_id = $1 AND student_id = $2 LIMIT 1")).
		WithArgs("p1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	ok, err := repo.ParentHasStudent(context.Background(), "p1", "s1")
	require.NoError(t, err)
	assert.True(t, ok)
}
