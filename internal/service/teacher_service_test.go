package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type teacherRepoMock struct {
	teachers map[string]*models.Teacher
}

func (m *teacherRepoMock) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	return nil, nil
}

func (m *teacherRepoMock) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	t, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *teacherRepoMock) Create(ctx context.Context, teacher *models.Teacher) error {
	teacher.ID = "t-new"
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *teacherRepoMock) Update(ctx context.Context, teacher *models.Teacher) error {
	m.teachers[teacher.ID] = teacher
	return nil
}

func TestTeacherServiceCreateAndUpdate(t *testing.T) {
	repo := &teacherRepoMock{teachers: map[string]*models.Teacher{}}
	svc := NewTeacherService(repo, nil, nil)

	color := "#aabbcc"
	teacher, err := svc.Create(context.Background(), TeacherRequest{Name: "Park Seoyeon", Color: &color})
	require.NoError(t, err)
	assert.True(t, teacher.Active)

	inactive := false
	updated, err := svc.Update(context.Background(), teacher.ID, TeacherRequest{Name: "Park Seoyeon", Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Nil(t, updated.Color)
}

func TestTeacherServiceValidation(t *testing.T) {
	svc := NewTeacherService(&teacherRepoMock{teachers: map[string]*models.Teacher{}}, nil, nil)

	bad := "orange"
	_, err := svc.Create(context.Background(), TeacherRequest{Name: "Park", Color: &bad})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), "missing", TeacherRequest{Name: "Park"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	list, err := svc.List(context.Background(), models.TeacherFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
}
