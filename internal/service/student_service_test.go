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

type studentRepoMock struct {
	students map[string]*models.Student
	searched string
}

func newStudentRepoMock(students ...models.Student) *studentRepoMock {
	m := &studentRepoMock{students: map[string]*models.Student{}}
	for i := range students {
		s := students[i]
		m.students[s.ID] = &s
	}
	return m
}

func (m *studentRepoMock) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *studentRepoMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (m *studentRepoMock) SearchActive(ctx context.Context, q string, limit int) ([]models.StudentLookup, error) {
	m.searched = q
	return []models.StudentLookup{{ID: "s1", Name: "Kim Jiwoo"}}, nil
}

func (m *studentRepoMock) Create(ctx context.Context, student *models.Student) error {
	student.ID = "new"
	m.students[student.ID] = student
	return nil
}

func (m *studentRepoMock) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = student
	return nil
}

func TestStudentServiceCreate(t *testing.T) {
	repo := newStudentRepoMock()
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), CreateStudentRequest{Name: "  Kim Jiwoo "})
	require.NoError(t, err)
	assert.Equal(t, "Kim Jiwoo", student.Name)
	assert.True(t, student.Active)

	_, err = svc.Create(context.Background(), CreateStudentRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	svc := NewStudentService(newStudentRepoMock(), nil, nil)

	_, err := svc.Update(context.Background(), "missing", UpdateStudentRequest{Name: "x"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateDeactivates(t *testing.T) {
	repo := newStudentRepoMock(models.Student{ID: "s1", Name: "Kim Jiwoo", Active: true})
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{Name: "Kim Jiwoo", Active: false})
	require.NoError(t, err)
	assert.False(t, student.Active)
	assert.False(t, repo.students["s1"].Active)
}

func TestStudentServiceSearch(t *testing.T) {
	repo := newStudentRepoMock()
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Search(context.Background(), "   ")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	list, err := svc.Search(context.Background(), " Ki ")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "Ki", repo.searched)
}

func TestStudentServiceListPagination(t *testing.T) {
	svc := NewStudentService(newStudentRepoMock(models.Student{ID: "s1"}), nil, nil)

	list, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
}
