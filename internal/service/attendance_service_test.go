package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/internal/repository"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type attendanceRepoFake struct {
	rows       []models.Attendance
	lastFilter models.AttendanceFilter
}

func (f *attendanceRepoFake) Create(ctx context.Context, attendance *models.Attendance) error {
	for _, row := range f.rows {
		if row.StudentID == attendance.StudentID && row.AttendanceDate.Equal(attendance.AttendanceDate.Time) {
			return repository.ErrDuplicateAttendance
		}
	}
	attendance.ID = "att-1"
	f.rows = append(f.rows, *attendance)
	return nil
}

func (f *attendanceRepoFake) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	f.lastFilter = filter
	return nil, nil
}

func newAttendanceFixture() (*AttendanceService, *attendanceRepoFake) {
	repo := &attendanceRepoFake{}
	students := newStudentRepoMock(
		models.Student{ID: "s1", Name: "Kim Jiwoo", Active: true},
		models.Student{ID: "s2", Name: "Lee Dohyun", Active: false},
	)
	svc := NewAttendanceService(repo, students, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 15, 4, 0, 0, time.UTC) }
	return svc, repo
}

func TestAttendanceCheckIn(t *testing.T) {
	svc, repo := newAttendanceFixture()

	resp, err := svc.CheckIn(context.Background(), dto.KioskCheckInRequest{StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "Kim Jiwoo", resp.StudentName)
	assert.Equal(t, "2024-03-20", resp.Attendance.AttendanceDate.String())
	assert.Equal(t, models.CheckInMethodKiosk, resp.Attendance.Method)
	assert.Len(t, repo.rows, 1)
}

func TestAttendanceCheckInTwiceSameDay(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.CheckIn(context.Background(), dto.KioskCheckInRequest{StudentID: "s1"})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), dto.KioskCheckInRequest{StudentID: "s1"})
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
}

func TestAttendanceCheckInRejections(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.CheckIn(context.Background(), dto.KioskCheckInRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CheckIn(context.Background(), dto.KioskCheckInRequest{StudentID: "ghost"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.CheckIn(context.Background(), dto.KioskCheckInRequest{StudentID: "s2"})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAttendanceListByDate(t *testing.T) {
	svc, repo := newAttendanceFixture()

	records, err := svc.ListByDate(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, records)
	require.NotNil(t, repo.lastFilter.Date)
	assert.Equal(t, "2024-03-20", repo.lastFilter.Date.String())

	_, err = svc.ListByDate(context.Background(), "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", repo.lastFilter.Date.String())

	_, err = svc.ListByDate(context.Background(), "March 5")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
