package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type weeklyRepoFake struct {
	mu        sync.Mutex
	snapshots map[string]*models.WeeklySchedule
	details   map[string][]models.WeeklyScheduleDetail
	seq       int
	confirms  int
	// beforeCreate runs inside CreateWithDetails to simulate a concurrent writer.
	beforeCreate func()
}

func newWeeklyRepoFake() *weeklyRepoFake {
	return &weeklyRepoFake{
		snapshots: map[string]*models.WeeklySchedule{},
		details:   map[string][]models.WeeklyScheduleDetail{},
	}
}

func (f *weeklyRepoFake) FindByWeekStart(ctx context.Context, weekStart models.Date) (*models.WeeklySchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.snapshots {
		if s.WeekStart.Equal(weekStart.Time) {
			clone := *s
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *weeklyRepoFake) FindByID(ctx context.Context, id string) (*models.WeeklySchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.snapshots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *weeklyRepoFake) ListDetails(ctx context.Context, snapshotID string) ([]models.WeeklyScheduleDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.WeeklyScheduleDetail{}, f.details[snapshotID]...), nil
}

func (f *weeklyRepoFake) CreateWithDetails(ctx context.Context, snapshot *models.WeeklySchedule, details []models.WeeklyScheduleDetail) (bool, error) {
	if f.beforeCreate != nil {
		hook := f.beforeCreate
		f.beforeCreate = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.snapshots {
		if s.WeekStart.Equal(snapshot.WeekStart.Time) {
			return false, nil
		}
	}
	f.seq++
	snapshot.ID = fmt.Sprintf("ws-%d", f.seq)
	for i := range details {
		details[i].ID = fmt.Sprintf("%s-d%d", snapshot.ID, i+1)
		details[i].SnapshotID = snapshot.ID
	}
	clone := *snapshot
	f.snapshots[snapshot.ID] = &clone
	f.details[snapshot.ID] = append([]models.WeeklyScheduleDetail{}, details...)
	return true, nil
}

func (f *weeklyRepoFake) Confirm(ctx context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.snapshots[id]
	if !ok || s.Status == models.SnapshotStatusConfirmed {
		return false, nil
	}
	f.confirms++
	s.Status = models.SnapshotStatusConfirmed
	s.ConfirmedAt = &at
	return true, nil
}

func (f *weeklyRepoFake) UpdateAttendance(ctx context.Context, detailID string, status models.LessonStatus, notes *string) (*models.WeeklyScheduleDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, list := range f.details {
		for i := range list {
			if list[i].ID == detailID {
				list[i].AttendanceStatus = status
				if notes != nil {
					list[i].Notes = notes
				}
				f.details[id] = list
				detail := list[i]
				return &detail, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

type scheduleListerFake struct {
	items []models.Schedule
}

func (f scheduleListerFake) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	return f.items, nil
}

func baseSchedules() scheduleListerFake {
	return scheduleListerFake{items: []models.Schedule{
		{ID: "sc1", StudentID: "s1", TeacherID: "t1", DayOfWeek: 1, StartTime: "13:00:00", EndTime: "13:50:00", Active: true},
		{ID: "sc2", StudentID: "s2", TeacherID: "t1", DayOfWeek: 1, StartTime: "14:10:00", EndTime: "15:00:00", Active: true},
		{ID: "sc3", StudentID: "s3", TeacherID: "t2", DayOfWeek: 4, StartTime: "20:00:00", EndTime: "20:50:00", Active: true},
	}}
}

func TestWeeklyScheduleGetMissingWeek(t *testing.T) {
	svc := NewWeeklyScheduleService(newWeeklyRepoFake(), baseSchedules(), nil, nil)

	view, err := svc.Get(context.Background(), "2024-03-04")
	require.NoError(t, err)
	assert.Nil(t, view.Snapshot)
	assert.Empty(t, view.Details)

	_, err = svc.Get(context.Background(), "03/04/2024")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestWeeklyScheduleCreateFromBaseSchedule(t *testing.T) {
	repo := newWeeklyRepoFake()
	svc := NewWeeklyScheduleService(repo, baseSchedules(), nil, nil)

	view, created, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-04"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.SnapshotStatusDraft, view.Snapshot.Status)
	assert.Nil(t, view.Snapshot.ConfirmedAt)
	assert.Equal(t, "2024-03-10", view.Snapshot.WeekEnd.String())
	require.Len(t, view.Details, 3)
	assert.Equal(t, 1, view.Details[0].SlotNumber)
	assert.Equal(t, 2, view.Details[1].SlotNumber)
	assert.Equal(t, 6, view.Details[2].SlotNumber)
	for _, d := range view.Details {
		assert.Equal(t, models.LessonStatusScheduled, d.AttendanceStatus)
	}

	again, created, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-04", CopyFromLastWeek: true})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, view.Snapshot.ID, again.Snapshot.ID)
	assert.Len(t, again.Details, 3)
}

func TestWeeklyScheduleCopyFromLastWeekResetsAttendance(t *testing.T) {
	repo := newWeeklyRepoFake()
	svc := NewWeeklyScheduleService(repo, baseSchedules(), nil, nil)

	first, _, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-04"})
	require.NoError(t, err)
	_, err = svc.UpdateAttendance(context.Background(), dto.UpdateLessonAttendanceRequest{ID: first.Details[0].ID, AttendanceStatus: "absent"})
	require.NoError(t, err)

	next, created, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-11", CopyFromLastWeek: true})
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, next.Details, 3)
	for _, d := range next.Details {
		assert.Equal(t, models.LessonStatusScheduled, d.AttendanceStatus)
		assert.Equal(t, next.Snapshot.ID, d.SnapshotID)
	}
}

func TestWeeklyScheduleCopyWithoutPreviousWeekIsEmpty(t *testing.T) {
	svc := NewWeeklyScheduleService(newWeeklyRepoFake(), baseSchedules(), nil, nil)

	view, created, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-04", CopyFromLastWeek: true})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, view.Details)
}

func TestWeeklyScheduleConfirmRatchet(t *testing.T) {
	repo := newWeeklyRepoFake()
	svc := NewWeeklyScheduleService(repo, baseSchedules(), nil, nil)
	fixed := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	view, _, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-04"})
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), view.Snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SnapshotStatusConfirmed, confirmed.Snapshot.Status)
	require.NotNil(t, confirmed.Snapshot.ConfirmedAt)
	assert.True(t, fixed.Equal(*confirmed.Snapshot.ConfirmedAt))

	svc.now = func() time.Time { return fixed.Add(time.Hour) }
	again, err := svc.Confirm(context.Background(), view.Snapshot.ID)
	require.NoError(t, err)
	assert.True(t, fixed.Equal(*again.Snapshot.ConfirmedAt))
	assert.Equal(t, 1, repo.confirms)

	_, err = svc.Confirm(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestWeeklyScheduleCreateConfirmedDirectly(t *testing.T) {
	svc := NewWeeklyScheduleService(newWeeklyRepoFake(), baseSchedules(), nil, nil)

	view, created, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-04", WeekEnd: "2024-03-08", Confirm: true})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.SnapshotStatusConfirmed, view.Snapshot.Status)
	assert.NotNil(t, view.Snapshot.ConfirmedAt)
	assert.Equal(t, "2024-03-08", view.Snapshot.WeekEnd.String())
}

func TestWeeklyScheduleLostRaceReturnsWinner(t *testing.T) {
	repo := newWeeklyRepoFake()
	svc := NewWeeklyScheduleService(repo, baseSchedules(), nil, nil)
	repo.beforeCreate = func() {
		_, _ = repo.CreateWithDetails(context.Background(), &models.WeeklySchedule{
			WeekStart: models.NewDate(2024, 3, 4),
			WeekEnd:   models.NewDate(2024, 3, 10),
			Status:    models.SnapshotStatusDraft,
		}, nil)
	}

	view, created, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-04"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "ws-1", view.Snapshot.ID)
	assert.Empty(t, view.Details)
	assert.Len(t, repo.snapshots, 1)
}

func TestWeeklyScheduleUpdateAttendanceAnyDirection(t *testing.T) {
	repo := newWeeklyRepoFake()
	svc := NewWeeklyScheduleService(repo, baseSchedules(), nil, nil)
	view, _, err := svc.GetOrCreate(context.Background(), dto.WeeklyScheduleRequest{WeekStart: "2024-03-04"})
	require.NoError(t, err)
	id := view.Details[0].ID

	for _, status := range []string{"attended", "cancelled", "scheduled"} {
		detail, err := svc.UpdateAttendance(context.Background(), dto.UpdateLessonAttendanceRequest{ID: id, AttendanceStatus: status})
		require.NoError(t, err)
		assert.Equal(t, models.LessonStatus(status), detail.AttendanceStatus)
	}

	_, err = svc.UpdateAttendance(context.Background(), dto.UpdateLessonAttendanceRequest{ID: id, AttendanceStatus: "late"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateAttendance(context.Background(), dto.UpdateLessonAttendanceRequest{ID: "nope", AttendanceStatus: "absent"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
