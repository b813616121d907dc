package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
)

type fakeWeeklySrv struct {
	created    bool
	attendance dto.UpdateLessonAttendanceRequest
}

func (f *fakeWeeklySrv) Get(ctx context.Context, weekStart string) (*models.WeeklyScheduleView, error) {
	return &models.WeeklyScheduleView{Details: []models.WeeklyScheduleDetail{}}, nil
}

func (f *fakeWeeklySrv) GetOrCreate(ctx context.Context, req dto.WeeklyScheduleRequest) (*models.WeeklyScheduleView, bool, error) {
	return &models.WeeklyScheduleView{Details: []models.WeeklyScheduleDetail{}}, f.created, nil
}

func (f *fakeWeeklySrv) Confirm(ctx context.Context, id string) (*models.WeeklyScheduleView, error) {
	return &models.WeeklyScheduleView{}, nil
}

func (f *fakeWeeklySrv) UpdateAttendance(ctx context.Context, req dto.UpdateLessonAttendanceRequest) (*models.WeeklyScheduleDetail, error) {
	f.attendance = req
	return &models.WeeklyScheduleDetail{ID: req.ID}, nil
}

func TestWeeklyScheduleHandlerStatusReflectsCreation(t *testing.T) {
	for _, tc := range []struct {
		created bool
		status  int
	}{{true, http.StatusCreated}, {false, http.StatusOK}} {
		h := NewWeeklyScheduleHandler(&fakeWeeklySrv{created: tc.created})
		c, rec := newTestContext()
		c.Request = httptest.NewRequest(http.MethodPost, "/weekly-schedules", bytes.NewBufferString(`{"week_start":"2024-03-04"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.GetOrCreate(c)

		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, tc.created, decodeEnvelope(t, rec).Meta["created"])
	}
}

func TestWeeklyScheduleHandlerAttendanceTakesIDFromBody(t *testing.T) {
	svc := &fakeWeeklySrv{}
	h := NewWeeklyScheduleHandler(svc)

	c, rec := newTestContext()
	c.Request = httptest.NewRequest(http.MethodPut, "/schedules/weekly", bytes.NewBufferString(`{"id":"d1","attendance_status":"attended","notes":"late 5m"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.UpdateAttendance(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "d1", svc.attendance.ID)
	assert.Equal(t, "attended", svc.attendance.AttendanceStatus)
	if assert.NotNil(t, svc.attendance.Notes) {
		assert.Equal(t, "late 5m", *svc.attendance.Notes)
	}
}
