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
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type fakeSearcher struct{ q string }

func (f *fakeSearcher) Search(ctx context.Context, q string) ([]models.StudentLookup, error) {
	f.q = q
	if q == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	return []models.StudentLookup{{ID: "s1", Name: "Kim Jiwoo"}}, nil
}

type fakeAttendanceSrv struct{ checkedIn map[string]bool }

func (f *fakeAttendanceSrv) CheckIn(ctx context.Context, req dto.KioskCheckInRequest) (*dto.KioskCheckInResponse, error) {
	if f.checkedIn[req.StudentID] {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "already checked in today")
	}
	f.checkedIn[req.StudentID] = true
	return &dto.KioskCheckInResponse{Attendance: &models.Attendance{StudentID: req.StudentID}}, nil
}

func (f *fakeAttendanceSrv) ListByDate(ctx context.Context, date string) ([]models.Attendance, error) {
	return []models.Attendance{}, nil
}

func TestKioskHandlerSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	h := NewKioskHandler(searcher, &fakeAttendanceSrv{})

	c, rec := newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/kiosk/students?q=Kim", nil)
	h.SearchStudents(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kim", searcher.q)

	c, rec = newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/kiosk/students", nil)
	h.SearchStudents(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKioskHandlerCheckInTwice(t *testing.T) {
	h := NewKioskHandler(&fakeSearcher{}, &fakeAttendanceSrv{checkedIn: map[string]bool{}})

	post := func() *httptest.ResponseRecorder {
		c, rec := newTestContext()
		c.Request = httptest.NewRequest(http.MethodPost, "/kiosk/check-in", bytes.NewBufferString(`{"student_id":"s1"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		h.CheckIn(c)
		return rec
	}

	assert.Equal(t, http.StatusCreated, post().Code)
	rec := post()
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", decodeEnvelope(t, rec).Code)
}
