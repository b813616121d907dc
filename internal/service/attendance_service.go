package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/internal/repository"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type attendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
}

type attendanceStudentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// AttendanceService records kiosk check-ins.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentFinder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentFinder, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, validator: validate, logger: logger, now: time.Now}
}

// CheckIn records today's attendance for an active student.
func (s *AttendanceService) CheckIn(ctx context.Context, req dto.KioskCheckInRequest) (*dto.KioskCheckInResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid check-in payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not active")
	}

	now := s.now()
	attendance := &models.Attendance{
		StudentID:      student.ID,
		AttendanceDate: models.NewDate(now.Year(), now.Month(), now.Day()),
		CheckInTime:    now.UTC(),
		Method:         models.CheckInMethodKiosk,
		StudentName:    student.Name,
	}
	if err := s.repo.Create(ctx, attendance); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttendance) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "already checked in today")
		}
		return nil, appErrors.Internal(err, "failed to record attendance")
	}

	s.logger.Info("kiosk check-in", zap.String("student_id", student.ID), zap.String("date", attendance.AttendanceDate.String()))
	return &dto.KioskCheckInResponse{Attendance: attendance, StudentName: student.Name}, nil
}

// ListByDate returns the check-ins recorded on a date. An empty date means today.
func (s *AttendanceService) ListByDate(ctx context.Context, raw string) ([]models.Attendance, error) {
	var date models.Date
	if raw == "" {
		now := s.now()
		date = models.NewDate(now.Year(), now.Month(), now.Day())
	} else {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		date = parsed
	}

	records, err := s.repo.List(ctx, models.AttendanceFilter{Date: &date})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendance")
	}
	if records == nil {
		records = []models.Attendance{}
	}
	return records, nil
}
