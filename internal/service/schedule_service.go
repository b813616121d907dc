package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/internal/repository"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

// ScheduleRequest is the payload for recurring schedule writes.
type ScheduleRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Active    *bool  `json:"active"`
}

// ScheduleService manages the recurring weekly template.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: validate, logger: logger}
}

// List returns schedules matching the filter.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list schedules")
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	return schedules, nil
}

// Board positions the active schedules of a day on the 10-minute board grid.
func (s *ScheduleService) Board(ctx context.Context, dayOfWeek int) ([]models.BoardEntry, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day_of_week must be between 0 and 6")
	}
	active := true
	schedules, err := s.List(ctx, models.ScheduleFilter{DayOfWeek: &dayOfWeek, Active: &active})
	if err != nil {
		return nil, err
	}
	entries := make([]models.BoardEntry, 0, len(schedules))
	for _, sched := range schedules {
		entries = append(entries, models.BoardEntry{
			Schedule: sched,
			BoardRow: BoardRow(sched.StartTime),
			RowSpan:  BoardRowSpan(sched.StartTime, sched.EndTime),
		})
	}
	return entries, nil
}

// Create adds a recurring lesson. The repository rejects it when the teacher
// already teaches in that time range.
func (s *ScheduleService) Create(ctx context.Context, req ScheduleRequest) (*models.Schedule, error) {
	schedule := &models.Schedule{Active: true}
	if err := s.apply(schedule, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, s.writeError(schedule, err, "failed to create schedule")
	}
	return schedule, nil
}

// Update replaces a recurring lesson.
func (s *ScheduleService) Update(ctx context.Context, id string, req ScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Internal(err, "failed to load schedule")
	}
	if err := s.apply(schedule, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, s.writeError(schedule, err, "failed to update schedule")
	}
	return schedule, nil
}

// Delete removes a recurring lesson. Existing weekly snapshots keep their copy.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Internal(err, "failed to load schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete schedule")
	}
	return nil
}

func (s *ScheduleService) apply(schedule *models.Schedule, req ScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid schedule payload")
	}
	start, err := normalizeClock(req.StartTime)
	if err != nil {
		return appErrors.Validation(err, "invalid start_time")
	}
	end, err := normalizeClock(req.EndTime)
	if err != nil {
		return appErrors.Validation(err, "invalid end_time")
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	schedule.StudentID = req.StudentID
	schedule.TeacherID = req.TeacherID
	schedule.DayOfWeek = *req.DayOfWeek
	schedule.StartTime = start
	schedule.EndTime = end
	if req.Active != nil {
		schedule.Active = *req.Active
	}
	return nil
}

func (s *ScheduleService) writeError(schedule *models.Schedule, err error, message string) error {
	if errors.Is(err, repository.ErrScheduleOverlap) {
		s.logger.Info("schedule overlap rejected",
			zap.String("teacher_id", schedule.TeacherID),
			zap.Int("day_of_week", schedule.DayOfWeek),
			zap.String("start_time", schedule.StartTime))
		return appErrors.Clone(appErrors.ErrDuplicate, "teacher already has a lesson in this time range")
	}
	return appErrors.Internal(err, message)
}
