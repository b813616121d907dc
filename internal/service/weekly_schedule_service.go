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
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type weeklyScheduleRepository interface {
	FindByWeekStart(ctx context.Context, weekStart models.Date) (*models.WeeklySchedule, error)
	FindByID(ctx context.Context, id string) (*models.WeeklySchedule, error)
	ListDetails(ctx context.Context, snapshotID string) ([]models.WeeklyScheduleDetail, error)
	CreateWithDetails(ctx context.Context, snapshot *models.WeeklySchedule, details []models.WeeklyScheduleDetail) (bool, error)
	Confirm(ctx context.Context, id string, at time.Time) (bool, error)
	UpdateAttendance(ctx context.Context, detailID string, status models.LessonStatus, notes *string) (*models.WeeklyScheduleDetail, error)
}

type activeScheduleLister interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
}

// WeeklyScheduleService manages per-week snapshots of the base schedule.
type WeeklyScheduleService struct {
	repo      weeklyScheduleRepository
	schedules activeScheduleLister
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewWeeklyScheduleService constructs the snapshot manager.
func NewWeeklyScheduleService(repo weeklyScheduleRepository, schedules activeScheduleLister, validate *validator.Validate, logger *zap.Logger) *WeeklyScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyScheduleService{
		repo:      repo,
		schedules: schedules,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the snapshot for a week, or a nil snapshot with no details.
func (s *WeeklyScheduleService) Get(ctx context.Context, weekStart string) (*models.WeeklyScheduleView, error) {
	start, err := models.ParseDate(weekStart)
	if err != nil {
		return nil, appErrors.Validation(err, "week_start must be YYYY-MM-DD")
	}
	snapshot, err := s.repo.FindByWeekStart(ctx, start)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.WeeklyScheduleView{Details: []models.WeeklyScheduleDetail{}}, nil
		}
		return nil, appErrors.Internal(err, "failed to load weekly schedule")
	}
	return s.view(ctx, snapshot)
}

// GetOrCreate returns the snapshot for week_start, creating and populating it
// when missing. created reports whether this call inserted the snapshot.
func (s *WeeklyScheduleService) GetOrCreate(ctx context.Context, req dto.WeeklyScheduleRequest) (*models.WeeklyScheduleView, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Validation(err, "invalid weekly schedule payload")
	}
	start, _ := models.ParseDate(req.WeekStart)
	end := start.AddDays(6)
	if req.WeekEnd != "" {
		end, _ = models.ParseDate(req.WeekEnd)
		if end.Before(start.Time) {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "week_end must not be before week_start")
		}
	}

	existing, err := s.repo.FindByWeekStart(ctx, start)
	switch {
	case err == nil:
		if req.Confirm {
			if err := s.confirm(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		view, err := s.view(ctx, existing)
		return view, false, err
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, appErrors.Internal(err, "failed to load weekly schedule")
	}

	details, err := s.seedDetails(ctx, start, req.CopyFromLastWeek)
	if err != nil {
		return nil, false, err
	}

	snapshot := &models.WeeklySchedule{WeekStart: start, WeekEnd: end, Status: models.SnapshotStatusDraft}
	if req.Confirm {
		at := s.now().UTC()
		snapshot.Status = models.SnapshotStatusConfirmed
		snapshot.ConfirmedAt = &at
	}

	created, err := s.repo.CreateWithDetails(ctx, snapshot, details)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to create weekly schedule")
	}
	if created {
		s.logger.Info("weekly schedule created",
			zap.String("snapshot_id", snapshot.ID),
			zap.String("week_start", start.String()),
			zap.Int("details", len(details)),
			zap.Bool("copied", req.CopyFromLastWeek))
		return &models.WeeklyScheduleView{Snapshot: snapshot, Details: details}, true, nil
	}

	// Another request created the same week first.
	winner, err := s.repo.FindByWeekStart(ctx, start)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to reload weekly schedule")
	}
	if req.Confirm {
		if err := s.confirm(ctx, winner); err != nil {
			return nil, false, err
		}
	}
	view, err := s.view(ctx, winner)
	return view, false, err
}

// Confirm moves a draft snapshot to confirmed. Confirming twice is a no-op.
func (s *WeeklyScheduleService) Confirm(ctx context.Context, id string) (*models.WeeklyScheduleView, error) {
	snapshot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weekly schedule not found")
		}
		return nil, appErrors.Internal(err, "failed to load weekly schedule")
	}
	if err := s.confirm(ctx, snapshot); err != nil {
		return nil, err
	}
	return s.view(ctx, snapshot)
}

// UpdateAttendance overwrites the attendance status of one slot.
func (s *WeeklyScheduleService) UpdateAttendance(ctx context.Context, req dto.UpdateLessonAttendanceRequest) (*models.WeeklyScheduleDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid attendance payload")
	}
	detail, err := s.repo.UpdateAttendance(ctx, req.ID, models.LessonStatus(req.AttendanceStatus), req.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson slot not found")
		}
		return nil, appErrors.Internal(err, "failed to update attendance")
	}
	return detail, nil
}

func (s *WeeklyScheduleService) confirm(ctx context.Context, snapshot *models.WeeklySchedule) error {
	if snapshot.Status == models.SnapshotStatusConfirmed {
		return nil
	}
	at := s.now().UTC()
	changed, err := s.repo.Confirm(ctx, snapshot.ID, at)
	if err != nil {
		return appErrors.Internal(err, "failed to confirm weekly schedule")
	}
	if !changed {
		// Confirmed concurrently; keep the stored timestamp.
		current, err := s.repo.FindByID(ctx, snapshot.ID)
		if err != nil {
			return appErrors.Internal(err, "failed to reload weekly schedule")
		}
		*snapshot = *current
		return nil
	}
	snapshot.Status = models.SnapshotStatusConfirmed
	snapshot.ConfirmedAt = &at
	snapshot.UpdatedAt = at
	return nil
}

func (s *WeeklyScheduleService) seedDetails(ctx context.Context, weekStart models.Date, copyLastWeek bool) ([]models.WeeklyScheduleDetail, error) {
	details := []models.WeeklyScheduleDetail{}
	if copyLastWeek {
		previous, err := s.repo.FindByWeekStart(ctx, weekStart.AddDays(-7))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return details, nil
			}
			return nil, appErrors.Internal(err, "failed to load previous week")
		}
		source, err := s.repo.ListDetails(ctx, previous.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load previous week details")
		}
		for _, d := range source {
			details = append(details, models.WeeklyScheduleDetail{
				StudentID:        d.StudentID,
				TeacherID:        d.TeacherID,
				DayOfWeek:        d.DayOfWeek,
				StartTime:        d.StartTime,
				EndTime:          d.EndTime,
				SlotNumber:       d.SlotNumber,
				AttendanceStatus: models.LessonStatusScheduled,
			})
		}
		return details, nil
	}

	active := true
	base, err := s.schedules.List(ctx, models.ScheduleFilter{Active: &active})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load base schedule")
	}
	for _, sched := range base {
		details = append(details, models.WeeklyScheduleDetail{
			StudentID:        sched.StudentID,
			TeacherID:        sched.TeacherID,
			DayOfWeek:        sched.DayOfWeek,
			StartTime:        sched.StartTime,
			EndTime:          sched.EndTime,
			SlotNumber:       LessonSlotNumber(sched.StartTime),
			AttendanceStatus: models.LessonStatusScheduled,
		})
	}
	return details, nil
}

func (s *WeeklyScheduleService) view(ctx context.Context, snapshot *models.WeeklySchedule) (*models.WeeklyScheduleView, error) {
	details, err := s.repo.ListDetails(ctx, snapshot.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load weekly schedule details")
	}
	if details == nil {
		details = []models.WeeklyScheduleDetail{}
	}
	return &models.WeeklyScheduleView{Snapshot: snapshot, Details: details}, nil
}
