package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	SearchActive(ctx context.Context, q string, limit int) ([]models.StudentLookup, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FamilyID  *string      `json:"family_id"`
	Name      string       `json:"name" validate:"required,max=100"`
	BirthDate *models.Date `json:"birth_date"`
	Grade     *string      `json:"grade" validate:"omitempty,max=30"`
	Level     *string      `json:"level" validate:"omitempty,max=30"`
	Notes     *string      `json:"notes" validate:"omitempty,max=500"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	FamilyID  *string      `json:"family_id"`
	Name      string       `json:"name" validate:"required,max=100"`
	BirthDate *models.Date `json:"birth_date"`
	Grade     *string      `json:"grade" validate:"omitempty,max=30"`
	Level     *string      `json:"level" validate:"omitempty,max=30"`
	Notes     *string      `json:"notes" validate:"omitempty,max=500"`
	Active    bool         `json:"active"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	page, size, _ := models.NormalizePage(filter.Page, filter.PageSize)
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Search returns active students for the kiosk name lookup.
func (s *StudentService) Search(ctx context.Context, q string) ([]models.StudentLookup, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	students, err := s.repo.SearchActive(ctx, q, 10)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search students")
	}
	if students == nil {
		students = []models.StudentLookup{}
	}
	return students, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	student := &models.Student{
		FamilyID:  req.FamilyID,
		Name:      strings.TrimSpace(req.Name),
		BirthDate: req.BirthDate,
		Grade:     req.Grade,
		Level:     req.Level,
		Notes:     req.Notes,
		Active:    true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student.FamilyID = req.FamilyID
	student.Name = strings.TrimSpace(req.Name)
	student.BirthDate = req.BirthDate
	student.Grade = req.Grade
	student.Level = req.Level
	student.Notes = req.Notes
	student.Active = req.Active
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to update student")
	}
	return student, nil
}
