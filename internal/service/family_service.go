package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
	"github.com/noah-isme/piano-academy-api/pkg/fieldcrypto"
)

type familyRepository interface {
	CreateWithMembers(ctx context.Context, family *models.Family, parents []*models.Parent, students []*models.Student, links []models.ParentStudent) error
	FindByID(ctx context.Context, id string) (*models.Family, error)
	ListParents(ctx context.Context, familyID string) ([]models.Parent, error)
	UpdateDiscountTier(ctx context.Context, id string, tier int) error
	FindParentByPhoneHash(ctx context.Context, hash string) (*models.Parent, error)
}

type familyStudentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// FieldCipher seals phone numbers and derives their lookup hash.
type FieldCipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(encoded string) (string, error)
	LookupHash(phone string) string
}

// FamilyService registers households and maintains their discount tier.
type FamilyService struct {
	repo      familyRepository
	students  familyStudentLister
	cipher    FieldCipher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFamilyService constructs a FamilyService.
func NewFamilyService(repo familyRepository, students familyStudentLister, cipher FieldCipher, validate *validator.Validate, logger *zap.Logger) *FamilyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FamilyService{repo: repo, students: students, cipher: cipher, validator: validate, logger: logger}
}

// Create stores the family, parents, students and their links atomically.
func (s *FamilyService) Create(ctx context.Context, req dto.CreateFamilyRequest) (*dto.FamilyResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid family payload")
	}

	family := &models.Family{ID: uuid.NewString(), Name: req.Name, DiscountTier: req.DiscountTier, Notes: req.Notes}
	parents := make([]*models.Parent, 0, len(req.Parents))
	seen := make(map[string]struct{}, len(req.Parents))
	for _, input := range req.Parents {
		hash := s.cipher.LookupHash(input.Phone)
		if _, dup := seen[hash]; dup {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "parent phone listed twice")
		}
		seen[hash] = struct{}{}

		existing, err := s.repo.FindParentByPhoneHash(ctx, hash)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to check parent phone")
		}
		if existing != nil {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "parent phone already registered")
		}

		encrypted, err := s.cipher.Encrypt(fieldcrypto.NormalizePhone(input.Phone))
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encrypt phone")
		}
		pinHash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to hash pin")
		}
		parents = append(parents, &models.Parent{
			ID:             uuid.NewString(),
			Name:           input.Name,
			PhoneEncrypted: encrypted,
			PhoneHash:      hash,
			PINHash:        string(pinHash),
			Phone:          input.Phone,
		})
	}

	students := make([]*models.Student, 0, len(req.Students))
	for _, input := range req.Students {
		students = append(students, &models.Student{
			ID:        uuid.NewString(),
			Name:      input.Name,
			BirthDate: input.BirthDate,
			Grade:     input.Grade,
			Level:     input.Level,
			Notes:     input.Notes,
			Active:    true,
		})
	}

	var links []models.ParentStudent
	for i, parent := range parents {
		relationship := req.Parents[i].Relationship
		if relationship == "" {
			relationship = "guardian"
		}
		for _, student := range students {
			links = append(links, models.ParentStudent{ParentID: parent.ID, StudentID: student.ID, Relationship: relationship})
		}
	}

	if err := s.repo.CreateWithMembers(ctx, family, parents, students, links); err != nil {
		return nil, appErrors.Internal(err, "failed to create family")
	}

	resp := &dto.FamilyResponse{Family: *family, Parents: make([]dto.ParentView, 0, len(parents)), Students: make([]models.Student, 0, len(students))}
	for _, parent := range parents {
		resp.Parents = append(resp.Parents, dto.ParentView{ID: parent.ID, Name: parent.Name, MaskedPhone: fieldcrypto.MaskPhone(parent.Phone)})
	}
	for _, student := range students {
		resp.Students = append(resp.Students, *student)
	}
	return resp, nil
}

// Get returns a family with its parents (phones masked) and students.
func (s *FamilyService) Get(ctx context.Context, id string) (*dto.FamilyResponse, error) {
	family, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "family not found")
		}
		return nil, appErrors.Internal(err, "failed to load family")
	}
	parents, err := s.repo.ListParents(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load parents")
	}
	students, _, err := s.students.List(ctx, models.StudentFilter{FamilyID: id, PageSize: 100})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load students")
	}

	resp := &dto.FamilyResponse{Family: *family, Parents: make([]dto.ParentView, 0, len(parents)), Students: students}
	if resp.Students == nil {
		resp.Students = []models.Student{}
	}
	for _, parent := range parents {
		view := dto.ParentView{ID: parent.ID, Name: parent.Name}
		phone, err := s.cipher.Decrypt(parent.PhoneEncrypted)
		if err != nil {
			s.logger.Warn("cannot decrypt parent phone", zap.String("parent_id", parent.ID), zap.Error(err))
		} else {
			view.MaskedPhone = fieldcrypto.MaskPhone(phone)
		}
		resp.Parents = append(resp.Parents, view)
	}
	return resp, nil
}

// UpdateDiscountTier changes the tier. Payments already recorded keep the
// discount they were created with.
func (s *FamilyService) UpdateDiscountTier(ctx context.Context, id string, req dto.UpdateDiscountTierRequest) (*models.Family, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "discount tier must be 0, 1 or 2")
	}
	if err := s.repo.UpdateDiscountTier(ctx, id, *req.DiscountTier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "family not found")
		}
		return nil, appErrors.Internal(err, "failed to update discount tier")
	}
	family, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load family")
	}
	return family, nil
}
