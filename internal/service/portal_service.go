package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
	"github.com/noah-isme/piano-academy-api/pkg/fieldcrypto"
)

type portalFamilyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Family, error)
	FindParentByPhoneHash(ctx context.Context, hash string) (*models.Parent, error)
	FindParentByID(ctx context.Context, id string) (*models.Parent, error)
	ParentHasStudent(ctx context.Context, parentID, studentID string) (bool, error)
}

type portalStudentLister interface {
	ListByParent(ctx context.Context, parentID string) ([]models.Student, error)
}

type portalAttendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
}

type portalPaymentLister interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
}

type tokenIssuer interface {
	IssueToken(subject string, role models.UserRole, email, name string, ttl time.Duration) (string, time.Time, error)
}

// PortalService serves the read-only parent portal.
type PortalService struct {
	families    portalFamilyRepository
	students    portalStudentLister
	attendances portalAttendanceLister
	payments    portalPaymentLister
	tokens      tokenIssuer
	cipher      FieldCipher
	sessionTTL  time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// PortalDeps groups the collaborators of the portal service.
type PortalDeps struct {
	Families    portalFamilyRepository
	Students    portalStudentLister
	Attendances portalAttendanceLister
	Payments    portalPaymentLister
	Tokens      tokenIssuer
	Cipher      FieldCipher
}

// NewPortalService constructs a PortalService.
func NewPortalService(deps PortalDeps, sessionTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *PortalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &PortalService{
		families:    deps.Families,
		students:    deps.Students,
		attendances: deps.Attendances,
		payments:    deps.Payments,
		tokens:      deps.Tokens,
		cipher:      deps.Cipher,
		sessionTTL:  sessionTTL,
		validator:   validate,
		logger:      logger,
	}
}

// Login authenticates a parent by phone number and PIN.
func (s *PortalService) Login(ctx context.Context, req models.ParentLoginRequest) (*models.ParentSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}

	hash := s.cipher.LookupHash(fieldcrypto.NormalizePhone(req.Phone))
	parent, err := s.families.FindParentByPhoneHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("portal login unknown phone")
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Internal(err, "failed to load parent")
	}
	if bcrypt.CompareHashAndPassword([]byte(parent.PINHash), []byte(req.PIN)) != nil {
		s.logger.Info("portal login pin mismatch", zap.String("parent_id", parent.ID))
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.IssueToken(parent.ID, models.RoleParent, "", parent.Name, s.sessionTTL)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to issue session")
	}
	return &models.ParentSession{Token: token, ParentID: parent.ID, Name: parent.Name, ExpiresAt: expiresAt}, nil
}

// Me returns the signed-in parent's profile with a masked phone number.
func (s *PortalService) Me(ctx context.Context, parentID string) (*dto.PortalProfile, error) {
	parent, err := s.families.FindParentByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "parent session no longer valid")
		}
		return nil, appErrors.Internal(err, "failed to load parent")
	}
	family, err := s.families.FindByID(ctx, parent.FamilyID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load family")
	}

	profile := &dto.PortalProfile{
		ParentID:     parent.ID,
		Name:         parent.Name,
		FamilyID:     family.ID,
		FamilyName:   family.Name,
		DiscountTier: family.DiscountTier,
	}
	if phone, err := s.cipher.Decrypt(parent.PhoneEncrypted); err == nil {
		profile.MaskedPhone = fieldcrypto.MaskPhone(phone)
	} else {
		s.logger.Warn("failed to decrypt parent phone", zap.String("parent_id", parent.ID), zap.Error(err))
	}
	return profile, nil
}

// Children lists the students linked to the parent.
func (s *PortalService) Children(ctx context.Context, parentID string) ([]dto.PortalChild, error) {
	students, err := s.students.ListByParent(ctx, parentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list children")
	}
	children := make([]dto.PortalChild, 0, len(students))
	for _, st := range students {
		children = append(children, dto.PortalChild{ID: st.ID, Name: st.Name, Level: st.Level, Active: st.Active})
	}
	return children, nil
}

// ChildAttendance returns check-ins for one of the parent's children.
func (s *PortalService) ChildAttendance(ctx context.Context, parentID, studentID string, from, to *models.Date) ([]models.Attendance, error) {
	if err := s.ensureOwnership(ctx, parentID, studentID); err != nil {
		return nil, err
	}
	records, err := s.attendances.List(ctx, models.AttendanceFilter{StudentID: studentID, From: from, To: to})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendance")
	}
	if records == nil {
		records = []models.Attendance{}
	}
	return records, nil
}

// ChildPayments returns the payment history of one of the parent's children.
func (s *PortalService) ChildPayments(ctx context.Context, parentID, studentID string, page, pageSize int) ([]models.Payment, *models.Pagination, error) {
	if err := s.ensureOwnership(ctx, parentID, studentID); err != nil {
		return nil, nil, err
	}
	filter := models.PaymentFilter{StudentID: studentID, Page: page, PageSize: pageSize}
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list payments")
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	p, size, _ := models.NormalizePage(page, pageSize)
	return payments, &models.Pagination{Page: p, PageSize: size, TotalCount: total}, nil
}

func (s *PortalService) ensureOwnership(ctx context.Context, parentID, studentID string) error {
	ok, err := s.families.ParentHasStudent(ctx, parentID, studentID)
	if err != nil {
		return appErrors.Internal(err, "failed to verify student access")
	}
	if !ok {
		s.logger.Warn("portal access to foreign student", zap.String("parent_id", parentID), zap.String("student_id", studentID))
		return appErrors.Clone(appErrors.ErrForbidden, "student does not belong to this family")
	}
	return nil
}
