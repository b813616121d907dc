package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
}

type paymentStudentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type paymentFamilyFinder interface {
	FindByStudent(ctx context.Context, studentID string) (*models.Family, error)
}

// PaymentService records tuition payments with the family discount applied.
type PaymentService struct {
	repo      paymentRepository
	students  paymentStudentFinder
	families  paymentFamilyFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, students paymentStudentFinder, families paymentFamilyFinder, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, families: families, validator: validate, logger: logger}
}

// FamilyDiscountAmount returns floor(base * rate / 100).
func FamilyDiscountAmount(base, ratePercent int64) int64 {
	if ratePercent <= 0 {
		return 0
	}
	return decimal.NewFromInt(base).
		Mul(decimal.NewFromInt(ratePercent)).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}

// Create stores a payment. The discount tier is read from the student's
// family at this moment and frozen into the record.
func (s *PaymentService) Create(ctx context.Context, req dto.CreatePaymentRequest) (*models.PaymentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payment payload")
	}
	paymentDate, err := models.ParseDate(req.PaymentDate)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid payment_date")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}

	tier := models.DiscountTierNone
	if student.FamilyID != nil {
		family, err := s.families.FindByStudent(ctx, student.ID)
		switch {
		case err == nil:
			tier = family.DiscountTier
		case !errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Internal(err, "failed to load family")
		}
	}

	rate := models.FamilyDiscountRate(tier)
	familyDiscount := FamilyDiscountAmount(req.BaseAmount, rate)
	final := req.BaseAmount - familyDiscount - req.AdditionalDiscount
	if final < 0 {
		s.logger.Warn("payment final amount is negative",
			zap.String("student_id", student.ID),
			zap.Int64("base_amount", req.BaseAmount),
			zap.Int64("family_discount", familyDiscount),
			zap.Int64("additional_discount", req.AdditionalDiscount),
			zap.Int64("final_amount", final))
	}

	payment := &models.Payment{
		StudentID:          student.ID,
		BaseAmount:         req.BaseAmount,
		FamilyDiscount:     familyDiscount,
		AdditionalDiscount: req.AdditionalDiscount,
		FinalAmount:        final,
		PaymentMethod:      req.PaymentMethod,
		PaymentDate:        paymentDate,
		MonthYear:          req.MonthYear,
		Notes:              req.Notes,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Internal(err, "failed to create payment")
	}

	return &models.PaymentResult{
		Payment:        payment,
		FamilyDiscount: models.FamilyDiscountInfo{Tier: tier, Rate: rate, Amount: familyDiscount},
	}, nil
}

// List returns payments with pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list payments")
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	page, size, _ := models.NormalizePage(filter.Page, filter.PageSize)
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
