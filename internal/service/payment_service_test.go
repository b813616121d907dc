package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/piano-academy-api/internal/dto"
	"github.com/noah-isme/piano-academy-api/internal/models"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type paymentRepoFake struct {
	created []*models.Payment
}

func (f *paymentRepoFake) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = "pay-1"
	f.created = append(f.created, payment)
	return nil
}

func (f *paymentRepoFake) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	return nil, 0, nil
}

type familyByStudentFake map[string]models.Family

func (f familyByStudentFake) FindByStudent(ctx context.Context, studentID string) (*models.Family, error) {
	family, ok := f[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &family, nil
}

func newPaymentFixture(t *testing.T, tier int) (*PaymentService, *paymentRepoFake, *observer.ObservedLogs) {
	t.Helper()
	familyID := "fam-1"
	students := newStudentRepoMock(
		models.Student{ID: "s1", FamilyID: &familyID, Name: "Kim Jiwoo", Active: true},
		models.Student{ID: "s2", Name: "Lee Minho", Active: true},
	)
	families := familyByStudentFake{"s1": {ID: familyID, DiscountTier: tier}}
	core, logs := observer.New(zap.WarnLevel)
	repo := &paymentRepoFake{}
	return NewPaymentService(repo, students, families, nil, zap.New(core)), repo, logs
}

func paymentRequest(studentID string, base, additional int64) dto.CreatePaymentRequest {
	return dto.CreatePaymentRequest{
		StudentID:          studentID,
		BaseAmount:         base,
		AdditionalDiscount: additional,
		PaymentDate:        "2024-03-05",
		MonthYear:          "2024-03",
	}
}

func TestFamilyDiscountAmountFloors(t *testing.T) {
	assert.Equal(t, int64(0), FamilyDiscountAmount(150000, 0))
	assert.Equal(t, int64(7500), FamilyDiscountAmount(150000, 5))
	assert.Equal(t, int64(15000), FamilyDiscountAmount(150000, 10))
	assert.Equal(t, int64(4999), FamilyDiscountAmount(99999, 5))
	assert.Equal(t, int64(9999), FamilyDiscountAmount(99999, 10))
}

func TestPaymentServiceAppliesFamilyTier(t *testing.T) {
	cases := []struct {
		tier     int
		rate     int64
		discount int64
		final    int64
	}{
		{tier: 0, rate: 0, discount: 0, final: 140000},
		{tier: 1, rate: 5, discount: 7500, final: 132500},
		{tier: 2, rate: 10, discount: 15000, final: 125000},
		{tier: 7, rate: 0, discount: 0, final: 140000},
	}
	for _, tc := range cases {
		svc, repo, _ := newPaymentFixture(t, tc.tier)
		result, err := svc.Create(context.Background(), paymentRequest("s1", 150000, 10000))
		require.NoError(t, err)
		assert.Equal(t, tc.rate, result.FamilyDiscount.Rate)
		assert.Equal(t, tc.discount, result.Payment.FamilyDiscount)
		assert.Equal(t, tc.final, result.Payment.FinalAmount)
		assert.Equal(t, "2024-03-05", result.Payment.PaymentDate.String())
		require.Len(t, repo.created, 1)
	}
}

func TestPaymentServiceStudentWithoutFamily(t *testing.T) {
	svc, _, _ := newPaymentFixture(t, 2)
	result, err := svc.Create(context.Background(), paymentRequest("s2", 100000, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, result.FamilyDiscount.Tier)
	assert.Equal(t, int64(100000), result.Payment.FinalAmount)
}

func TestPaymentServiceNegativeFinalIsKeptAndLogged(t *testing.T) {
	svc, _, logs := newPaymentFixture(t, 2)
	result, err := svc.Create(context.Background(), paymentRequest("s1", 100000, 95000))
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), result.Payment.FinalAmount)
	assert.Equal(t, 1, logs.FilterMessage("payment final amount is negative").Len())
}

func TestPaymentServiceErrors(t *testing.T) {
	svc, _, _ := newPaymentFixture(t, 0)

	_, err := svc.Create(context.Background(), paymentRequest("missing", 1000, 0))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), paymentRequest("s1", 0, 0))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req := paymentRequest("s1", 1000, 0)
	req.MonthYear = "March"
	_, err = svc.Create(context.Background(), req)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
