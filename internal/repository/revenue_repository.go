package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

// RevenueRepository persists manually entered income lines.
type RevenueRepository struct {
	db *sqlx.DB
}

// NewRevenueRepository constructs a RevenueRepository.
func NewRevenueRepository(db *sqlx.DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

const revenueColumns = `id, revenue_date, description, amount, category, notes, created_at, updated_at`

// List returns revenues matching the filter.
func (r *RevenueRepository) List(ctx context.Context, filter models.LedgerFilter) ([]models.Revenue, int, error) {
	where, args := ledgerWhere("revenue_date", filter)
	_, size, offset := models.NormalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM revenues %s ORDER BY revenue_date DESC, created_at DESC LIMIT %d OFFSET %d", revenueColumns, where, size, offset)
	revenues := []models.Revenue{}
	if err := r.db.SelectContext(ctx, &revenues, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list revenues: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM revenues "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count revenues: %w", err)
	}
	return revenues, total, nil
}

// ListBetween returns every revenue dated within [from, to].
func (r *RevenueRepository) ListBetween(ctx context.Context, from, to models.Date) ([]models.Revenue, error) {
	query := `SELECT ` + revenueColumns + ` FROM revenues WHERE revenue_date BETWEEN $1 AND $2`
	var revenues []models.Revenue
	if err := r.db.SelectContext(ctx, &revenues, query, from, to); err != nil {
		return nil, fmt.Errorf("list revenues between: %w", err)
	}
	return revenues, nil
}

// FindByID returns a revenue.
func (r *RevenueRepository) FindByID(ctx context.Context, id string) (*models.Revenue, error) {
	query := `SELECT ` + revenueColumns + ` FROM revenues WHERE id = $1`
	var revenue models.Revenue
	if err := r.db.GetContext(ctx, &revenue, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find revenue: %w", err)
	}
	return &revenue, nil
}

// Create inserts a revenue.
func (r *RevenueRepository) Create(ctx context.Context, revenue *models.Revenue) error {
	if revenue.ID == "" {
		revenue.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	revenue.CreatedAt = now
	revenue.UpdatedAt = now
	const query = `INSERT INTO revenues (id, revenue_date, description, amount, category, notes, created_at, updated_at) VALUES (:id, :revenue_date, :description, :amount, :category, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, revenue); err != nil {
		return fmt.Errorf("create revenue: %w", err)
	}
	return nil
}

// Update modifies a revenue.
func (r *RevenueRepository) Update(ctx context.Context, revenue *models.Revenue) error {
	revenue.UpdatedAt = time.Now().UTC()
	const query = `UPDATE revenues SET revenue_date = :revenue_date, description = :description, amount = :amount, category = :category, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, revenue); err != nil {
		return fmt.Errorf("update revenue: %w", err)
	}
	return nil
}

// Delete removes a revenue.
func (r *RevenueRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revenues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete revenue: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
