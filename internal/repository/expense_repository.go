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

// ExpenseRepository persists manually entered cost lines.
type ExpenseRepository struct {
	db *sqlx.DB
}

// NewExpenseRepository constructs an ExpenseRepository.
func NewExpenseRepository(db *sqlx.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `id, expense_date, description, amount, category, is_fixed, recurring_day, recurring_until, notes, created_at, updated_at`

// List returns expenses matching the filter.
func (r *ExpenseRepository) List(ctx context.Context, filter models.LedgerFilter) ([]models.Expense, int, error) {
	where, args := ledgerWhere("expense_date", filter)
	_, size, offset := models.NormalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM expenses %s ORDER BY expense_date DESC, created_at DESC LIMIT %d OFFSET %d", expenseColumns, where, size, offset)
	expenses := []models.Expense{}
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM expenses "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}
	return expenses, total, nil
}

// ListBetween returns every expense dated within [from, to].
func (r *ExpenseRepository) ListBetween(ctx context.Context, from, to models.Date) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_date BETWEEN $1 AND $2`
	var expenses []models.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, from, to); err != nil {
		return nil, fmt.Errorf("list expenses between: %w", err)
	}
	return expenses, nil
}

// FindByID returns an expense.
func (r *ExpenseRepository) FindByID(ctx context.Context, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	var expense models.Expense
	if err := r.db.GetContext(ctx, &expense, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return &expense, nil
}

// Create inserts an expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	const query = `INSERT INTO expenses (id, expense_date, description, amount, category, is_fixed, recurring_day, recurring_until, notes, created_at, updated_at)
        VALUES (:id, :expense_date, :description, :amount, :category, :is_fixed, :recurring_day, :recurring_until, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// Update modifies an expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().UTC()
	const query = `UPDATE expenses SET expense_date = :expense_date, description = :description, amount = :amount, category = :category, is_fixed = :is_fixed,
        recurring_day = :recurring_day, recurring_until = :recurring_until, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
