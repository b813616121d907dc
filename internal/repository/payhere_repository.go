package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/database"
)

// PayhereRepository persists payment processor exports.
type PayhereRepository struct {
	db *sqlx.DB
}

// NewPayhereRepository constructs a PayhereRepository.
func NewPayhereRepository(db *sqlx.DB) *PayhereRepository {
	return &PayhereRepository{db: db}
}

const (
	salesColumns      = `id, sale_date, payment_date, payment_time, description, total_amount, net_amount, discount, points_used, status, source, batch_id, created_at`
	dailyColumns      = `id, summary_date, transaction_count, total_sales, net_sales, discount, points_used, refund_amount, source, batch_id, created_at`
	settlementColumns = `id, period_start, period_end, settlement_date, total_amount, fee, net_amount, transaction_count, status, created_at`
	batchColumns      = `id, file_name, file_type, total_rows, imported, error_count, stored_path, created_by, created_at`
)

const insertBatchQuery = `INSERT INTO upload_batches (id, file_name, file_type, total_rows, imported, error_count, stored_path, created_by, created_at)
        VALUES (:id, :file_name, :file_type, :total_rows, :imported, :error_count, :stored_path, :created_by, :created_at)`

func prepareBatch(batch *models.UploadBatch) {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
}

// ImportSales stores the batch row and every sales record in one transaction.
func (r *PayhereRepository) ImportSales(ctx context.Context, batch *models.UploadBatch, records []models.SalesRecord) error {
	prepareBatch(batch)
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertBatchQuery, batch); err != nil {
			return fmt.Errorf("create upload batch: %w", err)
		}
		const query = `INSERT INTO sales_records (id, sale_date, payment_date, payment_time, description, total_amount, net_amount, discount, points_used, status, source, batch_id, created_at)
        VALUES (:id, :sale_date, :payment_date, :payment_time, :description, :total_amount, :net_amount, :discount, :points_used, :status, :source, :batch_id, :created_at)`
		for i := range records {
			record := &records[i]
			if record.ID == "" {
				record.ID = uuid.NewString()
			}
			batchID := batch.ID
			record.BatchID = &batchID
			record.CreatedAt = batch.CreatedAt
			if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
				return fmt.Errorf("insert sales record: %w", err)
			}
		}
		return nil
	})
}

// ImportDailySummaries stores the batch row and upserts every daily summary on
// (summary_date, source) in one transaction.
func (r *PayhereRepository) ImportDailySummaries(ctx context.Context, batch *models.UploadBatch, summaries []models.DailySalesSummary) error {
	prepareBatch(batch)
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertBatchQuery, batch); err != nil {
			return fmt.Errorf("create upload batch: %w", err)
		}
		const query = `INSERT INTO daily_sales_summaries (id, summary_date, transaction_count, total_sales, net_sales, discount, points_used, refund_amount, source, batch_id, created_at)
        VALUES (:id, :summary_date, :transaction_count, :total_sales, :net_sales, :discount, :points_used, :refund_amount, :source, :batch_id, :created_at)
        ON CONFLICT (summary_date, source) DO UPDATE SET transaction_count = EXCLUDED.transaction_count, total_sales = EXCLUDED.total_sales,
        net_sales = EXCLUDED.net_sales, discount = EXCLUDED.discount, points_used = EXCLUDED.points_used, refund_amount = EXCLUDED.refund_amount,
        batch_id = EXCLUDED.batch_id`
		for i := range summaries {
			summary := &summaries[i]
			if summary.ID == "" {
				summary.ID = uuid.NewString()
			}
			batchID := batch.ID
			summary.BatchID = &batchID
			summary.CreatedAt = batch.CreatedAt
			if _, err := tx.NamedExecContext(ctx, query, summary); err != nil {
				return fmt.Errorf("upsert daily summary: %w", err)
			}
		}
		return nil
	})
}

// ListSales returns sales records matching the filter.
func (r *PayhereRepository) ListSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, int, error) {
	var conditions []string
	var args []interface{}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("sale_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("sale_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	base := "FROM sales_records WHERE 1=1"
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	_, size, offset := models.NormalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY sale_date DESC, payment_time DESC NULLS LAST LIMIT %d OFFSET %d", salesColumns, base, size, offset)
	records := []models.SalesRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sales records: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count sales records: %w", err)
	}
	return records, total, nil
}

// SummarizeDaily totals daily summaries over [from, to].
func (r *PayhereRepository) SummarizeDaily(ctx context.Context, from, to models.Date) (*models.SalesSummary, error) {
	const query = `SELECT COUNT(DISTINCT summary_date) AS days, COALESCE(SUM(transaction_count), 0) AS transaction_count,
        COALESCE(SUM(total_sales), 0) AS total_sales, COALESCE(SUM(net_sales), 0) AS net_sales, COALESCE(SUM(discount), 0) AS discount,
        COALESCE(SUM(points_used), 0) AS points_used, COALESCE(SUM(refund_amount), 0) AS refund_amount
        FROM daily_sales_summaries WHERE summary_date BETWEEN $1 AND $2`
	var summary models.SalesSummary
	if err := r.db.GetContext(ctx, &summary, query, from, to); err != nil {
		return nil, fmt.Errorf("summarize daily sales: %w", err)
	}
	return &summary, nil
}

// ListDaily returns daily summaries in [from, to].
func (r *PayhereRepository) ListDaily(ctx context.Context, from, to models.Date) ([]models.DailySalesSummary, error) {
	query := `SELECT ` + dailyColumns + ` FROM daily_sales_summaries WHERE summary_date BETWEEN $1 AND $2 ORDER BY summary_date ASC`
	summaries := []models.DailySalesSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, from, to); err != nil {
		return nil, fmt.Errorf("list daily summaries: %w", err)
	}
	return summaries, nil
}

// ListSettlements returns settlements whose period overlaps [from, to].
func (r *PayhereRepository) ListSettlements(ctx context.Context, from, to models.Date) ([]models.SettlementRecord, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_records WHERE period_start <= $2 AND period_end >= $1 ORDER BY settlement_date DESC`
	settlements := []models.SettlementRecord{}
	if err := r.db.SelectContext(ctx, &settlements, query, from, to); err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	return settlements, nil
}

// DailyNetFromSummaries returns the summed net sales per day from daily summaries.
func (r *PayhereRepository) DailyNetFromSummaries(ctx context.Context, from, to models.Date) ([]models.DailyNet, error) {
	const query = `SELECT summary_date AS day, SUM(net_sales) AS net_amount FROM daily_sales_summaries
        WHERE summary_date BETWEEN $1 AND $2 GROUP BY summary_date`
	var rows []models.DailyNet
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("daily net from summaries: %w", err)
	}
	return rows, nil
}

// DailyNetFromSales returns the net amount of completed sales per day.
func (r *PayhereRepository) DailyNetFromSales(ctx context.Context, from, to models.Date) ([]models.DailyNet, error) {
	const query = `SELECT sale_date AS day, SUM(net_amount) AS net_amount FROM sales_records
        WHERE sale_date BETWEEN $1 AND $2 AND status = $3 GROUP BY sale_date`
	var rows []models.DailyNet
	if err := r.db.SelectContext(ctx, &rows, query, from, to, models.SaleStatusCompleted); err != nil {
		return nil, fmt.Errorf("daily net from sales: %w", err)
	}
	return rows, nil
}

// ListBatches returns upload batches newest first.
func (r *PayhereRepository) ListBatches(ctx context.Context) ([]models.UploadBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM upload_batches ORDER BY created_at DESC`
	batches := []models.UploadBatch{}
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, fmt.Errorf("list upload batches: %w", err)
	}
	return batches, nil
}

// FindBatch returns an upload batch.
func (r *PayhereRepository) FindBatch(ctx context.Context, id string) (*models.UploadBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM upload_batches WHERE id = $1`
	var batch models.UploadBatch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find upload batch: %w", err)
	}
	return &batch, nil
}

// DeleteBatch removes every record imported by a batch and the batch row.
func (r *PayhereRepository) DeleteBatch(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, query := range []string{
			`DELETE FROM sales_records WHERE batch_id = $1`,
			`DELETE FROM daily_sales_summaries WHERE batch_id = $1`,
		} {
			res, err := tx.ExecContext(ctx, query, id)
			if err != nil {
				return fmt.Errorf("delete batch rows: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("delete batch rows affected: %w", err)
			}
			removed += n
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM upload_batches WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete upload batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
