package models

import "time"

// FileType classifies a processor export.
type FileType string

const (
	FileTypeSales        FileType = "sales"
	FileTypeDailySummary FileType = "daily_summary"
	FileTypeSettlement   FileType = "settlement"
)

// Sale statuses reported by the processor.
const (
	SaleStatusCompleted = "completed"
	SaleStatusPending   = "pending"
	SaleStatusRefunded  = "refunded"
)

// Record sources.
const (
	SourceExcel  = "excel"
	SourceManual = "manual"
)

// SalesRecord is one processor-reported transaction.
type SalesRecord struct {
	ID          string    `db:"id" json:"id"`
	SaleDate    Date      `db:"sale_date" json:"sale_date"`
	PaymentDate *Date     `db:"payment_date" json:"payment_date,omitempty"`
	PaymentTime *string   `db:"payment_time" json:"payment_time,omitempty"`
	Description string    `db:"description" json:"description"`
	TotalAmount int64     `db:"total_amount" json:"total_amount"`
	NetAmount   int64     `db:"net_amount" json:"net_amount"`
	Discount    int64     `db:"discount" json:"discount"`
	PointsUsed  int64     `db:"points_used" json:"points_used"`
	Status      string    `db:"status" json:"status"`
	Source      string    `db:"source" json:"source"`
	BatchID     *string   `db:"batch_id" json:"batch_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DailySalesSummary is the processor's aggregate for one calendar day.
type DailySalesSummary struct {
	ID               string    `db:"id" json:"id"`
	SummaryDate      Date      `db:"summary_date" json:"summary_date"`
	TransactionCount int64     `db:"transaction_count" json:"transaction_count"`
	TotalSales       int64     `db:"total_sales" json:"total_sales"`
	NetSales         int64     `db:"net_sales" json:"net_sales"`
	Discount         int64     `db:"discount" json:"discount"`
	PointsUsed       int64     `db:"points_used" json:"points_used"`
	RefundAmount     int64     `db:"refund_amount" json:"refund_amount"`
	Source           string    `db:"source" json:"source"`
	BatchID          *string   `db:"batch_id" json:"batch_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// SettlementRecord is a processor payout period. Read-only.
type SettlementRecord struct {
	ID               string    `db:"id" json:"id"`
	PeriodStart      Date      `db:"period_start" json:"period_start"`
	PeriodEnd        Date      `db:"period_end" json:"period_end"`
	SettlementDate   Date      `db:"settlement_date" json:"settlement_date"`
	TotalAmount      int64     `db:"total_amount" json:"total_amount"`
	Fee              int64     `db:"fee" json:"fee"`
	NetAmount        int64     `db:"net_amount" json:"net_amount"`
	TransactionCount int64     `db:"transaction_count" json:"transaction_count"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// UploadBatch records one spreadsheet import.
type UploadBatch struct {
	ID         string    `db:"id" json:"id"`
	FileName   string    `db:"file_name" json:"file_name"`
	FileType   FileType  `db:"file_type" json:"file_type"`
	TotalRows  int       `db:"total_rows" json:"total_rows"`
	Imported   int       `db:"imported" json:"imported"`
	ErrorCount int       `db:"error_count" json:"error_count"`
	StoredPath string    `db:"stored_path" json:"-"`
	CreatedBy  *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DailyNet is the processor net sales for one day, as fed to the aggregator.
type DailyNet struct {
	Date      Date  `db:"day" json:"date"`
	NetAmount int64 `db:"net_amount" json:"net_amount"`
}

// SalesFilter narrows sales record listings.
type SalesFilter struct {
	From     *Date
	To       *Date
	Status   string
	BatchID  string
	Page     int
	PageSize int
}

// SalesSummary totals daily summaries over a range.
type SalesSummary struct {
	From             string `db:"-" json:"from"`
	To               string `db:"-" json:"to"`
	Days             int64  `db:"days" json:"days"`
	TransactionCount int64  `db:"transaction_count" json:"transaction_count"`
	TotalSales       int64  `db:"total_sales" json:"total_sales"`
	NetSales         int64  `db:"net_sales" json:"net_sales"`
	Discount         int64  `db:"discount" json:"discount"`
	PointsUsed       int64  `db:"points_used" json:"points_used"`
	RefundAmount     int64  `db:"refund_amount" json:"refund_amount"`
}

// RowError reports a spreadsheet row that could not be imported.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// UploadStats counts rows handled by one import.
type UploadStats struct {
	TotalRows int `json:"totalRows"`
	Imported  int `json:"imported"`
	Errors    int `json:"errors"`
}

// UploadResult is the response of a spreadsheet upload.
type UploadResult struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	BatchID  string      `json:"batchId"`
	FileType FileType    `json:"fileType"`
	Stats    UploadStats `json:"stats"`
	Errors   []RowError  `json:"errors,omitempty"`
}
