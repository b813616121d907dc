package models

import "time"

// Audit actions recorded for admin writes.
const (
	AuditActionLogin         = "LOGIN"
	AuditActionPaymentCreate = "PAYMENT_CREATE"
	AuditActionUpload        = "PAYHERE_UPLOAD"
	AuditActionBatchDelete   = "PAYHERE_BATCH_DELETE"
	AuditActionFinanceWrite  = "FINANCE_WRITE"
	AuditActionFamilyCreate  = "FAMILY_CREATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
