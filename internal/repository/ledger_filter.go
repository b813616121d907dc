package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

// ledgerWhere builds the WHERE clause shared by revenue and expense listings.
func ledgerWhere(dateColumn string, filter models.LedgerFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM %s) = $%d", dateColumn, len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Month > 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM %s) = $%d", dateColumn, len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}

	where := "WHERE 1=1"
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}
	return where, args
}
