package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/export"
	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

// Export formats accepted by the download endpoints.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders finance and sales data into downloadable files.
type ExportService struct {
	renderers map[string]datasetRenderer
	logger    *zap.Logger
}

// NewExportService wires the csv, pdf and xlsx renderers.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		renderers: map[string]datasetRenderer{
			ExportFormatCSV:  export.NewCSVExporter(),
			ExportFormatPDF:  export.NewPDFExporter(),
			ExportFormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
	}
}

// FinanceSummary renders a yearly summary: one row per month, a total row,
// then the expense categories.
func (s *ExportService) FinanceSummary(summary models.FinanceSummary, format string) (*ExportFile, error) {
	dataset := export.Dataset{
		Title:   fmt.Sprintf("Finance %d", summary.Year),
		Headers: []string{"Month", "Processor Sales", "Revenues", "Expenses", "Fixed", "Variable", "Total Income", "Net Profit"},
	}
	for _, m := range summary.Monthly {
		dataset.Rows = append(dataset.Rows, financeRow(strconv.Itoa(m.Month), m))
	}
	dataset.Rows = append(dataset.Rows, financeRow("Total", summary.Yearly))

	seen := make(map[string]struct{}, len(summary.ExpensesByCategory))
	for _, category := range models.ExpenseCategories {
		seen[category] = struct{}{}
		dataset.Rows = append(dataset.Rows, categoryRow(category, summary.ExpensesByCategory[category]))
	}
	for category, amount := range summary.ExpensesByCategory {
		if _, ok := seen[category]; ok {
			continue
		}
		dataset.Rows = append(dataset.Rows, categoryRow(category, amount))
	}

	return s.render(dataset, format, fmt.Sprintf("finance_%d", summary.Year))
}

// SalesRecords renders processor sales rows.
func (s *ExportService) SalesRecords(records []models.SalesRecord, format, name string) (*ExportFile, error) {
	dataset := export.Dataset{
		Title:   "Sales",
		Headers: []string{"Date", "Time", "Description", "Total", "Discount", "Points", "Net", "Status"},
	}
	for _, r := range records {
		var paymentTime string
		if r.PaymentTime != nil {
			paymentTime = *r.PaymentTime
		}
		dataset.Rows = append(dataset.Rows, []string{
			r.SaleDate.String(),
			paymentTime,
			r.Description,
			strconv.FormatInt(r.TotalAmount, 10),
			strconv.FormatInt(r.Discount, 10),
			strconv.FormatInt(r.PointsUsed, 10),
			strconv.FormatInt(r.NetAmount, 10),
			r.Status,
		})
	}
	return s.render(dataset, format, name)
}

func (s *ExportService) render(dataset export.Dataset, format, name string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of csv, pdf, xlsx")
	}
	data, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("render export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render export")
	}
	return &ExportFile{
		FileName:    sanitizeFilename(name) + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func financeRow(label string, m models.MonthlyFinance) []string {
	return []string{
		label,
		strconv.FormatInt(m.PayhereSales, 10),
		strconv.FormatInt(m.Revenues, 10),
		strconv.FormatInt(m.Expenses, 10),
		strconv.FormatInt(m.FixedExpenses, 10),
		strconv.FormatInt(m.VariableExpenses, 10),
		strconv.FormatInt(m.TotalIncome, 10),
		strconv.FormatInt(m.NetProfit, 10),
	}
}

func categoryRow(category string, amount int64) []string {
	return []string{"expense:" + category, "", "", strconv.FormatInt(amount, 10), "", "", "", ""}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "export"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
