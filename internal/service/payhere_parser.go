package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/spreadsheet"
)

const headerScanRows = 5

var (
	salesMarkers      = []string{"결제 시간", "결제시간", "결제일", "payment date", "payment time"}
	dailyMarkers      = []string{"결제 건수", "결제건수", "총 매출", "총매출", "transaction count", "total sales", "net sales"}
	settlementMarkers = []string{"정산일", "수수료", "settlement date", "fee"}
)

type column int

const (
	colSaleDate column = iota
	colPaymentDate
	colPaymentTime
	colDescription
	colTotal
	colNet
	colDiscount
	colPoints
	colStatus
	colCount
	colRefund
)

type columnAliases struct {
	col     column
	aliases []string
}

// Resolution order matters: specific headers are claimed before generic
// ones ("payment date" before "date").
var salesColumns = []columnAliases{
	{colPaymentTime, []string{"결제 시간", "결제시간", "payment time", "시간", "time"}},
	{colPaymentDate, []string{"결제일", "결제 일자", "payment date"}},
	{colSaleDate, []string{"영업일", "거래일", "판매일", "sale date", "날짜", "일자", "date"}},
	{colNet, []string{"결제 금액", "결제금액", "실결제", "실 결제", "net amount", "payment amount", "net"}},
	{colTotal, []string{"총 금액", "총금액", "판매 금액", "판매금액", "주문 금액", "total amount", "total", "금액", "amount"}},
	{colDiscount, []string{"할인", "discount"}},
	{colPoints, []string{"포인트", "point"}},
	{colDescription, []string{"상품", "메뉴", "내역", "품목", "description", "item", "product"}},
	{colStatus, []string{"상태", "status"}},
}

var dailyColumns = []columnAliases{
	{colCount, []string{"결제 건수", "결제건수", "거래 건수", "transaction count", "count"}},
	{colNet, []string{"실 매출", "실매출", "순 매출", "순매출", "net sales"}},
	{colTotal, []string{"총 매출", "총매출", "total sales"}},
	{colRefund, []string{"환불", "취소 금액", "refund"}},
	{colDiscount, []string{"할인", "discount"}},
	{colPoints, []string{"포인트", "point"}},
	{colSaleDate, []string{"영업일", "날짜", "일자", "date"}},
}

var (
	datePattern = regexp.MustCompile(`^(\d{4})\s*[.\-/]\s*(\d{1,2})\s*[.\-/]\s*(\d{1,2})`)
	compactDate = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	clockRegexp = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?`)
)

// ParseResult is the outcome of parsing one spreadsheet. Row numbers in
// Errors are 1-based spreadsheet rows.
type ParseResult[T any] struct {
	Success   bool              `json:"success"`
	Data      []T               `json:"data"`
	Errors    []models.RowError `json:"errors"`
	TotalRows int               `json:"totalRows"`
}

func (r *ParseResult[T]) finish() {
	r.Success = len(r.Errors) == 0 || len(r.Data) > 0
}

// DetectFileType classifies a header row. An empty result means the layout
// was not recognised.
func DetectFileType(headers []string) models.FileType {
	switch {
	case containsAny(headers, salesMarkers):
		return models.FileTypeSales
	case containsAny(headers, dailyMarkers):
		return models.FileTypeDailySummary
	case containsAny(headers, settlementMarkers):
		return models.FileTypeSettlement
	default:
		return ""
	}
}

// FindHeaderRow returns the index of the header within the first rows.
func FindHeaderRow(rows [][]string) int {
	best, bestScore, bestSales := 0, -1, false
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		score := headerScore(rows[i])
		sales := containsAny(rows[i], salesMarkers)
		if score > bestScore || (score == bestScore && sales && !bestSales) {
			best, bestScore, bestSales = i, score, sales
		}
	}
	return best
}

// ParseSalesRows converts a sales export into records.
func ParseSalesRows(rows [][]string) ParseResult[models.SalesRecord] {
	result := ParseResult[models.SalesRecord]{Data: []models.SalesRecord{}, Errors: []models.RowError{}}
	if len(rows) == 0 {
		result.finish()
		return result
	}
	headerIdx := FindHeaderRow(rows)
	cols := mapColumns(rows[headerIdx], salesColumns)
	if _, ok := cols[colSaleDate]; !ok {
		if idx, ok := cols[colPaymentDate]; ok {
			cols[colSaleDate] = idx
		}
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if spreadsheet.IsEmptyRow(row) {
			continue
		}
		result.TotalRows++
		rowNumber := i + 1

		total := ParseAmount(cellAt(row, cols, colTotal))
		net := ParseAmount(cellAt(row, cols, colNet))
		if total == 0 && net == 0 {
			continue
		}
		if _, ok := cols[colTotal]; !ok {
			total = net
		}
		if _, ok := cols[colNet]; !ok {
			net = total
		}

		saleDate, err := ParseSheetDate(cellAt(row, cols, colSaleDate))
		if err != nil {
			result.Errors = append(result.Errors, models.RowError{Row: rowNumber, Message: fmt.Sprintf("invalid date: %v", err)})
			continue
		}

		record := models.SalesRecord{
			SaleDate:    saleDate,
			Description: cellAt(row, cols, colDescription),
			TotalAmount: total,
			NetAmount:   net,
			Discount:    ParseAmount(cellAt(row, cols, colDiscount)),
			PointsUsed:  ParseAmount(cellAt(row, cols, colPoints)),
			Status:      saleStatus(cellAt(row, cols, colStatus), net),
			Source:      models.SourceExcel,
		}
		if raw := cellAt(row, cols, colPaymentDate); raw != "" {
			if d, err := ParseSheetDate(raw); err == nil {
				record.PaymentDate = &d
			}
		}
		if clock, ok := ParseSheetTime(cellAt(row, cols, colPaymentTime)); ok {
			record.PaymentTime = &clock
		}
		result.Data = append(result.Data, record)
	}
	result.finish()
	return result
}

// ParseDailySummaryRows converts a daily summary export into summaries.
func ParseDailySummaryRows(rows [][]string) ParseResult[models.DailySalesSummary] {
	result := ParseResult[models.DailySalesSummary]{Data: []models.DailySalesSummary{}, Errors: []models.RowError{}}
	if len(rows) == 0 {
		result.finish()
		return result
	}
	headerIdx := FindHeaderRow(rows)
	cols := mapColumns(rows[headerIdx], dailyColumns)

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if spreadsheet.IsEmptyRow(row) {
			continue
		}
		result.TotalRows++
		rowNumber := i + 1

		total := ParseAmount(cellAt(row, cols, colTotal))
		net := ParseAmount(cellAt(row, cols, colNet))
		if total == 0 && net == 0 {
			continue
		}

		day, err := ParseSheetDate(cellAt(row, cols, colSaleDate))
		if err != nil {
			result.Errors = append(result.Errors, models.RowError{Row: rowNumber, Message: fmt.Sprintf("invalid date: %v", err)})
			continue
		}

		result.Data = append(result.Data, models.DailySalesSummary{
			SummaryDate:      day,
			TransactionCount: ParseAmount(cellAt(row, cols, colCount)),
			TotalSales:       total,
			NetSales:         net,
			Discount:         ParseAmount(cellAt(row, cols, colDiscount)),
			PointsUsed:       ParseAmount(cellAt(row, cols, colPoints)),
			RefundAmount:     ParseAmount(cellAt(row, cols, colRefund)),
			Source:           models.SourceExcel,
		})
	}
	result.finish()
	return result
}

// ParseSheetDate accepts dotted, dashed, slashed and compact dates plus
// spreadsheet serial numbers.
func ParseSheetDate(raw string) (models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Date{}, fmt.Errorf("empty date")
	}
	if m := datePattern.FindStringSubmatch(raw); m != nil {
		return buildDate(m[1], m[2], m[3], raw)
	}
	if m := compactDate.FindStringSubmatch(raw); m != nil {
		return buildDate(m[1], m[2], m[3], raw)
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 1 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return models.Date{}, fmt.Errorf("%q: %w", raw, err)
		}
		return models.NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	return models.Date{}, fmt.Errorf("unrecognised date %q", raw)
}

func buildDate(y, m, d, raw string) (models.Date, error) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	date := models.NewDate(year, time.Month(month), day)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return models.Date{}, fmt.Errorf("out of range date %q", raw)
	}
	return date, nil
}

// ParseSheetTime normalises clock strings, datetime strings and fractional
// day serials to HH:MM:SS.
func ParseSheetTime(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if m := clockRegexp.FindStringSubmatch(raw); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		sec := 0
		if m[3] != "" {
			sec, _ = strconv.Atoi(m[3])
		}
		if h > 23 || minute > 59 || sec > 59 {
			return "", false
		}
		return fmt.Sprintf("%02d:%02d:%02d", h, minute, sec), true
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial < 0 {
		return "", false
	}
	_, frac := math.Modf(serial)
	secs := int(math.Round(frac * 86400))
	if secs >= 86400 {
		secs = 86399
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60), true
}

// ParseAmount strips separators, currency marks and unit suffixes and
// truncates to whole won. Unparseable input yields 0.
func ParseAmount(raw string) int64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',' || r == '₩' || r == '\\' || unicode.IsSpace(r):
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimRightFunc(cleaned, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if cleaned == "" || cleaned == "-" {
		return 0
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return value.Truncate(0).IntPart()
}

func saleStatus(raw string, net int64) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "취소"), strings.Contains(lower, "환불"),
		strings.Contains(lower, "refund"), strings.Contains(lower, "cancel"), net < 0:
		return models.SaleStatusRefunded
	case strings.Contains(lower, "대기"), strings.Contains(lower, "pending"):
		return models.SaleStatusPending
	default:
		return models.SaleStatusCompleted
	}
}

func mapColumns(header []string, known []columnAliases) map[column]int {
	lowered := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}
	claimed := make(map[int]bool, len(header))
	cols := make(map[column]int, len(known))
	for _, entry := range known {
	aliases:
		for _, alias := range entry.aliases {
			for i, h := range lowered {
				if claimed[i] || h == "" {
					continue
				}
				if strings.Contains(h, alias) {
					cols[entry.col] = i
					claimed[i] = true
					break aliases
				}
			}
		}
	}
	return cols
}

func cellAt(row []string, cols map[column]int, col column) string {
	idx, ok := cols[col]
	if !ok {
		return ""
	}
	return spreadsheet.Cell(row, idx)
}

func headerScore(row []string) int {
	score := 0
	for _, cell := range row {
		h := strings.ToLower(strings.TrimSpace(cell))
		if h == "" {
			continue
		}
		if matchesAnyAlias(h) {
			score++
		}
	}
	return score
}

func matchesAnyAlias(h string) bool {
	for _, group := range [][]columnAliases{salesColumns, dailyColumns} {
		for _, entry := range group {
			for _, alias := range entry.aliases {
				if strings.Contains(h, alias) {
					return true
				}
			}
		}
	}
	return containsAny([]string{h}, settlementMarkers)
}

func containsAny(cells []string, markers []string) bool {
	for _, cell := range cells {
		h := strings.ToLower(strings.TrimSpace(cell))
		if h == "" {
			continue
		}
		for _, marker := range markers {
			if strings.Contains(h, marker) {
				return true
			}
		}
	}
	return false
}
