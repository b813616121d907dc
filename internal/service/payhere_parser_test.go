package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/spreadsheet"
)

func salesSheet() [][]string {
	return [][]string{
		{"PayHere 리포트"},
		{},
		{"영업일", "결제 시간", "상품명", "총 금액", "할인", "포인트", "결제 금액", "상태"},
		{"2024.03.01", "14:05", "레슨비", "150,000원", "0", "0", "150,000원", "완료"},
		{"45353", "0.5", "교재", "₩30,000", "3,000", "0", "27,000", "완료"},
		{"not a date", "10:00", "x", "10,000", "0", "0", "10,000", ""},
		{"2024-03-03", "", "noise", "0", "0", "0", "0", ""},
		{"", " ", ""},
		{"2024/03/04", "2024-03-04 09:30:15", "환불", "-20,000", "", "", "-20,000", "취소"},
	}
}

func TestDetectFileType(t *testing.T) {
	assert.Equal(t, models.FileTypeSales, DetectFileType([]string{"영업일", "결제 시간", "금액"}))
	assert.Equal(t, models.FileTypeSales, DetectFileType([]string{"Payment Date", "Amount"}))
	assert.Equal(t, models.FileTypeDailySummary, DetectFileType([]string{"영업일", "결제 건수"}))
	assert.Equal(t, models.FileTypeDailySummary, DetectFileType([]string{"일자", "총 매출"}))
	assert.Equal(t, models.FileTypeSettlement, DetectFileType([]string{"정산일", "수수료"}))
	assert.Equal(t, models.FileType(""), DetectFileType([]string{"영업일", "금액"}))
}

func TestFindHeaderRowSkipsTitleRows(t *testing.T) {
	assert.Equal(t, 2, FindHeaderRow(salesSheet()))
	assert.Equal(t, 0, FindHeaderRow([][]string{{"a"}, {"b"}}))
}

func TestParseSalesRows(t *testing.T) {
	result := ParseSalesRows(salesSheet())

	assert.True(t, result.Success)
	assert.Equal(t, 5, result.TotalRows)
	require.Len(t, result.Data, 3)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 6, result.Errors[0].Row)

	first := result.Data[0]
	assert.Equal(t, "2024-03-01", first.SaleDate.String())
	require.NotNil(t, first.PaymentTime)
	assert.Equal(t, "14:05:00", *first.PaymentTime)
	assert.Equal(t, "레슨비", first.Description)
	assert.Equal(t, int64(150000), first.TotalAmount)
	assert.Equal(t, int64(150000), first.NetAmount)
	assert.Equal(t, models.SaleStatusCompleted, first.Status)
	assert.Equal(t, models.SourceExcel, first.Source)

	serial := result.Data[1]
	assert.Equal(t, "2024-03-02", serial.SaleDate.String())
	assert.Equal(t, "12:00:00", *serial.PaymentTime)
	assert.Equal(t, int64(3000), serial.Discount)
	assert.Equal(t, int64(27000), serial.NetAmount)

	refund := result.Data[2]
	assert.Equal(t, "2024-03-04", refund.SaleDate.String())
	assert.Equal(t, "09:30:15", *refund.PaymentTime)
	assert.Equal(t, models.SaleStatusRefunded, refund.Status)
}

func TestParseSalesRowsAllInvalidIsFailure(t *testing.T) {
	result := ParseSalesRows([][]string{
		{"결제일", "결제 금액"},
		{"yesterday", "1,000"},
		{"2024-13-40", "2,000"},
	})
	assert.False(t, result.Success)
	assert.Empty(t, result.Data)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 3, result.Errors[1].Row)
}

func TestParseSalesRowsEmptySheetSucceeds(t *testing.T) {
	result := ParseSalesRows(nil)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.TotalRows)
}

func TestParseDailySummaryRows(t *testing.T) {
	result := ParseDailySummaryRows([][]string{
		{"일자", "결제 건수", "총 매출", "할인", "포인트", "환불", "실 매출"},
		{"2024-03-01", "14건", "1,500,000", "10,000", "0", "0", "1,490,000"},
		{"20240302", "3건", "90,000", "0", "500", "30,000", "59,500"},
		{"2024-03-03", "0건", "0", "0", "0", "0", "0"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalRows)
	require.Len(t, result.Data, 2)
	assert.Equal(t, int64(14), result.Data[0].TransactionCount)
	assert.Equal(t, int64(1490000), result.Data[0].NetSales)
	assert.Equal(t, "2024-03-02", result.Data[1].SummaryDate.String())
	assert.Equal(t, int64(30000), result.Data[1].RefundAmount)
	assert.Equal(t, int64(500), result.Data[1].PointsUsed)
}

func TestParseSheetDateFormats(t *testing.T) {
	for _, raw := range []string{"2024.03.01", "2024. 3. 1.", "2024-03-01", "2024/3/1", "20240301", "2024-03-01 14:00:00", "45352"} {
		d, err := ParseSheetDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "2024-03-01", d.String(), raw)
	}
	for _, raw := range []string{"", "03/01/2024", "2024-02-30", "soon"} {
		_, err := ParseSheetDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseSheetTime(t *testing.T) {
	cases := map[string]string{
		"9:05":                "09:05:00",
		"14:05:09":            "14:05:09",
		"2024-03-01 18:30":    "18:30:00",
		"0.75":                "18:00:00",
		"45352.25":            "06:00:00",
	}
	for raw, want := range cases {
		got, ok := ParseSheetTime(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseSheetTime("25:00")
	assert.False(t, ok)
	_, ok = ParseSheetTime("")
	assert.False(t, ok)
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, int64(14), ParseAmount("14건"))
	assert.Equal(t, int64(150000), ParseAmount("150,000원"))
	assert.Equal(t, int64(30000), ParseAmount("₩30,000"))
	assert.Equal(t, int64(1234), ParseAmount("1,234.56"))
	assert.Equal(t, int64(-20000), ParseAmount("-20,000"))
	assert.Equal(t, int64(12), ParseAmount("12%"))
	assert.Equal(t, int64(0), ParseAmount("n/a"))
	assert.Equal(t, int64(0), ParseAmount(""))
}

func TestParseSalesFromWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"영업일", "결제 시간", "상품", "결제 금액"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{45352, 0.5, "레슨", 150000}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2024.03.02", "15:10", "교재", "30,000"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := spreadsheet.ReadRows(buf.Bytes(), "export.xlsx")
	require.NoError(t, err)
	require.Equal(t, models.FileTypeSales, DetectFileType(rows[FindHeaderRow(rows)]))

	result := ParseSalesRows(rows)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "2024-03-01", result.Data[0].SaleDate.String())
	assert.Equal(t, "12:00:00", *result.Data[0].PaymentTime)
	assert.Equal(t, int64(150000), result.Data[0].TotalAmount)
	assert.Equal(t, int64(30000), result.Data[1].NetAmount)
}
