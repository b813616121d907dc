package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadRowsCSVStripsBOM(t *testing.T) {
	data := []byte("\xef\xbb\xbf영업일,결제 건수\n2025.01.05,\"1,200\"\n")
	rows, err := ReadRows(data, "daily.CSV")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "영업일", rows[0][0])
	assert.Equal(t, "1,200", rows[1][1])
}

func TestReadRowsXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"영업일", "총 매출"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"2025-01-05", 200000}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ReadRows(buf.Bytes(), "summary.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"영업일", "총 매출"}, rows[0])
	assert.Equal(t, "200000", rows[1][1])
}

func TestReadRowsRejectsUnknownExtension(t *testing.T) {
	_, err := ReadRows([]byte("x"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, Supported("notes.txt"))
	assert.True(t, Supported("a.XLS"))
}

func TestCellAndEmptyRow(t *testing.T) {
	assert.Equal(t, "", Cell([]string{"a"}, 3))
	assert.Equal(t, "a", Cell([]string{" a "}, 0))
	assert.True(t, IsEmptyRow([]string{"", "  "}))
	assert.False(t, IsEmptyRow([]string{"", "x"}))
}
