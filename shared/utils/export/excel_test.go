package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteExcel(t *testing.T) {
	data, err := WriteExcel([][]interface{}{
		{"NPD/UP/0001/2026", "UP", int64(5_000_000)},
		{"NPD/GU/0001/2026", "GU", int64(12_500_000)},
	}, ExcelOptions{
		SheetName:    "Daftar NPD",
		Headers:      []string{"Nomor", "Jenis", "Jumlah"},
		ColumnWidths: []float64{25, 10, 18},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Daftar NPD"}, f.GetSheetList())

	rows, err := f.GetRows("Daftar NPD")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Nomor", "Jenis", "Jumlah"}, rows[0])
	assert.Equal(t, "NPD/UP/0001/2026", rows[1][0])
	assert.Equal(t, "12500000", rows[2][2])
}

func TestWriteExcelDefaultSheetName(t *testing.T) {
	data, err := WriteExcel(nil, ExcelOptions{Headers: []string{"Kolom"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}

func TestWriteExcelEmptyRows(t *testing.T) {
	data, err := WriteExcel([][]interface{}{}, ExcelOptions{
		SheetName: "Kosong",
		Headers:   []string{"A", "B"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Kosong")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
