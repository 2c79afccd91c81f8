package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVDefaultDelimiter(t *testing.T) {
	data, err := WriteCSV([][]string{
		{"NPD/UP/0001/2026", "UP", "draft"},
	}, CSVOptions{Headers: []string{"Nomor", "Jenis", "Status"}})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "export must start with a UTF-8 BOM")

	r := csv.NewReader(bytes.NewReader(data[3:]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Nomor", "Jenis", "Status"}, records[0])
	assert.Equal(t, []string{"NPD/UP/0001/2026", "UP", "draft"}, records[1])
}

func TestWriteCSVCommaDelimiter(t *testing.T) {
	data, err := WriteCSV([][]string{{"a", "b"}}, CSVOptions{
		Headers:   []string{"x", "y"},
		Delimiter: DelimiterComma,
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "x,y")
}

func TestWriteCSVQuotesDelimiterInField(t *testing.T) {
	data, err := WriteCSV([][]string{
		{"Belanja; ATK", "1000"},
	}, CSVOptions{Delimiter: DelimiterSemicolon})
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data[3:]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Belanja; ATK", records[0][0])
}

func TestWriteCSVNoHeaders(t *testing.T) {
	data, err := WriteCSV([][]string{{"only"}}, CSVOptions{})
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data[3:]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestParseDelimiter(t *testing.T) {
	assert.Equal(t, DelimiterComma, ParseDelimiter("comma"))
	assert.Equal(t, DelimiterTab, ParseDelimiter("tab"))
	assert.Equal(t, DelimiterSemicolon, ParseDelimiter("semicolon"))
	assert.Equal(t, DelimiterSemicolon, ParseDelimiter(""))
	assert.Equal(t, DelimiterSemicolon, ParseDelimiter("pipe"))
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 0", FormatRupiah(0))
	assert.Equal(t, "Rp 500", FormatRupiah(500))
	assert.Equal(t, "Rp 1.000", FormatRupiah(1000))
	assert.Equal(t, "Rp 1.234.567", FormatRupiah(1234567))
	assert.Equal(t, "Rp 25.000.000.000", FormatRupiah(25_000_000_000))
	assert.Equal(t, "Rp -1.500", FormatRupiah(-1500))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1.000", FormatNumber(1000))
	assert.Equal(t, "-12.345", FormatNumber(-12345))
}

func TestLocalizeDecimal(t *testing.T) {
	assert.Equal(t, "87,50%", LocalizeDecimal("87.50%"))
	assert.Equal(t, "100", LocalizeDecimal("100"))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "17 Agustus 2026", FormatDate(d))

	d = time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2 Januari 2026", FormatDate(d))
}
