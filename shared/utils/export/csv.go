package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Delimiter selects the CSV field separator.
type Delimiter rune

const (
	DelimiterComma     Delimiter = ','
	DelimiterSemicolon Delimiter = ';'
	DelimiterTab       Delimiter = '\t'
)

// ParseDelimiter maps a query-string value to a delimiter. Unknown
// values fall back to semicolon, which Indonesian-locale spreadsheets
// expect.
func ParseDelimiter(s string) Delimiter {
	switch s {
	case "comma":
		return DelimiterComma
	case "tab":
		return DelimiterTab
	default:
		return DelimiterSemicolon
	}
}

// CSVOptions configures a CSV export.
type CSVOptions struct {
	Headers   []string
	Delimiter Delimiter
}

// utf8BOM keeps spreadsheet applications from misreading the
// encoding; every export is UTF-8 with a byte-order mark.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV renders rows into a CSV byte slice per opts.
func WriteCSV(rows [][]string, opts CSVOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if opts.Delimiter != 0 {
		w.Comma = rune(opts.Delimiter)
	} else {
		w.Comma = rune(DelimiterSemicolon)
	}

	if len(opts.Headers) > 0 {
		if err := w.Write(opts.Headers); err != nil {
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// FormatRupiah renders an integer rupiah amount in id-ID style:
// "Rp 1.234.567". Negative amounts keep the sign before the prefix.
func FormatRupiah(amount int64) string {
	return "Rp " + FormatNumber(amount)
}

// FormatNumber groups digits with dots per the id-ID locale.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)

	return sign + strings.Join(groups, ".")
}

// LocalizeDecimal swaps the decimal point for the id-ID decimal comma.
func LocalizeDecimal(s string) string {
	return strings.ReplaceAll(s, ".", ",")
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDate renders a date as "2 Januari 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}
