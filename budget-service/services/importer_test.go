package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importHeader = "kode_program;nama_program;kode_kegiatan;nama_kegiatan;kode_sub_kegiatan;nama_sub_kegiatan;kode_rekening;nama_rekening;pagu"

func TestParseImportCSVValidFile(t *testing.T) {
	input := importHeader + "\n" +
		"1.01.01;Program Pendidikan;1.01.01.2.01;Pengelolaan SD;1.01.01.2.01.0001;Biaya Operasional;5.1.02.01.01.0024;Belanja ATK;25000000\n" +
		"1.01.01;Program Pendidikan;1.01.01.2.01;Pengelolaan SD;1.01.01.2.01.0001;Biaya Operasional;5.1.02.02.01.0003;Belanja Jasa;50000000\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "1.01.01", rows[0].ProgramCode)
	assert.Equal(t, "5.1.02.01.01.0024", rows[0].AccountCode)
	assert.Equal(t, int64(25_000_000), rows[0].Pagu)
	assert.Equal(t, int64(50_000_000), rows[1].Pagu)
}

func TestParseImportCSVCommaDelimited(t *testing.T) {
	input := strings.ReplaceAll(importHeader, ";", ",") + "\n" +
		"1.01.01,Program,1.01.01.2.01,Kegiatan,1.01.01.2.01.0001,Sub,5.1.02.01.01.0024,Rekening,1000\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1000), rows[0].Pagu)
}

func TestParseImportCSVBadAccountCode(t *testing.T) {
	// Five segments instead of six.
	input := importHeader + "\n" +
		"1.01.01;Program;1.01.01.2.01;Kegiatan;1.01.01.2.01.0001;Sub;5.1.1.1.1;Rekening;1000\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	assert.Nil(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, "kode_rekening", errs[0].Field)
	assert.Contains(t, errs[0].Message, "5.1.1.1.1")
}

func TestParseImportCSVNegativePagu(t *testing.T) {
	input := importHeader + "\n" +
		"1.01.01;Program;1.01.01.2.01;Kegiatan;1.01.01.2.01.0001;Sub;5.1.02.01.01.0024;Rekening;-500\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	assert.Nil(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, "pagu", errs[0].Field)
	assert.Contains(t, errs[0].Message, "negatif")
}

func TestParseImportCSVNonNumericPagu(t *testing.T) {
	input := importHeader + "\n" +
		"1.01.01;Program;1.01.01.2.01;Kegiatan;1.01.01.2.01.0001;Sub;5.1.02.01.01.0024;Rekening;2,5jt\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	assert.Nil(t, rows)
	require.NotEmpty(t, errs)
	assert.Equal(t, "pagu", errs[0].Field)
}

func TestParseImportCSVMissingFields(t *testing.T) {
	input := importHeader + "\n" +
		";Program;1.01.01.2.01;;1.01.01.2.01.0001;Sub;5.1.02.01.01.0024;Rekening;1000\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	assert.Nil(t, rows)
	require.Len(t, errs, 2)

	fields := []string{errs[0].Field, errs[1].Field}
	assert.Contains(t, fields, "kode_program")
	assert.Contains(t, fields, "nama_kegiatan")
}

func TestParseImportCSVCollectsAllErrors(t *testing.T) {
	input := importHeader + "\n" +
		"1.01.01;Program;1.01.01.2.01;Kegiatan;1.01.01.2.01.0001;Sub;bad-code;Rekening;1000\n" +
		"1.01.01;Program;1.01.01.2.01;Kegiatan;1.01.01.2.01.0001;Sub;5.1.02.01.01.0024;Rekening;abc\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	assert.Nil(t, rows)
	require.Len(t, errs, 2)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, 3, errs[1].Row)
}

func TestParseImportCSVWrongHeader(t *testing.T) {
	input := "program;nama;kegiatan;nama;sub;nama;rekening;nama;jumlah\n" +
		"1.01.01;Program;1.01.01.2.01;Kegiatan;1.01.01.2.01.0001;Sub;5.1.02.01.01.0024;Rekening;1000\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	assert.Nil(t, rows)
	require.NotEmpty(t, errs)
	assert.Equal(t, 1, errs[0].Row)
}

func TestParseImportCSVShortHeader(t *testing.T) {
	rows, errs := ParseImportCSV(strings.NewReader("kode_program;nama_program\n"))
	assert.Nil(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, "header", errs[0].Field)
}

func TestParseImportCSVEmptyFile(t *testing.T) {
	rows, errs := ParseImportCSV(strings.NewReader(""))
	assert.Nil(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, "file", errs[0].Field)
}

func TestParseImportCSVShortRow(t *testing.T) {
	input := importHeader + "\n" + "1.01.01;Program\n"

	rows, errs := ParseImportCSV(strings.NewReader(input))
	assert.Nil(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, "row", errs[0].Field)
}
