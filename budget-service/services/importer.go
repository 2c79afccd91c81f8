package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/database/models/budget"
)

// CSV batch import of the RKA hierarchy. The whole file is validated
// before anything is written; any validation failure rejects the
// import with an aggregated error list and zero writes. The write
// pass then runs in one transaction, inserting in fixed-size batches,
// so a write failure rolls the entire import back.

// importBatchSize bounds the rows per INSERT statement.
const importBatchSize = 50

// accountCodePattern is the 6-segment rekening code format.
var accountCodePattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+\.\d+\.\d+$`)

// ImportRow is one parsed CSV row.
type ImportRow struct {
	Row             int
	ProgramCode     string
	ProgramName     string
	ActivityCode    string
	ActivityName    string
	SubActivityCode string
	SubActivityName string
	AccountCode     string
	AccountName     string
	Pagu            int64
}

// RowError is one validation failure, addressed by row and field.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult summarises a completed import.
type ImportResult struct {
	Programs      int `json:"programs"`
	Activities    int `json:"activities"`
	SubActivities int `json:"sub_activities"`
	Accounts      int `json:"accounts"`
}

// importColumns is the required header, in order.
var importColumns = []string{
	"kode_program", "nama_program",
	"kode_kegiatan", "nama_kegiatan",
	"kode_sub_kegiatan", "nama_sub_kegiatan",
	"kode_rekening", "nama_rekening",
	"pagu",
}

var columnLabels = map[int]string{
	0: "kode_program", 1: "nama_program",
	2: "kode_kegiatan", 3: "nama_kegiatan",
	4: "kode_sub_kegiatan", 5: "nama_sub_kegiatan",
	6: "kode_rekening", 7: "nama_rekening",
	8: "pagu",
}

// ParseImportCSV reads and validates the whole file. The returned
// rows are only meaningful when the error list is empty.
func ParseImportCSV(r io.Reader) ([]ImportRow, []RowError) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []RowError{{Row: 0, Field: "file", Message: fmt.Sprintf("file CSV tidak dapat dibaca: %v", err)}}
	}
	if len(records) == 0 {
		return nil, []RowError{{Row: 0, Field: "file", Message: "file CSV kosong"}}
	}

	// Comma-delimited files are tolerated: re-split when the first
	// row came out as a single field containing commas.
	if len(records[0]) == 1 && strings.Contains(records[0][0], ",") {
		for i := range records {
			records[i] = strings.Split(records[i][0], ",")
		}
	}

	header := records[0]
	if errs := validateHeader(header); len(errs) > 0 {
		return nil, errs
	}

	var rows []ImportRow
	var errs []RowError
	for i, record := range records[1:] {
		rowNum := i + 2 // 1-based, after the header
		row, rowErrs := parseRow(rowNum, record)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		rows = append(rows, row)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return rows, nil
}

func validateHeader(header []string) []RowError {
	if len(header) < len(importColumns) {
		return []RowError{{
			Row:     1,
			Field:   "header",
			Message: fmt.Sprintf("kolom tidak lengkap: butuh %d kolom, ditemukan %d", len(importColumns), len(header)),
		}}
	}

	var errs []RowError
	for i, want := range importColumns {
		got := strings.ToLower(strings.TrimSpace(header[i]))
		if got != want {
			errs = append(errs, RowError{
				Row:     1,
				Field:   want,
				Message: fmt.Sprintf("kolom ke-%d harus '%s', ditemukan '%s'", i+1, want, got),
			})
		}
	}
	return errs
}

func parseRow(rowNum int, record []string) (ImportRow, []RowError) {
	var errs []RowError

	if len(record) < len(importColumns) {
		return ImportRow{}, []RowError{{
			Row:     rowNum,
			Field:   "row",
			Message: fmt.Sprintf("jumlah kolom tidak sesuai: butuh %d, ditemukan %d", len(importColumns), len(record)),
		}}
	}

	fields := make([]string, len(importColumns))
	for i := range importColumns {
		fields[i] = strings.TrimSpace(record[i])
		if fields[i] == "" {
			errs = append(errs, RowError{
				Row:     rowNum,
				Field:   columnLabels[i],
				Message: "kolom wajib diisi",
			})
		}
	}

	row := ImportRow{
		Row:             rowNum,
		ProgramCode:     fields[0],
		ProgramName:     fields[1],
		ActivityCode:    fields[2],
		ActivityName:    fields[3],
		SubActivityCode: fields[4],
		SubActivityName: fields[5],
		AccountCode:     fields[6],
		AccountName:     fields[7],
	}

	if row.AccountCode != "" && !accountCodePattern.MatchString(row.AccountCode) {
		errs = append(errs, RowError{
			Row:     rowNum,
			Field:   "kode_rekening",
			Message: fmt.Sprintf("format kode rekening tidak valid: '%s' (harus 6 segmen angka dipisah titik)", row.AccountCode),
		})
	}

	if fields[8] != "" {
		pagu, err := strconv.ParseInt(fields[8], 10, 64)
		switch {
		case err != nil:
			errs = append(errs, RowError{
				Row:     rowNum,
				Field:   "pagu",
				Message: fmt.Sprintf("pagu harus berupa angka bulat: '%s'", fields[8]),
			})
		case pagu < 0:
			errs = append(errs, RowError{
				Row:     rowNum,
				Field:   "pagu",
				Message: "pagu tidak boleh negatif",
			})
		default:
			row.Pagu = pagu
		}
	}

	if len(errs) > 0 {
		return ImportRow{}, errs
	}
	return row, nil
}

// WriteImport inserts the validated rows. Hierarchy nodes are grouped
// by code so duplicate program/activity/sub-activity rows collapse to
// one node each; accounts are inserted in fixed-size batches. The
// whole write runs in a single transaction.
func WriteImport(db *gorm.DB, organizationID uuid.UUID, fiscalYear int, rows []ImportRow) (*ImportResult, error) {
	result := &ImportResult{}

	err := db.Transaction(func(tx *gorm.DB) error {
		programs := map[string]*budget.Program{}
		activities := map[string]*budget.Activity{}
		subActivities := map[string]*budget.SubActivity{}

		for _, row := range rows {
			if _, ok := programs[row.ProgramCode]; !ok {
				programs[row.ProgramCode] = &budget.Program{
					OrganizationID: organizationID,
					Code:           row.ProgramCode,
					Name:           row.ProgramName,
					FiscalYear:     fiscalYear,
				}
			}

			activityKey := row.ProgramCode + "|" + row.ActivityCode
			if _, ok := activities[activityKey]; !ok {
				activities[activityKey] = &budget.Activity{
					OrganizationID: organizationID,
					Code:           row.ActivityCode,
					Name:           row.ActivityName,
					FiscalYear:     fiscalYear,
				}
			}

			subKey := activityKey + "|" + row.SubActivityCode
			if _, ok := subActivities[subKey]; !ok {
				subActivities[subKey] = &budget.SubActivity{
					OrganizationID: organizationID,
					Code:           row.SubActivityCode,
					Name:           row.SubActivityName,
					FiscalYear:     fiscalYear,
				}
			}
		}

		for _, program := range programs {
			if err := tx.Create(program).Error; err != nil {
				return fmt.Errorf("failed to insert program %s: %w", program.Code, err)
			}
		}
		for key, activity := range activities {
			programCode := strings.SplitN(key, "|", 2)[0]
			activity.ProgramID = programs[programCode].ID
			if err := tx.Create(activity).Error; err != nil {
				return fmt.Errorf("failed to insert activity %s: %w", activity.Code, err)
			}
		}
		for key, sub := range subActivities {
			parts := strings.SplitN(key, "|", 3)
			sub.ActivityID = activities[parts[0]+"|"+parts[1]].ID
			if err := tx.Create(sub).Error; err != nil {
				return fmt.Errorf("failed to insert sub-activity %s: %w", sub.Code, err)
			}
		}

		accounts := make([]budget.Account, 0, len(rows))
		for _, row := range rows {
			subKey := row.ProgramCode + "|" + row.ActivityCode + "|" + row.SubActivityCode
			accounts = append(accounts, budget.Account{
				OrganizationID: organizationID,
				SubActivityID:  subActivities[subKey].ID,
				Code:           row.AccountCode,
				Name:           row.AccountName,
				FiscalYear:     fiscalYear,
				Pagu:           row.Pagu,
			})
		}

		if err := tx.CreateInBatches(accounts, importBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert accounts: %w", err)
		}

		// Recompute pagu aggregates bottom-up for the imported branches.
		for _, sub := range subActivities {
			if err := RecomputeSubActivity(tx, sub.ID); err != nil {
				return err
			}
		}

		result.Programs = len(programs)
		result.Activities = len(activities)
		result.SubActivities = len(subActivities)
		result.Accounts = len(accounts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
