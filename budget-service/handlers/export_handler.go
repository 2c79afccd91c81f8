package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models/budget"
	npdmodels "sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/export"
	"sinpd-backend/shared/utils/query"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// sendExport writes the rendered file with an attachment disposition.
func sendExport(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

// ExportNPD exports the organization's NPD documents as CSV or XLSX
// @Summary Export NPD documents
// @Tags export
// @Produce octet-stream
// @Param format query string false "csv or xlsx" default(csv)
// @Param delimiter query string false "comma, semicolon or tab" default(semicolon)
// @Param fiscal_year query int false "Fiscal year filter"
// @Security BearerAuth
// @Success 200 {file} file
// @Router /export/npd [get]
func ExportNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	dbQuery := query.ScopeToOrganization(database.DB, orgID)
	dbQuery = query.ApplyFiscalYear(dbQuery, c)
	if status := c.Query("status"); status != "" {
		dbQuery = dbQuery.Where("status = ?", status)
	}

	var docs []npdmodels.NPD
	if err := dbQuery.Preload("SubActivity").Preload("Lines").
		Order("created_at asc").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve NPD documents",
			"message": err.Error(),
		})
		return
	}

	headers := []string{"Nomor", "Jenis", "Status", "Sub Kegiatan", "Jumlah", "Tanggal Dibuat"}
	filename := fmt.Sprintf("npd-%s", time.Now().Format("20060102"))

	if c.DefaultQuery("format", "csv") == "xlsx" {
		rows := make([][]interface{}, 0, len(docs))
		for _, doc := range docs {
			rows = append(rows, []interface{}{
				doc.Number,
				string(doc.Type),
				doc.Status,
				doc.SubActivity.Name,
				doc.LineTotal(),
				export.FormatDate(doc.CreatedAt),
			})
		}
		data, err := export.WriteExcel(rows, export.ExcelOptions{
			SheetName:    "NPD",
			Headers:      headers,
			ColumnWidths: []float64{24, 8, 14, 36, 18, 20},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to render workbook",
				"message": err.Error(),
			})
			return
		}
		sendExport(c, filename+".xlsx", contentTypeXLSX, data)
		return
	}

	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, []string{
			doc.Number,
			string(doc.Type),
			doc.Status,
			doc.SubActivity.Name,
			export.FormatRupiah(doc.LineTotal()),
			export.FormatDate(doc.CreatedAt),
		})
	}
	data, err := export.WriteCSV(rows, export.CSVOptions{
		Headers:   headers,
		Delimiter: export.ParseDelimiter(c.Query("delimiter")),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to render CSV",
			"message": err.Error(),
		})
		return
	}
	sendExport(c, filename+".csv", contentTypeCSV, data)
}

// ExportRealisasi exports per-account budget realization as CSV or XLSX
// @Summary Export budget realization
// @Tags export
// @Produce octet-stream
// @Param format query string false "csv or xlsx" default(csv)
// @Param delimiter query string false "comma, semicolon or tab" default(semicolon)
// @Param fiscal_year query int false "Fiscal year filter"
// @Security BearerAuth
// @Success 200 {file} file
// @Router /export/realisasi [get]
func ExportRealisasi(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	dbQuery := query.ScopeToOrganization(database.DB, orgID)
	dbQuery = query.ApplyFiscalYear(dbQuery, c)

	var accounts []budget.Account
	if err := dbQuery.Order("code asc").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve accounts",
			"message": err.Error(),
		})
		return
	}

	headers := []string{"Kode Rekening", "Nama Rekening", "Pagu", "Realisasi", "Sisa", "Persentase"}
	filename := fmt.Sprintf("realisasi-%s", time.Now().Format("20060102"))

	percentage := func(a budget.Account) string {
		if a.Pagu == 0 {
			return "0,00%"
		}
		pct := float64(a.Realisasi) / float64(a.Pagu) * 100
		s := fmt.Sprintf("%.2f%%", pct)
		// id-ID decimal comma
		return export.LocalizeDecimal(s)
	}

	if c.DefaultQuery("format", "csv") == "xlsx" {
		rows := make([][]interface{}, 0, len(accounts))
		for _, account := range accounts {
			rows = append(rows, []interface{}{
				account.Code,
				account.Name,
				account.Pagu,
				account.Realisasi,
				account.Sisa(),
				percentage(account),
			})
		}
		data, err := export.WriteExcel(rows, export.ExcelOptions{
			SheetName:    "Realisasi",
			Headers:      headers,
			ColumnWidths: []float64{20, 42, 18, 18, 18, 12},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to render workbook",
				"message": err.Error(),
			})
			return
		}
		sendExport(c, filename+".xlsx", contentTypeXLSX, data)
		return
	}

	rows := make([][]string, 0, len(accounts))
	for _, account := range accounts {
		rows = append(rows, []string{
			account.Code,
			account.Name,
			export.FormatRupiah(account.Pagu),
			export.FormatRupiah(account.Realisasi),
			export.FormatRupiah(account.Sisa()),
			percentage(account),
		})
	}
	data, err := export.WriteCSV(rows, export.CSVOptions{
		Headers:   headers,
		Delimiter: export.ParseDelimiter(c.Query("delimiter")),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to render CSV",
			"message": err.Error(),
		})
		return
	}
	sendExport(c, filename+".csv", contentTypeCSV, data)
}
