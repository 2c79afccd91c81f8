package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"sinpd-backend/budget-service/services"
	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
)

// maxImportFileSize bounds the uploaded CSV at 10 MB.
const maxImportFileSize = 10 << 20

// ImportRKA imports the RKA hierarchy from an uploaded CSV file. The
// whole file is validated first; any row error rejects the import with
// zero writes.
// @Summary Import RKA from CSV
// @Tags rka
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file (semicolon or comma delimited)"
// @Param fiscal_year formData int true "Fiscal year"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "Row validation errors"
// @Router /rka/import [post]
func ImportRKA(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	if !config.GetConfig().CSVImportEnabled {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "CSV import disabled",
			"message": "Fitur impor CSV sedang dinonaktifkan",
		})
		return
	}

	fiscalYear, err := strconv.Atoi(c.PostForm("fiscal_year"))
	if err != nil || fiscalYear < 2000 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid fiscal year",
			"message": "Tahun anggaran wajib diisi dengan angka yang valid",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing file",
			"message": "Berkas CSV wajib dilampirkan",
		})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "File too large",
			"message": "Ukuran berkas melebihi batas 10 MB",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to open file",
			"message": err.Error(),
		})
		return
	}
	defer file.Close()

	rows, rowErrors := services.ParseImportCSV(file)
	if len(rowErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Import validation failed",
			"message": "Berkas mengandung kesalahan, tidak ada data yang disimpan",
			"data":    gin.H{"errors": rowErrors},
		})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Empty import",
			"message": "Berkas tidak berisi baris data",
		})
		return
	}

	var result *services.ImportResult
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = services.WriteImport(tx, orgID, fiscalYear, rows)
		if txErr != nil {
			return txErr
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "rka_import",
			Action:         "import",
			After:          result,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to import RKA",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Impor RKA berhasil",
		"data":    result,
	})
}
