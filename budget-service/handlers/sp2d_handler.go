package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/clients"
	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/database/models/budget"
	npdmodels "sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/database/models/notification"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/distribution"
	"sinpd-backend/shared/utils/export"
	"sinpd-backend/shared/utils/query"
	"sinpd-backend/shared/utils/workflow"
)

// CreateSP2DRequest represents request body for issuing an SP2D
type CreateSP2DRequest struct {
	NPDID      uuid.UUID `json:"npd_id" binding:"required"`
	Number     string    `json:"number" binding:"required"`
	Amount     int64     `json:"amount" binding:"required"`
	IssuedDate string    `json:"issued_date" binding:"required"` // YYYY-MM-DD
}

// requireIssuer restricts SP2D issuance and deletion to bendahara and
// admin.
func requireIssuer(c *gin.Context, ident *auth.Identity) bool {
	if ident.Role != models.RoleAdmin && ident.Role != models.RoleBendahara {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Hanya bendahara yang dapat mengelola SP2D",
		})
		return false
	}
	return true
}

// lineOrder pins the order NPD lines are preloaded in. Distribution
// assigns the truncation remainder positionally, so issuance and
// reversal must see the lines in the same order or a tie on the
// largest weight reverses the remainder against the wrong line.
func lineOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc, id asc")
}

// distributeToLines computes per-line shares of amount proportional to
// each line's requested amount. Deterministic for a finalized NPD:
// lines are locked and read in lineOrder, so the same shares come back
// on reversal.
func distributeToLines(lines []npdmodels.Line, amount int64) ([]int64, error) {
	weights := make([]int64, len(lines))
	for i, line := range lines {
		weights[i] = line.Amount
	}
	return distribution.Distribute(amount, weights)
}

// GetSP2Ds retrieves SP2D records with pagination
// @Summary Get SP2D records
// @Tags sp2d
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /sp2d [get]
func GetSP2Ds(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	db := database.DB
	params := query.ParseQueryParams(c)

	allowedFilters := map[string]string{"npd_id": "npd_id"}
	allowedSortFields := map[string]string{
		"number":      "number",
		"amount":      "amount",
		"issued_date": "issued_date",
		"created_at":  "created_at",
	}

	dbQuery := query.ScopeToOrganization(db.Model(&npdmodels.SP2D{}), orgID)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"number"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count SP2D records",
			"message": err.Error(),
		})
		return
	}

	var records []npdmodels.SP2D
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).
		Preload("NPD").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve SP2D records",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      records,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetSP2D retrieves one SP2D record
// @Summary Get SP2D by ID
// @Tags sp2d
// @Produce json
// @Param id path string true "SP2D ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /sp2d/{id} [get]
func GetSP2D(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	sp2dID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid SP2D ID format",
			"message": err.Error(),
		})
		return
	}

	var record npdmodels.SP2D
	if err := query.ScopeToOrganization(database.DB, orgID).
		Preload("NPD").Preload("NPD.Lines").First(&record, sp2dID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "SP2D not found",
				"message": "SP2D tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve SP2D",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// CreateSP2D issues an SP2D against a final NPD, distributing the
// amount across the NPD's line items proportionally and adding each
// share to its account's realisasi
// @Summary Issue an SP2D
// @Tags sp2d
// @Accept json
// @Produce json
// @Param sp2d body CreateSP2DRequest true "SP2D information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "NPD not final or already has an SP2D"
// @Router /sp2d [post]
func CreateSP2D(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}
	if !requireIssuer(c, ident) {
		return
	}

	var req CreateSP2DRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	issuedDate, err := time.Parse("2006-01-02", req.IssuedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid issued date",
			"message": "Tanggal terbit harus berformat YYYY-MM-DD",
		})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid amount",
			"message": "Jumlah SP2D harus lebih dari nol",
		})
		return
	}

	db := database.DB

	var doc npdmodels.NPD
	if err := query.ScopeToOrganization(db, orgID).
		Preload("Lines", lineOrder).First(&doc, req.NPDID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "NPD not found",
				"message": "Dokumen NPD tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve NPD",
			"message": err.Error(),
		})
		return
	}

	if workflow.Status(doc.Status) != workflow.StatusFinal {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "NPD is not final",
			"message": "SP2D hanya dapat diterbitkan untuk NPD berstatus final",
		})
		return
	}

	var existing int64
	db.Model(&npdmodels.SP2D{}).Where("npd_id = ?", doc.ID).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "SP2D already issued",
			"message": "NPD ini sudah memiliki SP2D",
		})
		return
	}

	if total := doc.LineTotal(); req.Amount > total {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Amount exceeds line total",
			"message": fmt.Sprintf("Jumlah SP2D (%d) melebihi total rincian NPD (%d)", req.Amount, total),
		})
		return
	}

	shares, err := distributeToLines(doc.Lines, req.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to distribute amount",
			"message": err.Error(),
		})
		return
	}

	record := npdmodels.SP2D{
		OrganizationID: orgID,
		NPDID:          doc.ID,
		Number:         req.Number,
		Amount:         req.Amount,
		IssuedDate:     issuedDate,
		IssuedBy:       ident.UserID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for i, line := range doc.Lines {
			if shares[i] == 0 {
				continue
			}
			if err := tx.Model(&npdmodels.Line{}).Where("id = ?", line.ID).
				UpdateColumn("disbursed", gorm.Expr("disbursed + ?", shares[i])).Error; err != nil {
				return err
			}
			if err := tx.Model(&budget.Account{}).Where("id = ?", line.AccountID).
				UpdateColumn("realisasi", gorm.Expr("realisasi + ?", shares[i])).Error; err != nil {
				return err
			}
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "sp2d",
			EntityID:       &record.ID,
			Action:         "create",
			After:          record,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to issue SP2D",
			"message": err.Error(),
		})
		return
	}

	notifyUser(doc.CreatedBy, clients.WorkflowNotificationRequest{
		OrganizationID: orgID,
		Type:           "sp2d_issued",
		Level:          notification.NotificationLevelSuccess,
		Title:          "SP2D terbit",
		Message:        fmt.Sprintf("SP2D %s telah terbit untuk NPD %s", record.Number, doc.Number),
		Entity:         "sp2d",
		EntityID:       &record.ID,
	}, map[string]interface{}{
		"SP2DNumber": record.Number,
		"NPDNumber":  doc.Number,
		"Amount":     export.FormatRupiah(record.Amount),
		"Link":       npdLink(doc.ID),
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "SP2D berhasil diterbitkan",
		"data":    record,
	})
}

// DeleteSP2D performs a corrective deletion, reversing the disbursed
// amounts it applied to line items and account realisasi
// @Summary Delete an SP2D
// @Tags sp2d
// @Produce json
// @Param id path string true "SP2D ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /sp2d/{id} [delete]
func DeleteSP2D(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}
	if !requireIssuer(c, ident) {
		return
	}

	sp2dID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid SP2D ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var record npdmodels.SP2D
	if err := query.ScopeToOrganization(db, orgID).
		Preload("NPD").Preload("NPD.Lines", lineOrder).First(&record, sp2dID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "SP2D not found",
				"message": "SP2D tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve SP2D",
			"message": err.Error(),
		})
		return
	}

	// Finalized NPD lines are immutable and both reads use lineOrder,
	// so recomputing the shares reproduces exactly what issuance
	// applied.
	shares, err := distributeToLines(record.NPD.Lines, record.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute reversal",
			"message": err.Error(),
		})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i, line := range record.NPD.Lines {
			if shares[i] == 0 {
				continue
			}
			if err := tx.Model(&npdmodels.Line{}).Where("id = ?", line.ID).
				UpdateColumn("disbursed", gorm.Expr("disbursed - ?", shares[i])).Error; err != nil {
				return err
			}
			if err := tx.Model(&budget.Account{}).Where("id = ?", line.AccountID).
				UpdateColumn("realisasi", gorm.Expr("realisasi - ?", shares[i])).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&npdmodels.SP2D{}, record.ID).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "sp2d",
			EntityID:       &record.ID,
			Action:         "delete",
			Before:         record,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete SP2D",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "SP2D berhasil dihapus dan realisasi dikembalikan",
	})
}
