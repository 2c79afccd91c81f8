package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/database/models/budget"
	npdmodels "sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
	"sinpd-backend/shared/utils/workflow"
)

// CreateNPDRequest represents request body for creating an NPD
type CreateNPDRequest struct {
	SubActivityID uuid.UUID         `json:"sub_activity_id" binding:"required"`
	Type          npdmodels.NPDType `json:"type" binding:"required"`
	Number        string            `json:"number"`
	Description   string            `json:"description"`
	FiscalYear    int               `json:"fiscal_year" binding:"required"`
}

// UpdateNPDRequest represents request body for updating NPD document fields
type UpdateNPDRequest struct {
	Number      string `json:"number"`
	Description string `json:"description"`
}

// NPDLineRequest represents request body for adding or updating a line item
type NPDLineRequest struct {
	AccountID   uuid.UUID `json:"account_id" binding:"required"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount" binding:"required"`
}

// loadNPD fetches a tenant-scoped NPD by path param, writing the error
// response itself on failure.
func loadNPD(c *gin.Context, orgID uuid.UUID, preload bool) (*npdmodels.NPD, bool) {
	npdID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid NPD ID format",
			"message": err.Error(),
		})
		return nil, false
	}

	dbQuery := query.ScopeToOrganization(database.DB, orgID)
	if preload {
		dbQuery = dbQuery.Preload("Lines").Preload("Lines.Account").Preload("Checklist")
	}

	var doc npdmodels.NPD
	if err := dbQuery.First(&doc, npdID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "NPD not found",
				"message": "Dokumen NPD tidak ditemukan",
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve NPD",
			"message": err.Error(),
		})
		return nil, false
	}
	return &doc, true
}

// requireEditable rejects mutations on documents past the editable
// statuses, and restricts them to the creator or an admin.
func requireEditable(c *gin.Context, ident *auth.Identity, doc *npdmodels.NPD) bool {
	if !workflow.CanEdit(workflow.Status(doc.Status)) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "NPD is not editable",
			"message": fmt.Sprintf("Dokumen berstatus %s tidak dapat diubah", doc.Status),
		})
		return false
	}
	if ident.Role != models.RoleAdmin && doc.CreatedBy != ident.UserID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Hanya pembuat dokumen yang dapat mengubahnya",
		})
		return false
	}
	return true
}

// GetNPDs retrieves NPD documents with pagination and filtering
// @Summary Get NPD documents
// @Tags npd
// @Produce json
// @Param filters[status] query string false "Filter by status"
// @Param filters[type] query string false "Filter by type"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd [get]
func GetNPDs(c *gin.Context) {
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

	allowedFilters := map[string]string{
		"status":          "status",
		"type":            "type",
		"sub_activity_id": "sub_activity_id",
		"created_by":      "created_by",
	}
	allowedSortFields := map[string]string{
		"number":     "number",
		"status":     "status",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	dbQuery := query.ScopeToOrganization(db.Model(&npdmodels.NPD{}), orgID)
	dbQuery = query.ApplyFiscalYear(dbQuery, c)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"number", "description"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count NPD documents",
			"message": err.Error(),
		})
		return
	}

	var docs []npdmodels.NPD
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).
		Preload("SubActivity").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve NPD documents",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      docs,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetNPD retrieves one NPD with its lines and checklist
// @Summary Get NPD by ID
// @Tags npd
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id} [get]
func GetNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	doc, ok := loadNPD(c, orgID, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"npd":            doc,
			"line_total":     doc.LineTotal(),
			"allowed_events": workflow.AllowedEvents(workflow.Status(doc.Status)),
		},
	})
}

// CreateNPD creates a draft NPD with its checklist instantiated from
// the document type's template
// @Summary Create an NPD
// @Tags npd
// @Accept json
// @Produce json
// @Param npd body CreateNPDRequest true "NPD information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /npd [post]
func CreateNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	var req CreateNPDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	if !npdmodels.ValidType(req.Type) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid NPD type",
			"message": "Jenis NPD harus salah satu dari UP, GU, TU, LS",
		})
		return
	}

	db := database.DB

	var subActivity budget.SubActivity
	if err := query.ScopeToOrganization(db, orgID).First(&subActivity, req.SubActivityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Sub-activity not found",
				"message": "Sub kegiatan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate sub-activity",
			"message": err.Error(),
		})
		return
	}

	doc := npdmodels.NPD{
		OrganizationID: orgID,
		SubActivityID:  req.SubActivityID,
		Number:         req.Number,
		Type:           req.Type,
		Status:         string(workflow.StatusDraft),
		Description:    req.Description,
		FiscalYear:     req.FiscalYear,
		Version:        1,
		CreatedBy:      ident.UserID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if doc.Number == "" {
			var seq int64
			if err := tx.Model(&npdmodels.NPD{}).
				Where("organization_id = ? AND type = ? AND fiscal_year = ?", orgID, req.Type, req.FiscalYear).
				Count(&seq).Error; err != nil {
				return err
			}
			doc.Number = fmt.Sprintf("NPD/%s/%04d/%d", req.Type, seq+1, req.FiscalYear)
		}

		if err := tx.Create(&doc).Error; err != nil {
			return err
		}

		for i, item := range npdmodels.ChecklistTemplate(req.Type) {
			entry := npdmodels.ChecklistItem{
				NPDID:    doc.ID,
				Label:    item.Label,
				Required: item.Required,
				Position: i,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd",
			EntityID:       &doc.ID,
			Action:         "create",
			After:          doc,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create NPD",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Dokumen NPD berhasil dibuat",
		"data":    doc,
	})
}

// UpdateNPD updates document fields of an editable NPD
// @Summary Update an NPD
// @Tags npd
// @Accept json
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id} [put]
func UpdateNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	doc, ok := loadNPD(c, orgID, false)
	if !ok {
		return
	}
	if !requireEditable(c, ident, doc) {
		return
	}

	var req UpdateNPDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	before := *doc
	if req.Number != "" {
		doc.Number = req.Number
	}
	if req.Description != "" {
		doc.Description = req.Description
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(doc).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd",
			EntityID:       &doc.ID,
			Action:         "update",
			Before:         before,
			After:          doc,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update NPD",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Dokumen NPD berhasil diperbarui",
		"data":    doc,
	})
}

// DeleteNPD deletes an editable NPD with its lines and checklist
// @Summary Delete an NPD
// @Tags npd
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id} [delete]
func DeleteNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	doc, ok := loadNPD(c, orgID, false)
	if !ok {
		return
	}
	if !requireEditable(c, ident, doc) {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("npd_id = ?", doc.ID).Delete(&npdmodels.Line{}).Error; err != nil {
			return err
		}
		if err := tx.Where("npd_id = ?", doc.ID).Delete(&npdmodels.ChecklistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(doc).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd",
			EntityID:       &doc.ID,
			Action:         "delete",
			Before:         doc,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete NPD",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Dokumen NPD berhasil dihapus",
	})
}

// AddNPDLine adds a line item to an editable NPD
// @Summary Add an NPD line item
// @Tags npd
// @Accept json
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Param line body NPDLineRequest true "Line item"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /npd/{id}/lines [post]
func AddNPDLine(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	doc, ok := loadNPD(c, orgID, false)
	if !ok {
		return
	}
	if !requireEditable(c, ident, doc) {
		return
	}

	var req NPDLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid amount",
			"message": "Jumlah rincian harus lebih dari nol",
		})
		return
	}

	db := database.DB

	// The referenced account must sit under the NPD's sub-activity.
	var account budget.Account
	if err := query.ScopeToOrganization(db, orgID).
		Where("sub_activity_id = ?", doc.SubActivityID).
		First(&account, req.AccountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Account not found",
				"message": "Rekening tidak ditemukan pada sub kegiatan NPD ini",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate account",
			"message": err.Error(),
		})
		return
	}

	line := npdmodels.Line{
		NPDID:       doc.ID,
		AccountID:   req.AccountID,
		Description: req.Description,
		Amount:      req.Amount,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd_lines",
			EntityID:       &line.ID,
			Action:         "create",
			After:          line,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add line item",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Rincian NPD berhasil ditambahkan",
		"data":    line,
	})
}

// UpdateNPDLine updates a line item on an editable NPD
// @Summary Update an NPD line item
// @Tags npd
// @Accept json
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id}/lines/{lineId} [put]
func UpdateNPDLine(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	doc, ok := loadNPD(c, orgID, false)
	if !ok {
		return
	}
	if !requireEditable(c, ident, doc) {
		return
	}

	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid line ID format",
			"message": err.Error(),
		})
		return
	}

	var req NPDLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid amount",
			"message": "Jumlah rincian harus lebih dari nol",
		})
		return
	}

	db := database.DB

	var line npdmodels.Line
	if err := db.Where("npd_id = ?", doc.ID).First(&line, lineID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Line item not found",
				"message": "Rincian NPD tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve line item",
			"message": err.Error(),
		})
		return
	}

	var account budget.Account
	if err := query.ScopeToOrganization(db, orgID).
		Where("sub_activity_id = ?", doc.SubActivityID).
		First(&account, req.AccountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Account not found",
				"message": "Rekening tidak ditemukan pada sub kegiatan NPD ini",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate account",
			"message": err.Error(),
		})
		return
	}

	before := line
	line.AccountID = req.AccountID
	line.Description = req.Description
	line.Amount = req.Amount

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&line).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd_lines",
			EntityID:       &line.ID,
			Action:         "update",
			Before:         before,
			After:          line,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update line item",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rincian NPD berhasil diperbarui",
		"data":    line,
	})
}

// DeleteNPDLine removes a line item from an editable NPD
// @Summary Delete an NPD line item
// @Tags npd
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id}/lines/{lineId} [delete]
func DeleteNPDLine(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	doc, ok := loadNPD(c, orgID, false)
	if !ok {
		return
	}
	if !requireEditable(c, ident, doc) {
		return
	}

	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid line ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var line npdmodels.Line
	if err := db.Where("npd_id = ?", doc.ID).First(&line, lineID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Line item not found",
				"message": "Rincian NPD tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve line item",
			"message": err.Error(),
		})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&line).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd_lines",
			EntityID:       &line.ID,
			Action:         "delete",
			Before:         line,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete line item",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rincian NPD berhasil dihapus",
	})
}
