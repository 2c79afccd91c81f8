package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/budget-service/services"
	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models/budget"
	"sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
)

// rekeningPattern is the 6-segment account code format, shared with
// the CSV importer.
var rekeningPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+\.\d+\.\d+$`)

// CreateAccountRequest represents request body for creating an account
type CreateAccountRequest struct {
	SubActivityID uuid.UUID `json:"sub_activity_id" binding:"required"`
	Code          string    `json:"code" binding:"required"`
	Name          string    `json:"name" binding:"required"`
	FiscalYear    int       `json:"fiscal_year" binding:"required"`
	Pagu          int64     `json:"pagu"`
}

// UpdateAccountRequest represents request body for updating an account
type UpdateAccountRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Pagu *int64 `json:"pagu"`
}

// GetAccounts retrieves accounts with pagination and filtering
// @Summary Get accounts
// @Tags rka
// @Produce json
// @Param filters[sub_activity_id] query string false "Filter by sub-activity"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/accounts [get]
func GetAccounts(c *gin.Context) {
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

	allowedFilters := map[string]string{"sub_activity_id": "sub_activity_id"}
	allowedSortFields := map[string]string{
		"code":       "code",
		"name":       "name",
		"pagu":       "pagu",
		"realisasi":  "realisasi",
		"created_at": "created_at",
	}

	dbQuery := query.ScopeToOrganization(db.Model(&budget.Account{}), orgID)
	dbQuery = query.ApplyFiscalYear(dbQuery, c)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"code", "name"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count accounts",
			"message": err.Error(),
		})
		return
	}

	var accounts []budget.Account
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve accounts",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      accounts,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// CreateAccount creates a new account under a sub-activity
// @Summary Create an account
// @Tags rka
// @Accept json
// @Produce json
// @Param account body CreateAccountRequest true "Account information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "Invalid account code format"
// @Router /rka/accounts [post]
func CreateAccount(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	if !rekeningPattern.MatchString(req.Code) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid account code",
			"message": "Format kode rekening tidak valid (harus 6 segmen angka dipisah titik)",
		})
		return
	}
	if req.Pagu < 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid pagu",
			"message": "Pagu tidak boleh negatif",
		})
		return
	}

	db := database.DB

	var subActivity budget.SubActivity
	if err := query.ScopeToOrganization(db, orgID).First(&subActivity, req.SubActivityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Sub-activity not found",
				"message": "Sub kegiatan induk tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate sub-activity",
			"message": err.Error(),
		})
		return
	}

	account := budget.Account{
		OrganizationID: orgID,
		SubActivityID:  req.SubActivityID,
		Code:           req.Code,
		Name:           req.Name,
		FiscalYear:     req.FiscalYear,
		Pagu:           req.Pagu,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		if err := services.RecomputeSubActivity(tx, account.SubActivityID); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "accounts",
			EntityID:       &account.ID,
			Action:         "create",
			After:          account,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create account",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Rekening berhasil dibuat",
		"data":    account,
	})
}

// UpdateAccount updates an existing account
// @Summary Update an account
// @Tags rka
// @Accept json
// @Produce json
// @Param id path string true "Account ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/accounts/{id} [put]
func UpdateAccount(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid account ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	if req.Code != "" && !rekeningPattern.MatchString(req.Code) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid account code",
			"message": "Format kode rekening tidak valid (harus 6 segmen angka dipisah titik)",
		})
		return
	}
	if req.Pagu != nil && *req.Pagu < 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid pagu",
			"message": "Pagu tidak boleh negatif",
		})
		return
	}

	db := database.DB

	var account budget.Account
	if err := query.ScopeToOrganization(db, orgID).First(&account, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Account not found",
				"message": "Rekening tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve account",
			"message": err.Error(),
		})
		return
	}

	before := account
	if req.Code != "" {
		account.Code = req.Code
	}
	if req.Name != "" {
		account.Name = req.Name
	}
	if req.Pagu != nil {
		account.Pagu = *req.Pagu
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&account).Error; err != nil {
			return err
		}
		if err := services.RecomputeSubActivity(tx, account.SubActivityID); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "accounts",
			EntityID:       &account.ID,
			Action:         "update",
			Before:         before,
			After:          account,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update account",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rekening berhasil diperbarui",
		"data":    account,
	})
}

// DeleteAccount deletes an account not referenced by NPD lines
// @Summary Delete an account
// @Tags rka
// @Produce json
// @Param id path string true "Account ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/accounts/{id} [delete]
func DeleteAccount(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid account ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var account budget.Account
	if err := query.ScopeToOrganization(db, orgID).First(&account, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Account not found",
				"message": "Rekening tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve account",
			"message": err.Error(),
		})
		return
	}

	var lineCount int64
	db.Model(&npd.Line{}).Where("account_id = ?", accountID).Count(&lineCount)
	if lineCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Account is referenced",
			"message": "Rekening yang masih dipakai rincian NPD tidak dapat dihapus",
		})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&account).Error; err != nil {
			return err
		}
		if err := services.RecomputeSubActivity(tx, account.SubActivityID); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "accounts",
			EntityID:       &account.ID,
			Action:         "delete",
			Before:         account,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete account",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rekening berhasil dihapus",
	})
}
