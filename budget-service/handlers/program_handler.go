package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models/budget"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
)

// CreateProgramRequest represents request body for creating a program
type CreateProgramRequest struct {
	Code       string `json:"code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	FiscalYear int    `json:"fiscal_year" binding:"required"`
}

// UpdateProgramRequest represents request body for updating a program
type UpdateProgramRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// GetPrograms retrieves programs with pagination and filtering
// @Summary Get programs
// @Description Get RKA programs with pagination, filtering, sorting and search
// @Tags rka
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 20)"
// @Param search query string false "Search term across code and name"
// @Param fiscal_year query int false "Filter by fiscal year"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/programs [get]
func GetPrograms(c *gin.Context) {
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

	allowedSortFields := map[string]string{
		"code":       "code",
		"name":       "name",
		"pagu":       "pagu",
		"created_at": "created_at",
	}

	dbQuery := query.ScopeToOrganization(db.Model(&budget.Program{}), orgID)
	dbQuery = query.ApplyFiscalYear(dbQuery, c)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"code", "name"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count programs",
			"message": err.Error(),
		})
		return
	}

	var programs []budget.Program
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&programs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve programs",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      programs,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// CreateProgram creates a new RKA program
// @Summary Create a program
// @Tags rka
// @Accept json
// @Produce json
// @Param program body CreateProgramRequest true "Program information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Code already exists for fiscal year"
// @Router /rka/programs [post]
func CreateProgram(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var existing budget.Program
	err := query.ScopeToOrganization(db, orgID).
		Where("code = ? AND fiscal_year = ?", req.Code, req.FiscalYear).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Program already exists",
			"message": "Program dengan kode tersebut sudah ada untuk tahun anggaran ini",
		})
		return
	}

	program := budget.Program{
		OrganizationID: orgID,
		Code:           req.Code,
		Name:           req.Name,
		FiscalYear:     req.FiscalYear,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&program).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "programs",
			EntityID:       &program.ID,
			Action:         "create",
			After:          program,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create program",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Program berhasil dibuat",
		"data":    program,
	})
}

// UpdateProgram updates an existing program
// @Summary Update a program
// @Tags rka
// @Accept json
// @Produce json
// @Param id path string true "Program ID" format(uuid)
// @Param program body UpdateProgramRequest true "Updated program information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/programs/{id} [put]
func UpdateProgram(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	programID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid program ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var program budget.Program
	if err := query.ScopeToOrganization(db, orgID).First(&program, programID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Program not found",
				"message": "Program tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve program",
			"message": err.Error(),
		})
		return
	}

	before := program
	if req.Code != "" {
		program.Code = req.Code
	}
	if req.Name != "" {
		program.Name = req.Name
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&program).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "programs",
			EntityID:       &program.ID,
			Action:         "update",
			Before:         before,
			After:          program,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update program",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Program berhasil diperbarui",
		"data":    program,
	})
}

// DeleteProgram deletes a program without activities
// @Summary Delete a program
// @Tags rka
// @Produce json
// @Param id path string true "Program ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Program has activities"
// @Router /rka/programs/{id} [delete]
func DeleteProgram(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	programID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid program ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var program budget.Program
	if err := query.ScopeToOrganization(db, orgID).First(&program, programID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Program not found",
				"message": "Program tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve program",
			"message": err.Error(),
		})
		return
	}

	var activityCount int64
	db.Model(&budget.Activity{}).Where("program_id = ?", programID).Count(&activityCount)
	if activityCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Program has activities",
			"message": "Program yang masih memiliki kegiatan tidak dapat dihapus",
		})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&program).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "programs",
			EntityID:       &program.ID,
			Action:         "delete",
			Before:         program,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete program",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Program berhasil dihapus",
	})
}
