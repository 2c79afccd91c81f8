package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/budget-service/services"
	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models/budget"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
)

// CreateActivityRequest represents request body for creating an activity
type CreateActivityRequest struct {
	ProgramID  uuid.UUID `json:"program_id" binding:"required"`
	Code       string    `json:"code" binding:"required"`
	Name       string    `json:"name" binding:"required"`
	FiscalYear int       `json:"fiscal_year" binding:"required"`
}

// UpdateActivityRequest represents request body for updating an activity
type UpdateActivityRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// GetActivities retrieves activities with pagination and filtering
// @Summary Get activities
// @Tags rka
// @Produce json
// @Param filters[program_id] query string false "Filter by program"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/activities [get]
func GetActivities(c *gin.Context) {
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

	allowedFilters := map[string]string{"program_id": "program_id"}
	allowedSortFields := map[string]string{
		"code":       "code",
		"name":       "name",
		"pagu":       "pagu",
		"created_at": "created_at",
	}

	dbQuery := query.ScopeToOrganization(db.Model(&budget.Activity{}), orgID)
	dbQuery = query.ApplyFiscalYear(dbQuery, c)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"code", "name"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count activities",
			"message": err.Error(),
		})
		return
	}

	var activities []budget.Activity
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&activities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve activities",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      activities,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// CreateActivity creates a new activity under a program
// @Summary Create an activity
// @Tags rka
// @Accept json
// @Produce json
// @Param activity body CreateActivityRequest true "Activity information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /rka/activities [post]
func CreateActivity(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	// Parent program must exist inside the caller's organization.
	var program budget.Program
	if err := query.ScopeToOrganization(db, orgID).First(&program, req.ProgramID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Program not found",
				"message": "Program induk tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate program",
			"message": err.Error(),
		})
		return
	}

	activity := budget.Activity{
		OrganizationID: orgID,
		ProgramID:      req.ProgramID,
		Code:           req.Code,
		Name:           req.Name,
		FiscalYear:     req.FiscalYear,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&activity).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "activities",
			EntityID:       &activity.ID,
			Action:         "create",
			After:          activity,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create activity",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Kegiatan berhasil dibuat",
		"data":    activity,
	})
}

// UpdateActivity updates an existing activity
// @Summary Update an activity
// @Tags rka
// @Accept json
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/activities/{id} [put]
func UpdateActivity(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid activity ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var activity budget.Activity
	if err := query.ScopeToOrganization(db, orgID).First(&activity, activityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Activity not found",
				"message": "Kegiatan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve activity",
			"message": err.Error(),
		})
		return
	}

	before := activity
	if req.Code != "" {
		activity.Code = req.Code
	}
	if req.Name != "" {
		activity.Name = req.Name
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&activity).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "activities",
			EntityID:       &activity.ID,
			Action:         "update",
			Before:         before,
			After:          activity,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update activity",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Kegiatan berhasil diperbarui",
		"data":    activity,
	})
}

// DeleteActivity deletes an activity without sub-activities
// @Summary Delete an activity
// @Tags rka
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/activities/{id} [delete]
func DeleteActivity(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid activity ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var activity budget.Activity
	if err := query.ScopeToOrganization(db, orgID).First(&activity, activityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Activity not found",
				"message": "Kegiatan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve activity",
			"message": err.Error(),
		})
		return
	}

	var subCount int64
	db.Model(&budget.SubActivity{}).Where("activity_id = ?", activityID).Count(&subCount)
	if subCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Activity has sub-activities",
			"message": "Kegiatan yang masih memiliki sub kegiatan tidak dapat dihapus",
		})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&activity).Error; err != nil {
			return err
		}
		if err := services.RecomputeProgram(tx, activity.ProgramID); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "activities",
			EntityID:       &activity.ID,
			Action:         "delete",
			Before:         activity,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete activity",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Kegiatan berhasil dihapus",
	})
}
