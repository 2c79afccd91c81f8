package handlers

import (
	"net/http"

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

// CreateSubActivityRequest represents request body for creating a sub-activity
type CreateSubActivityRequest struct {
	ActivityID uuid.UUID `json:"activity_id" binding:"required"`
	Code       string    `json:"code" binding:"required"`
	Name       string    `json:"name" binding:"required"`
	FiscalYear int       `json:"fiscal_year" binding:"required"`
}

// UpdateSubActivityRequest represents request body for updating a sub-activity
type UpdateSubActivityRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// GetSubActivities retrieves sub-activities with pagination and filtering
// @Summary Get sub-activities
// @Tags rka
// @Produce json
// @Param filters[activity_id] query string false "Filter by activity"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/sub-activities [get]
func GetSubActivities(c *gin.Context) {
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

	allowedFilters := map[string]string{"activity_id": "activity_id"}
	allowedSortFields := map[string]string{
		"code":       "code",
		"name":       "name",
		"pagu":       "pagu",
		"created_at": "created_at",
	}

	dbQuery := query.ScopeToOrganization(db.Model(&budget.SubActivity{}), orgID)
	dbQuery = query.ApplyFiscalYear(dbQuery, c)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"code", "name"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count sub-activities",
			"message": err.Error(),
		})
		return
	}

	var subActivities []budget.SubActivity
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&subActivities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve sub-activities",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      subActivities,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// CreateSubActivity creates a new sub-activity under an activity
// @Summary Create a sub-activity
// @Tags rka
// @Accept json
// @Produce json
// @Param subActivity body CreateSubActivityRequest true "Sub-activity information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /rka/sub-activities [post]
func CreateSubActivity(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	var req CreateSubActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var activity budget.Activity
	if err := query.ScopeToOrganization(db, orgID).First(&activity, req.ActivityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Activity not found",
				"message": "Kegiatan induk tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate activity",
			"message": err.Error(),
		})
		return
	}

	subActivity := budget.SubActivity{
		OrganizationID: orgID,
		ActivityID:     req.ActivityID,
		Code:           req.Code,
		Name:           req.Name,
		FiscalYear:     req.FiscalYear,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subActivity).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "sub_activities",
			EntityID:       &subActivity.ID,
			Action:         "create",
			After:          subActivity,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create sub-activity",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Sub kegiatan berhasil dibuat",
		"data":    subActivity,
	})
}

// UpdateSubActivity updates an existing sub-activity
// @Summary Update a sub-activity
// @Tags rka
// @Accept json
// @Produce json
// @Param id path string true "Sub-activity ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/sub-activities/{id} [put]
func UpdateSubActivity(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	subActivityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid sub-activity ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateSubActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var subActivity budget.SubActivity
	if err := query.ScopeToOrganization(db, orgID).First(&subActivity, subActivityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Sub-activity not found",
				"message": "Sub kegiatan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve sub-activity",
			"message": err.Error(),
		})
		return
	}

	before := subActivity
	if req.Code != "" {
		subActivity.Code = req.Code
	}
	if req.Name != "" {
		subActivity.Name = req.Name
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&subActivity).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "sub_activities",
			EntityID:       &subActivity.ID,
			Action:         "update",
			Before:         before,
			After:          subActivity,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update sub-activity",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sub kegiatan berhasil diperbarui",
		"data":    subActivity,
	})
}

// DeleteSubActivity deletes a sub-activity without accounts or NPDs
// @Summary Delete a sub-activity
// @Tags rka
// @Produce json
// @Param id path string true "Sub-activity ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /rka/sub-activities/{id} [delete]
func DeleteSubActivity(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	subActivityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid sub-activity ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var subActivity budget.SubActivity
	if err := query.ScopeToOrganization(db, orgID).First(&subActivity, subActivityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Sub-activity not found",
				"message": "Sub kegiatan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve sub-activity",
			"message": err.Error(),
		})
		return
	}

	var accountCount int64
	db.Model(&budget.Account{}).Where("sub_activity_id = ?", subActivityID).Count(&accountCount)
	if accountCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Sub-activity has accounts",
			"message": "Sub kegiatan yang masih memiliki rekening tidak dapat dihapus",
		})
		return
	}

	var npdCount int64
	db.Model(&npd.NPD{}).Where("sub_activity_id = ?", subActivityID).Count(&npdCount)
	if npdCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Sub-activity has documents",
			"message": "Sub kegiatan yang masih memiliki NPD tidak dapat dihapus",
		})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&subActivity).Error; err != nil {
			return err
		}
		if err := services.RecomputeActivity(tx, subActivity.ActivityID); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "sub_activities",
			EntityID:       &subActivity.ID,
			Action:         "delete",
			Before:         subActivity,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete sub-activity",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sub kegiatan berhasil dihapus",
	})
}
