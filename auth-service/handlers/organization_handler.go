package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
)

// GetOrganizations lists active organizations
// @Summary Get organizations
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /organizations [get]
func GetOrganizations(c *gin.Context) {
	if _, ok := auth.RequireIdentity(c); !ok {
		return
	}

	db := database.DB
	params := query.ParseQueryParams(c)

	dbQuery := db.Model(&models.Organization{}).Where("status = ?", "ACTIVE")
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"name", "slug"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, map[string]string{
		"name":       "name",
		"created_at": "created_at",
	})

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count organizations",
			"message": err.Error(),
		})
		return
	}

	var orgs []models.Organization
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&orgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organizations",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      orgs,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetOrganization retrieves one organization
// @Summary Get organization by ID
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /organizations/{id} [get]
func GetOrganization(c *gin.Context) {
	if _, ok := auth.RequireIdentity(c); !ok {
		return
	}

	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID format",
			"message": err.Error(),
		})
		return
	}

	var org models.Organization
	if err := database.DB.First(&org, orgID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Organization not found",
				"message": "Organisasi tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    org,
	})
}
