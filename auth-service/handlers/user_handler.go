package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
)

// UpdateUserRoleRequest represents request body for changing a user's role
type UpdateUserRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// GetUsers retrieves users of the caller's organization
// @Summary Get users
// @Tags users
// @Produce json
// @Param filters[role] query string false "Filter by role"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users [get]
func GetUsers(c *gin.Context) {
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
		"role":   "role",
		"status": "status",
	}
	allowedSortFields := map[string]string{
		"email":      "email",
		"first_name": "first_name",
		"role":       "role",
		"created_at": "created_at",
	}

	dbQuery := db.Model(&models.User{}).Where("organization_id = ?", orgID)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"email", "first_name", "last_name", "nip"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count users",
			"message": err.Error(),
		})
		return
	}

	var users []models.User
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve users",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      users,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetUser retrieves one user of the caller's organization
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users/{id} [get]
func GetUser(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user ID format",
			"message": err.Error(),
		})
		return
	}

	var user models.User
	if err := database.DB.Where("organization_id = ?", orgID).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": "Pengguna tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve user",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateUserRole changes a user's role. Admin only.
// @Summary Update user role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param body body UpdateUserRoleRequest true "New role"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Not an admin"
// @Router /users/{id}/role [put]
func UpdateUserRole(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	if ident.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Hanya admin yang dapat mengubah peran pengguna",
		})
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid role",
			"message": "Peran harus salah satu dari admin, pptk, bendahara, verifikator, viewer",
		})
		return
	}

	db := database.DB

	var user models.User
	if err := db.Where("organization_id = ?", orgID).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": "Pengguna tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve user",
			"message": err.Error(),
		})
		return
	}

	before := user.Role
	user.Role = req.Role

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "users",
			EntityID:       &user.ID,
			Action:         "update_role",
			Before:         gin.H{"role": before},
			After:          gin.H{"role": user.Role},
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update role",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Peran pengguna berhasil diperbarui",
		"data":    user,
	})
}
