package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/database"
	npdmodels "sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/workflow"
)

// UpdateChecklistItemRequest represents request body for checking off
// a checklist item
type UpdateChecklistItemRequest struct {
	Checked *bool  `json:"checked" binding:"required"`
	Note    string `json:"note"`
}

// GetChecklist retrieves the verification checklist of an NPD with its
// completion summary
// @Summary Get NPD checklist
// @Tags npd
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id}/checklist [get]
func GetChecklist(c *gin.Context) {
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

	var items []npdmodels.ChecklistItem
	if err := database.DB.Where("npd_id = ?", doc.ID).Order("position asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve checklist",
			"message": err.Error(),
		})
		return
	}

	requiredTotal := 0
	requiredChecked := 0
	for _, item := range items {
		if item.Required {
			requiredTotal++
			if item.Checked {
				requiredChecked++
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":            items,
			"required_total":   requiredTotal,
			"required_checked": requiredChecked,
			"complete":         requiredChecked == requiredTotal,
		},
	})
}

// UpdateChecklistItem checks or unchecks one checklist item. Allowed
// while the document awaits verification; a final document is locked.
// @Summary Update a checklist item
// @Tags npd
// @Accept json
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Param itemId path string true "Checklist item ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id}/checklist/{itemId} [put]
func UpdateChecklistItem(c *gin.Context) {
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

	if workflow.Status(doc.Status) == workflow.StatusFinal {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "NPD is final",
			"message": "Daftar periksa dokumen final tidak dapat diubah",
		})
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid checklist item ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var item npdmodels.ChecklistItem
	if err := db.Where("npd_id = ?", doc.ID).First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Checklist item not found",
				"message": "Item daftar periksa tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve checklist item",
			"message": err.Error(),
		})
		return
	}

	before := item
	item.Checked = *req.Checked
	item.Note = req.Note

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd_checklist_items",
			EntityID:       &item.ID,
			Action:         "update",
			Before:         before,
			After:          item,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update checklist item",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item daftar periksa berhasil diperbarui",
		"data":    item,
	})
}
