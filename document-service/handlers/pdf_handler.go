package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/document-service/services"
	npdmodels "sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
)

const renderTimeout = 45 * time.Second

type PDFHandler struct {
	db  *gorm.DB
	pdf *services.PDFService
}

func NewPDFHandler(db *gorm.DB, pdf *services.PDFService) *PDFHandler {
	return &PDFHandler{db: db, pdf: pdf}
}

// RenderNPDPDF renders an NPD document as PDF
// @Summary Render NPD as PDF
// @Tags documents
// @Produce application/pdf
// @Param id path string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {file} file
// @Router /documents/npd/{id}/pdf [get]
func (h *PDFHandler) RenderNPDPDF(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	npdID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid NPD ID format",
			"message": err.Error(),
		})
		return
	}

	var doc npdmodels.NPD
	if err := query.ScopeToOrganization(h.db, orgID).
		Preload("SubActivity").Preload("Lines").Preload("Lines.Account").
		First(&doc, npdID).Error; err != nil {
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

	ctx, cancel := context.WithTimeout(c.Request.Context(), renderTimeout)
	defer cancel()

	data, err := h.pdf.RenderNPD(ctx, &doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to render PDF",
			"message": err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("npd-%s.pdf", doc.ID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
