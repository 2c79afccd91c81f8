package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sinpd-backend/notification-service/services"
	"sinpd-backend/shared/config"
	"sinpd-backend/shared/utils/auth"
)

// EmailHandler serves the internal email delivery endpoint
type EmailHandler struct {
	emailService *services.EmailService
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(emailService *services.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

// SendEmail delivers a transactional email. Authenticated with the
// internal API key, not a user token.
// @Summary Send a transactional email (internal)
// @Tags email
// @Accept json
// @Produce json
// @Param email body services.EmailRequest true "Email request"
// @Success 200 {object} services.EmailResult
// @Router /email/send [post]
func (h *EmailHandler) SendEmail(c *gin.Context) {
	cfg := config.GetConfig()

	if !cfg.EmailNotificationsEnabled {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Email notifications disabled",
			"message": "Pengiriman email sedang dinonaktifkan",
		})
		return
	}

	apiKey := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if cfg.EmailAPIKey == "" || !auth.SecureCompare(apiKey, cfg.EmailAPIKey) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid API key",
			"message": "Kunci API tidak valid",
		})
		return
	}

	var req services.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	if !h.emailService.HasTemplate(req.TemplateName) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Unknown template",
			"message": "Template email tidak dikenal: " + req.TemplateName,
		})
		return
	}

	result := h.emailService.Send(c.Request.Context(), req)
	if !result.Success {
		// Delivery already retried; report the terminal failure.
		c.JSON(http.StatusBadGateway, result)
		return
	}

	c.JSON(http.StatusOK, result)
}
