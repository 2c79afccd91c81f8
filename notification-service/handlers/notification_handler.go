package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/notification-service/services"
	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models/notification"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
)

// CreateNotificationRequest is the internal-service payload for
// creating a notification. Reaches this service only from inside the
// network; the gateway never proxies the internal route.
type CreateNotificationRequest struct {
	UserID         uuid.UUID                      `json:"user_id" binding:"required"`
	OrganizationID uuid.UUID                      `json:"organization_id" binding:"required"`
	Type           string                         `json:"type" binding:"required"`
	Level          notification.NotificationLevel `json:"level"`
	Title          string                         `json:"title" binding:"required"`
	Message        string                         `json:"message" binding:"required"`
	Entity         string                         `json:"entity"`
	EntityID       *uuid.UUID                     `json:"entity_id"`
}

// GetNotifications lists the caller's notifications
// @Summary Get notifications
// @Tags notifications
// @Produce json
// @Param filters[is_read] query string false "Filter by read flag"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /notifications [get]
func GetNotifications(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}

	db := database.DB
	params := query.ParseQueryParams(c)

	allowedFilters := map[string]string{
		"is_read": "is_read",
		"type":    "type",
	}

	dbQuery := db.Model(&notification.Notification{}).Where("user_id = ?", ident.UserID)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = dbQuery.Order("created_at desc")

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count notifications",
			"message": err.Error(),
		})
		return
	}

	var unread int64
	db.Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", ident.UserID, false).Count(&unread)

	var items []notification.Notification
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve notifications",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      items,
			"unread":     unread,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// MarkNotificationRead marks one of the caller's notifications read.
// Only the owner may flip the flag.
// @Summary Mark notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /notifications/{id}/read [put]
func MarkNotificationRead(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}

	notifID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid notification ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var item notification.Notification
	if err := db.Where("id = ? AND user_id = ?", notifID, ident.UserID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Notification not found",
				"message": "Notifikasi tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve notification",
			"message": err.Error(),
		})
		return
	}

	if !item.IsRead {
		now := time.Now()
		item.IsRead = true
		item.ReadAt = &now
		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to update notification",
				"message": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notifikasi ditandai sudah dibaca",
		"data":    item,
	})
}

// MarkAllNotificationsRead marks all of the caller's notifications read
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /notifications/read-all [put]
func MarkAllNotificationsRead(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}

	now := time.Now()
	result := database.DB.Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", ident.UserID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update notifications",
			"message": result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Semua notifikasi ditandai sudah dibaca",
		"data":    gin.H{"updated": result.RowsAffected},
	})
}

// CreateInternalNotification stores a notification and pushes it over
// websocket when the user is connected
// @Summary Create a notification (internal)
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body CreateNotificationRequest true "Notification"
// @Success 201 {object} map[string]interface{}
// @Router /notifications/internal [post]
func CreateInternalNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	level := req.Level
	if level == "" {
		level = notification.NotificationLevelInfo
	}

	item := notification.Notification{
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		Type:           req.Type,
		Level:          level,
		Title:          req.Title,
		Message:        req.Message,
		Entity:         req.Entity,
		EntityID:       req.EntityID,
	}

	if err := database.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create notification",
			"message": err.Error(),
		})
		return
	}

	// Push in real time; a disconnected user just reads it later.
	services.GetWebSocketManager().SendToUser(req.UserID.String(), &notification.WebSocketMessage{
		Type:      item.Type,
		Level:     item.Level,
		Title:     item.Title,
		Message:   item.Message,
		Timestamp: item.CreatedAt,
		Entity:    item.Entity,
		EntityID:  item.EntityID,
		UserID:    &item.UserID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Notifikasi dibuat",
		"data":    item,
	})
}
