package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sinpd-backend/notification-service/services"
)

// HandleWebSocket upgrades the connection for real-time notifications.
// The token travels as a query parameter because browsers cannot set
// headers on websocket upgrades.
// @Summary Open notification websocket
// @Tags notifications
// @Param token query string true "JWT token"
// @Router /notifications/ws [get]
func HandleWebSocket(c *gin.Context) {
	services.GetWebSocketManager().HandleWebSocketConnection(c)
}

// GetWebSocketStats reports active websocket connections
// @Summary Websocket connection stats
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /notifications/ws/stats [get]
func GetWebSocketStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"active_connections": services.GetWebSocketManager().GetConnectionCount(),
		},
	})
}
