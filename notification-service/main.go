package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sinpd-backend/notification-service/handlers"
	"sinpd-backend/notification-service/services"
	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Parse email templates up front so a broken template fails the
	// deploy, not the first send.
	templateService, err := services.NewTemplateService()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}
	emailService := services.NewEmailService(cfg, templateService)
	emailHandler := handlers.NewEmailHandler(emailService)

	// Start the websocket manager loop
	services.GetWebSocketManager()

	router := gin.Default()

	// In-app notifications
	router.GET("/api/notifications", handlers.GetNotifications)
	router.PUT("/api/notifications/:id/read", handlers.MarkNotificationRead)
	router.PUT("/api/notifications/read-all", handlers.MarkAllNotificationsRead)

	// Internal-only routes, never exposed through the gateway
	router.POST("/api/notifications/internal", handlers.CreateInternalNotification)
	router.POST("/api/email/send", emailHandler.SendEmail)

	// Real-time delivery
	router.GET("/api/notifications/ws", handlers.HandleWebSocket)
	router.GET("/api/notifications/ws/stats", handlers.GetWebSocketStats)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "notification",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(cfg.NotificationServiceURL, ":")[2]
	log.Printf("Notification Service starting on port %s...", port)
	router.Run(":" + port)
}
