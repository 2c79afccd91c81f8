package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sinpd-backend/auth-service/handlers"
	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(database.GetDB())
	webhookHandler := handlers.NewWebhookHandler(database.GetDB())

	router := gin.Default()

	// Auth routes
	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/auth/logout", authHandler.Logout)
	router.GET("/api/auth/me", authHandler.Me)

	// Identity-provider webhook
	router.POST("/api/webhooks/identity", webhookHandler.HandleIdentityEvent)

	// User management (admin via gateway permission check)
	router.GET("/api/users", handlers.GetUsers)
	router.GET("/api/users/:id", handlers.GetUser)
	router.PUT("/api/users/:id/role", handlers.UpdateUserRole)

	// Organizations
	router.GET("/api/organizations", handlers.GetOrganizations)
	router.GET("/api/organizations/:id", handlers.GetOrganization)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "auth",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(config.GetConfig().AuthServiceURL, ":")[2]
	log.Printf("Auth Service starting on port %s...", port)
	router.Run(":" + port)
}
