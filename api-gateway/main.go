package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sinpd-backend/api-gateway/middleware"
	"sinpd-backend/api-gateway/routes"
	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database"
	"sinpd-backend/shared/utils/permission"

	_ "sinpd-backend/docs"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// The gateway writes request logs directly
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Rate limiting: one global window per client plus a stricter one
	// for PDF rendering
	rateLimiter := middleware.NewRateLimiter()
	globalLimit := middleware.NewRateLimitConfig()
	pdfLimit := middleware.NewPDFRateLimitConfig()

	router := gin.Default()

	// CORS for the frontend
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.Use(rateLimiter.Middleware("global", globalLimit))
	router.Use(middleware.UnifiedResponseMiddleware())

	// Health check endpoint
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "API Gateway is running"})
	})

	// Auth routes (token issued here, so no permission check)
	router.Any("/api/auth/*path",
		routes.ProxyToService("auth"))

	// Identity provider webhooks, authenticated by signature
	router.POST("/api/webhooks/identity",
		routes.ProxyToService("auth"))

	// User management
	router.GET("/api/users",
		middleware.RequirePermission(permission.ResourceUser, permission.ActionRead),
		routes.ProxyToService("auth"))
	router.GET("/api/users/:id",
		middleware.RequirePermission(permission.ResourceUser, permission.ActionRead),
		routes.ProxyToService("auth"))
	router.PUT("/api/users/:id/role",
		middleware.RequirePermission(permission.ResourceUser, permission.ActionUpdate),
		routes.ProxyToService("auth"))

	// Organizations: any signed-in user may read their own
	router.GET("/api/organizations",
		middleware.RequireAuthentication(),
		routes.ProxyToService("auth"))
	router.GET("/api/organizations/:id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("auth"))

	// Budget structure (RKA)
	for _, entity := range []string{"programs", "activities", "sub-activities", "accounts"} {
		base := "/api/rka/" + entity
		router.GET(base,
			middleware.RequirePermission(permission.ResourceRKA, permission.ActionRead),
			routes.ProxyToService("budget"))
		router.POST(base,
			middleware.RequirePermission(permission.ResourceRKA, permission.ActionCreate),
			routes.ProxyToService("budget"))
		router.PUT(base+"/:id",
			middleware.RequirePermission(permission.ResourceRKA, permission.ActionUpdate),
			routes.ProxyToService("budget"))
		router.DELETE(base+"/:id",
			middleware.RequirePermission(permission.ResourceRKA, permission.ActionDelete),
			routes.ProxyToService("budget"))
	}
	router.POST("/api/rka/import",
		middleware.RequirePermission(permission.ResourceRKA, permission.ActionImport),
		routes.ProxyToService("budget"))

	// NPD documents
	router.GET("/api/npd",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionRead),
		routes.ProxyToService("budget"))
	router.GET("/api/npd/:id",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionRead),
		routes.ProxyToService("budget"))
	router.POST("/api/npd",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionCreate),
		routes.ProxyToService("budget"))
	router.PUT("/api/npd/:id",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionUpdate),
		routes.ProxyToService("budget"))
	router.DELETE("/api/npd/:id",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionDelete),
		routes.ProxyToService("budget"))

	// NPD lines
	router.POST("/api/npd/:id/lines",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionUpdate),
		routes.ProxyToService("budget"))
	router.PUT("/api/npd/:id/lines/:lineId",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionUpdate),
		routes.ProxyToService("budget"))
	router.DELETE("/api/npd/:id/lines/:lineId",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionUpdate),
		routes.ProxyToService("budget"))

	// NPD workflow transitions
	router.POST("/api/npd/:id/submit",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionSubmit),
		routes.ProxyToService("budget"))
	router.POST("/api/npd/:id/verify",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionVerify),
		routes.ProxyToService("budget"))
	router.POST("/api/npd/:id/finalize",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionFinalize),
		routes.ProxyToService("budget"))
	router.POST("/api/npd/:id/reject",
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionReject),
		routes.ProxyToService("budget"))

	// Verification checklist
	router.GET("/api/npd/:id/checklist",
		middleware.RequirePermission(permission.ResourceChecklist, permission.ActionRead),
		routes.ProxyToService("budget"))
	router.PUT("/api/npd/:id/checklist/:itemId",
		middleware.RequirePermission(permission.ResourceChecklist, permission.ActionUpdate),
		routes.ProxyToService("budget"))

	// SP2D records
	router.GET("/api/sp2d",
		middleware.RequirePermission(permission.ResourceSP2D, permission.ActionRead),
		routes.ProxyToService("budget"))
	router.GET("/api/sp2d/:id",
		middleware.RequirePermission(permission.ResourceSP2D, permission.ActionRead),
		routes.ProxyToService("budget"))
	router.POST("/api/sp2d",
		middleware.RequirePermission(permission.ResourceSP2D, permission.ActionCreate),
		routes.ProxyToService("budget"))
	router.DELETE("/api/sp2d/:id",
		middleware.RequirePermission(permission.ResourceSP2D, permission.ActionDelete),
		routes.ProxyToService("budget"))

	// Exports
	router.GET("/api/export/npd",
		middleware.RequirePermission(permission.ResourceExport, permission.ActionExport),
		routes.ProxyToService("budget"))
	router.GET("/api/export/realisasi",
		middleware.RequirePermission(permission.ResourceExport, permission.ActionExport),
		routes.ProxyToService("budget"))

	// Attachment uploads
	router.POST("/api/documents/uploads",
		middleware.RequirePermission(permission.ResourceUpload, permission.ActionCreate),
		routes.ProxyToService("document"))
	router.POST("/api/documents/uploads/:id/confirm",
		middleware.RequirePermission(permission.ResourceUpload, permission.ActionCreate),
		routes.ProxyToService("document"))
	router.GET("/api/documents/uploads",
		middleware.RequirePermission(permission.ResourceUpload, permission.ActionRead),
		routes.ProxyToService("document"))
	router.GET("/api/documents/uploads/:id/download",
		middleware.RequirePermission(permission.ResourceUpload, permission.ActionRead),
		routes.ProxyToService("document"))
	router.DELETE("/api/documents/uploads/:id",
		middleware.RequirePermission(permission.ResourceUpload, permission.ActionDelete),
		routes.ProxyToService("document"))

	// PDF rendering, with its own tighter limit
	router.GET("/api/documents/npd/:id/pdf",
		rateLimiter.Middleware("pdf", pdfLimit),
		middleware.RequirePermission(permission.ResourceNPD, permission.ActionRead),
		routes.ProxyToService("document"))

	// Notifications
	router.GET("/api/notifications",
		middleware.RequirePermission(permission.ResourceNotification, permission.ActionRead),
		routes.ProxyToService("notification"))
	router.PUT("/api/notifications/:id/read",
		middleware.RequirePermission(permission.ResourceNotification, permission.ActionUpdate),
		routes.ProxyToService("notification"))
	router.PUT("/api/notifications/read-all",
		middleware.RequirePermission(permission.ResourceNotification, permission.ActionUpdate),
		routes.ProxyToService("notification"))

	// Websocket upgrade carries the token as a query parameter, the
	// notification service validates it itself
	router.GET("/api/notifications/ws",
		routes.ProxyToService("notification"))

	// Swagger documentation UI, development only
	router.GET("/swagger/*any", func(c *gin.Context) {
		if gin.Mode() == gin.DebugMode {
			ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
		} else {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Swagger documentation not available in production",
			})
		}
	})

	// Server Start
	port := strings.Split(cfg.APIGatewayURL, ":")[2]
	log.Printf("API Gateway is running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
