package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sinpd-backend/document-service/handlers"
	"sinpd-backend/document-service/services"
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

	// Initialize MinIO
	minioService, err := services.NewMinIOService()
	if err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	// Initialize PDF renderer
	pdfService, err := services.NewPDFService()
	if err != nil {
		log.Fatalf("Failed to initialize PDF renderer: %v", err)
	}
	defer pdfService.Close()

	// Start the pending-upload sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go services.NewSweepService(database.GetDB(), minioService).Start(sweepCtx)

	uploadHandler := handlers.NewUploadHandler(database.GetDB(), minioService)
	pdfHandler := handlers.NewPDFHandler(database.GetDB(), pdfService)

	router := gin.Default()

	// Attachment uploads (two-phase)
	router.POST("/api/documents/uploads", uploadHandler.ReserveUpload)
	router.POST("/api/documents/uploads/:id/confirm", uploadHandler.ConfirmUpload)
	router.GET("/api/documents/uploads", uploadHandler.GetUploads)
	router.GET("/api/documents/uploads/:id/download", uploadHandler.DownloadUpload)
	router.DELETE("/api/documents/uploads/:id", uploadHandler.DeleteUpload)

	// PDF rendering
	router.GET("/api/documents/npd/:id/pdf", pdfHandler.RenderNPDPDF)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "document",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(config.GetConfig().DocumentServiceURL, ":")[2]
	log.Printf("Document Service starting on port %s...", port)
	router.Run(":" + port)
}
