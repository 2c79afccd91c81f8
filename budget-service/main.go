package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sinpd-backend/budget-service/handlers"
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

	router := gin.Default()

	// RKA hierarchy routes
	router.GET("/api/rka/programs", handlers.GetPrograms)
	router.POST("/api/rka/programs", handlers.CreateProgram)
	router.PUT("/api/rka/programs/:id", handlers.UpdateProgram)
	router.DELETE("/api/rka/programs/:id", handlers.DeleteProgram)

	router.GET("/api/rka/activities", handlers.GetActivities)
	router.POST("/api/rka/activities", handlers.CreateActivity)
	router.PUT("/api/rka/activities/:id", handlers.UpdateActivity)
	router.DELETE("/api/rka/activities/:id", handlers.DeleteActivity)

	router.GET("/api/rka/sub-activities", handlers.GetSubActivities)
	router.POST("/api/rka/sub-activities", handlers.CreateSubActivity)
	router.PUT("/api/rka/sub-activities/:id", handlers.UpdateSubActivity)
	router.DELETE("/api/rka/sub-activities/:id", handlers.DeleteSubActivity)

	router.GET("/api/rka/accounts", handlers.GetAccounts)
	router.POST("/api/rka/accounts", handlers.CreateAccount)
	router.PUT("/api/rka/accounts/:id", handlers.UpdateAccount)
	router.DELETE("/api/rka/accounts/:id", handlers.DeleteAccount)

	// RKA batch import (CSV)
	router.POST("/api/rka/import", handlers.ImportRKA)

	// NPD routes
	router.GET("/api/npd", handlers.GetNPDs)
	router.GET("/api/npd/:id", handlers.GetNPD)
	router.POST("/api/npd", handlers.CreateNPD)
	router.PUT("/api/npd/:id", handlers.UpdateNPD)
	router.DELETE("/api/npd/:id", handlers.DeleteNPD)

	// NPD line items
	router.POST("/api/npd/:id/lines", handlers.AddNPDLine)
	router.PUT("/api/npd/:id/lines/:lineId", handlers.UpdateNPDLine)
	router.DELETE("/api/npd/:id/lines/:lineId", handlers.DeleteNPDLine)

	// NPD workflow transitions
	router.POST("/api/npd/:id/submit", handlers.SubmitNPD)
	router.POST("/api/npd/:id/verify", handlers.VerifyNPD)
	router.POST("/api/npd/:id/finalize", handlers.FinalizeNPD)
	router.POST("/api/npd/:id/reject", handlers.RejectNPD)

	// Verification checklist
	router.GET("/api/npd/:id/checklist", handlers.GetChecklist)
	router.PUT("/api/npd/:id/checklist/:itemId", handlers.UpdateChecklistItem)

	// SP2D routes
	router.GET("/api/sp2d", handlers.GetSP2Ds)
	router.GET("/api/sp2d/:id", handlers.GetSP2D)
	router.POST("/api/sp2d", handlers.CreateSP2D)
	router.DELETE("/api/sp2d/:id", handlers.DeleteSP2D)

	// Exports
	router.GET("/api/export/npd", handlers.ExportNPD)
	router.GET("/api/export/realisasi", handlers.ExportRealisasi)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "budget",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(config.GetConfig().BudgetServiceURL, ":")[2]
	log.Printf("Budget Service starting on port %s...", port)
	router.Run(":" + port)
}
