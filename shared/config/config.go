package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret      string
	JWTExpireHours string

	// API Gateway URL
	APIGatewayURL string

	// Seeded admin
	AdminEmail    string
	AdminPassword string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Identity provider (webhook sync)
	IdentityWebhookSecret string

	// Email
	EmailFrom        string
	EmailFromName    string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SMTPUseTLS       bool
	EmailAPIKey      string
	EmailMaxAttempts int

	// Rate limiting
	RateLimitMaxRequests      int
	RateLimitWindowSeconds    int
	RateLimitBlockMinutes     int
	PDFRateLimitMaxRequests   int
	PDFRateLimitWindowSeconds int

	// Feature flags
	EmailNotificationsEnabled bool
	PDFWatermarkEnabled       bool
	CSVImportEnabled          bool

	// Frontend URL
	FrontendURL string

	// Service URLs
	AuthServiceURL         string
	BudgetServiceURL       string
	NotificationServiceURL string
	DocumentServiceURL     string

	// MinIO
	MinIOServerURL    string
	MinIORootUser     string
	MinIORootPassword string
	MinIOUseSSL       bool
	MinIOBucketName   string

	// Uploads
	UploadMaxFileSize      string
	UploadAllowedTypes     string
	UploadPendingTTLHours  int
	UploadSweepIntervalMin int
}

var cfg *Config

// LoadConfig loads configuration from environment variables.
// Missing required values abort startup.
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "sinpd"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpireHours: getEnv("JWT_EXPIRE_HOURS", "8"),

		// API Gateway URL
		APIGatewayURL: getEnv("API_GATEWAY_URL", "http://localhost:8000"),

		// Seeded admin
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@sinpd.go.id"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Identity provider
		IdentityWebhookSecret: getEnv("IDENTITY_WEBHOOK_SECRET", ""),

		// Email
		EmailFrom:        getEnv("EMAIL_FROM", "noreply@sinpd.go.id"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "SINPD"),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:       getEnvAsBool("SMTP_USE_TLS", false),
		EmailAPIKey:      getEnv("EMAIL_API_KEY", ""),
		EmailMaxAttempts: getEnvAsInt("EMAIL_MAX_ATTEMPTS", 3),

		// Rate limiting
		RateLimitMaxRequests:      getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitWindowSeconds:    getEnvAsInt("RATE_LIMIT_TIME_WINDOW_SECONDS", 60),
		RateLimitBlockMinutes:     getEnvAsInt("RATE_LIMIT_BLOCK_DURATION_MINUTES", 15),
		PDFRateLimitMaxRequests:   getEnvAsInt("PDF_RATE_LIMIT_MAX_REQUESTS", 10),
		PDFRateLimitWindowSeconds: getEnvAsInt("PDF_RATE_LIMIT_WINDOW_SECONDS", 60),

		// Feature flags
		EmailNotificationsEnabled: getEnvAsBool("FEATURE_EMAIL_NOTIFICATIONS", true),
		PDFWatermarkEnabled:       getEnvAsBool("FEATURE_PDF_WATERMARK", false),
		CSVImportEnabled:          getEnvAsBool("FEATURE_CSV_IMPORT", true),

		// Frontend URL
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Service URLs - Environment-based configuration
		AuthServiceURL:         getEnv("AUTH_SERVICE_URL", "http://localhost:8001"),
		BudgetServiceURL:       getEnv("BUDGET_SERVICE_URL", "http://localhost:8002"),
		NotificationServiceURL: getEnv("NOTIFICATION_SERVICE_URL", "http://localhost:8003"),
		DocumentServiceURL:     getEnv("DOCUMENT_SERVICE_URL", "http://localhost:8004"),

		// MinIO
		MinIOServerURL:    getEnv("MINIO_SERVER_URL", "http://localhost:9000"),
		MinIORootUser:     getEnv("MINIO_ROOT_USER", "minioadmin"),
		MinIORootPassword: getEnv("MINIO_ROOT_PASSWORD", "minioadmin"),
		MinIOUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		MinIOBucketName:   getEnv("MINIO_BUCKET_NAME", "sinpd-lampiran"),

		// Uploads
		UploadMaxFileSize:      getEnv("UPLOAD_MAX_FILE_SIZE", "20MB"),
		UploadAllowedTypes:     getEnv("UPLOAD_ALLOWED_TYPES", ".pdf,.jpg,.jpeg,.png,.xlsx"),
		UploadPendingTTLHours:  getEnvAsInt("UPLOAD_PENDING_TTL_HOURS", 24),
		UploadSweepIntervalMin: getEnvAsInt("UPLOAD_SWEEP_INTERVAL_MINUTES", 30),
	}

	if err := cfg.validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	log.Println("✅ Configuration loaded successfully")
}

// validate checks required values that have no safe default.
func (c *Config) validate() error {
	required := map[string]string{
		"JWT_SECRET":    c.JWTSecret,
		"DB_HOST":       c.DBHost,
		"DB_NAME":       c.DBName,
		"EMAIL_API_KEY": c.EmailAPIKey,
	}

	var missing []string
	for key, value := range required {
		if value == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}

	if c.RateLimitMaxRequests <= 0 || c.RateLimitWindowSeconds <= 0 {
		return fmt.Errorf("rate limit thresholds must be positive")
	}

	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
