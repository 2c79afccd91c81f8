// Package docs SINPD API documentation
package docs

// Swagger documentation info
// @title SINPD API
// @version 1.0
// @description Central API documentation - Sistem Informasi Nota Pencairan Dana
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@sinpd.go.id

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// Auth Service Endpoints
// @tag.name auth
// @tag.description Authentication and user session management
// @tag.name users
// @tag.description User management
// @tag.name organizations
// @tag.description Organization (SKPD) management

// Budget Service Endpoints
// @tag.name rka
// @tag.description Budget structure (program, kegiatan, sub kegiatan, rekening)
// @tag.name npd
// @tag.description Fund disbursement note workflow
// @tag.name sp2d
// @tag.description Disbursement order recording
// @tag.name export
// @tag.description CSV and Excel exports

// Document Service Endpoints
// @tag.name documents
// @tag.description Attachment uploads and PDF rendering

// Notification Service Endpoints
// @tag.name notifications
// @tag.description In-app and real-time notifications
// @tag.name email
// @tag.description Transactional email delivery
