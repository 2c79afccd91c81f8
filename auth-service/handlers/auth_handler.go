package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/database/models"
	utils "sinpd-backend/shared/utils/auth"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// LoginRequest is the login credential payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@sinpd.go.id"`
	Password string `json:"password" binding:"required" example:"rahasia123"`
}

// LoginResponse carries the issued token and user profile
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo is the public user profile
type UserInfo struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	FullName       string      `json:"full_name"`
	NIP            string      `json:"nip,omitempty"`
	Role           models.Role `json:"role"`
	OrganizationID *uuid.UUID  `json:"organization_id,omitempty"`
	Status         string      `json:"status"`
}

func userInfo(user *models.User) UserInfo {
	return UserInfo{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName(),
		NIP:            user.NIP,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		Status:         user.Status,
	}
}

// POST /api/auth/login
// @Summary User login
// @Description Authenticate a locally provisioned user and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} handlers.LoginResponse "Successful login"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email atau kata sandi salah"})
		return
	}

	if user.Status != "ACTIVE" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Akun tidak aktif"})
		return
	}

	if user.Password == "" || !utils.CheckPassword(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email atau kata sandi salah"})
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.OrganizationID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal membuat token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(utils.GetJWTExpireDuration()),
		User:      userInfo(&user),
	})
}

// POST /api/auth/logout
// @Summary User logout
// @Description Validate and discard the caller's token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out"
// @Failure 401 {object} map[string]string "Invalid token"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token wajib disertakan"})
		return
	}

	if _, err := utils.ValidateJWT(tokenString); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token tidak valid"})
		return
	}

	// Tokens are stateless; the client discards it.
	c.JSON(http.StatusOK, gin.H{"message": "Berhasil keluar"})
}

// GET /api/auth/me
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handlers.UserInfo
// @Failure 401 {object} map[string]string "Invalid token"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token wajib disertakan"})
		return
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token tidak valid"})
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token tidak valid"})
		return
	}

	var user models.User
	if err := h.db.Preload("Organization").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Pengguna tidak ditemukan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    userInfo(&user),
	})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return header[7:]
	}
	return ""
}
