package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/permission"
)

// RequirePermission validates the JWT, checks the static role policy
// and forwards the caller's identity to the proxied service as
// headers. Services behind the gateway trust these headers; direct
// client-set values are overwritten here.
func RequirePermission(resourceSlug, actionSlug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c)
		if !ok {
			return
		}

		if !permission.HasPermission(models.Role(claims.Role), actionSlug, resourceSlug) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Insufficient permissions",
				"message": "Anda tidak memiliki akses untuk tindakan ini",
				"details": gin.H{
					"required_resource": resourceSlug,
					"required_action":   actionSlug,
				},
			})
			c.Abort()
			return
		}

		forwardIdentity(c, claims)

		c.Set("user_id", claims.UserID)
		c.Set("resource", resourceSlug)
		c.Set("action", actionSlug)

		c.Next()
	}
}

// RequireAuthentication validates the JWT without a policy check and
// forwards identity headers. Used for routes every signed-in role may
// reach, like /api/auth/me.
func RequireAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c)
		if !ok {
			return
		}

		forwardIdentity(c, claims)
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func authenticate(c *gin.Context) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader {
		unauthorized(c)
		return nil, false
	}

	claims, err := auth.ValidateJWT(tokenString)
	if err != nil {
		unauthorized(c)
		return nil, false
	}
	return claims, true
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "Invalid or missing token",
		"message": "Sesi tidak valid, silakan masuk kembali",
	})
	c.Abort()
}

func forwardIdentity(c *gin.Context, claims *auth.Claims) {
	c.Request.Header.Set(auth.HeaderUserID, claims.UserID)
	c.Request.Header.Set(auth.HeaderUserEmail, claims.Email)
	c.Request.Header.Set(auth.HeaderUserRole, claims.Role)
	if claims.OrganizationID != "" {
		c.Request.Header.Set(auth.HeaderOrganizationID, claims.OrganizationID)
	} else {
		c.Request.Header.Del(auth.HeaderOrganizationID)
	}
}
