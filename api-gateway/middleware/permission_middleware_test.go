package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/permission"
)

func init() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	config.LoadConfig()
}

func protectedRouter(resource, action string) (*gin.Engine, *http.Request) {
	router := gin.New()
	router.POST("/api/npd", RequirePermission(resource, action), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"forwarded_user": c.Request.Header.Get(auth.HeaderUserID),
			"forwarded_role": c.Request.Header.Get(auth.HeaderUserRole),
			"forwarded_org":  c.Request.Header.Get(auth.HeaderOrganizationID),
		})
	})
	req := httptest.NewRequest(http.MethodPost, "/api/npd", nil)
	return router, req
}

func issueToken(t *testing.T, role models.Role, orgID *uuid.UUID) string {
	t.Helper()
	token, err := auth.GenerateJWT(uuid.New(), "user@sinpd.go.id", orgID, role)
	require.NoError(t, err)
	return token
}

func TestRequirePermissionMissingToken(t *testing.T) {
	router, req := protectedRouter(permission.ResourceNPD, permission.ActionCreate)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionMalformedHeader(t *testing.T) {
	router, req := protectedRouter(permission.ResourceNPD, permission.ActionCreate)
	req.Header.Set("Authorization", "Token abc") // not a bearer scheme

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionGarbageToken(t *testing.T) {
	router, req := protectedRouter(permission.ResourceNPD, permission.ActionCreate)
	req.Header.Set("Authorization", "Bearer not.a.jwt")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionRoleDenied(t *testing.T) {
	router, req := protectedRouter(permission.ResourceNPD, permission.ActionCreate)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, models.RoleViewer, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "tidak memiliki akses")
}

func TestRequirePermissionAllowedForwardsIdentity(t *testing.T) {
	orgID := uuid.New()
	router, req := protectedRouter(permission.ResourceNPD, permission.ActionCreate)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, models.RolePPTK, &orgID))
	// A spoofed header must be overwritten by the middleware.
	req.Header.Set(auth.HeaderUserID, uuid.NewString())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"forwarded_role":"pptk"`)
	assert.Contains(t, w.Body.String(), orgID.String())
}

func TestRequirePermissionStripsStaleOrgHeader(t *testing.T) {
	router, req := protectedRouter(permission.ResourceNPD, permission.ActionCreate)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, models.RolePPTK, nil))
	req.Header.Set(auth.HeaderOrganizationID, uuid.NewString())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"forwarded_org":""`)
}

func TestRequireAuthentication(t *testing.T) {
	router := gin.New()
	router.GET("/api/organizations", RequireAuthentication(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/organizations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/organizations", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, models.RoleViewer, nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
