package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sinpd-backend/shared/database/models"
)

// Identity headers forwarded by the gateway to internal services
// after the JWT has been validated there.
const (
	HeaderUserID         = "X-User-ID"
	HeaderUserEmail      = "X-User-Email"
	HeaderUserRole       = "X-User-Role"
	HeaderOrganizationID = "X-Organization-ID"
)

// Identity is the authenticated caller as seen by an internal service.
type Identity struct {
	UserID         uuid.UUID
	Email          string
	Role           models.Role
	OrganizationID *uuid.UUID
}

var errNoIdentity = errors.New("missing forwarded identity headers")

// IdentityFromHeaders reads the gateway-forwarded identity. Services
// sit behind the gateway; a request without identity headers did not
// pass authentication.
func IdentityFromHeaders(c *gin.Context) (*Identity, error) {
	rawID := c.GetHeader(HeaderUserID)
	if rawID == "" {
		return nil, errNoIdentity
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errors.New("invalid user id header")
	}

	ident := &Identity{
		UserID: userID,
		Email:  c.GetHeader(HeaderUserEmail),
		Role:   models.Role(c.GetHeader(HeaderUserRole)),
	}

	if rawOrg := c.GetHeader(HeaderOrganizationID); rawOrg != "" {
		orgID, err := uuid.Parse(rawOrg)
		if err != nil {
			return nil, errors.New("invalid organization id header")
		}
		ident.OrganizationID = &orgID
	}

	return ident, nil
}

// RequireIdentity aborts with 401 when the forwarded identity is
// missing or malformed, otherwise returns it.
func RequireIdentity(c *gin.Context) (*Identity, bool) {
	ident, err := IdentityFromHeaders(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Sesi tidak valid, silakan masuk kembali",
		})
		c.Abort()
		return nil, false
	}
	return ident, true
}

// RequireOrganization aborts with 403 when the caller has no
// organization; every domain entity is tenant-scoped.
func RequireOrganization(c *gin.Context, ident *Identity) (uuid.UUID, bool) {
	if ident.OrganizationID == nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Akun tidak terdaftar pada organisasi manapun",
		})
		c.Abort()
		return uuid.Nil, false
	}
	return *ident.OrganizationID, true
}
