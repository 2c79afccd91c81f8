package auth

import (
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database/models"
)

func init() {
	os.Setenv("JWT_SECRET", "test-secret")
	config.LoadConfig()
}

func TestJWTRoundTrip(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()

	token, err := GenerateJWT(userID, "pptk@sinpd.go.id", &orgID, models.RolePPTK)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "pptk@sinpd.go.id", claims.Email)
	assert.Equal(t, orgID.String(), claims.OrganizationID)
	assert.Equal(t, string(models.RolePPTK), claims.Role)
}

func TestJWTWithoutOrganization(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "admin@sinpd.go.id", nil, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Empty(t, claims.OrganizationID)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestValidateJWTRejectsTamperedSignature(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "user@sinpd.go.id", nil, models.RoleViewer)
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	assert.Error(t, err)
}

func TestValidateJWTRejectsWrongAlgorithm(t *testing.T) {
	// A token signed with "none" must never validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.NewString()})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateJWT(tokenString)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("rahasia-123")
	require.NoError(t, err)
	require.NotEqual(t, "rahasia-123", hash)

	assert.True(t, CheckPassword("rahasia-123", hash))
	assert.False(t, CheckPassword("rahasia-124", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("kunci-api", "kunci-api"))
	assert.False(t, SecureCompare("kunci-api", "kunci-apa"))
	assert.False(t, SecureCompare("kunci-api", "kunci-api-panjang"))
	assert.True(t, SecureCompare("", ""))
}
