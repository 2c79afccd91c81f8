package handlers

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sinpd-backend/shared/database/models"
)

// newWebhookTestDB opens an in-memory database with the columns the
// membership sync touches. Single connection, so the schema survives
// the whole test.
func newWebhookTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec(`CREATE TABLE organizations (
		id text primary key, external_id text, name text, slug text,
		status text, created_at datetime, updated_at datetime)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE users (
		id text primary key, external_id text, email text, password text,
		first_name text, last_name text, nip text, role text, status text,
		organization_id text, created_at datetime, updated_at datetime)`).Error)

	return db
}

// seedMembership inserts one organization and one member holding role.
func seedMembership(t *testing.T, db *gorm.DB, role models.Role) (orgID, userID uuid.UUID) {
	t.Helper()

	orgID = uuid.New()
	userID = uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO organizations (id, external_id, name, slug, status, created_at, updated_at)
		 VALUES (?, 'org_ext_1', 'Dinas Pendidikan', 'dinas-pendidikan', 'ACTIVE', datetime('now'), datetime('now'))`,
		orgID.String()).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, external_id, email, role, status, organization_id, created_at, updated_at)
		 VALUES (?, 'user_ext_1', 'budi@sinpd.go.id', ?, 'ACTIVE', ?, datetime('now'), datetime('now'))`,
		userID.String(), string(role), orgID.String()).Error)
	return orgID, userID
}

func TestMembershipDeletedResetsRoleToViewer(t *testing.T) {
	db := newWebhookTestDB(t)
	_, userID := seedMembership(t, db, models.RoleBendahara)
	h := NewWebhookHandler(db)

	payload := json.RawMessage(`{
		"organization": {"id": "org_ext_1"},
		"public_user_data": {"id": "user_ext_1"},
		"role": "org:bendahara"
	}`)
	require.NoError(t, h.removeMembership(payload))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID.String()).Error)
	assert.Equal(t, models.RoleViewer, user.Role)
	assert.Nil(t, user.OrganizationID, "membership removal must clear the organization")
}

func TestMembershipDeletedUnknownUserIsNoop(t *testing.T) {
	db := newWebhookTestDB(t)
	_, userID := seedMembership(t, db, models.RolePPTK)
	h := NewWebhookHandler(db)

	payload := json.RawMessage(`{
		"organization": {"id": "org_ext_1"},
		"public_user_data": {"id": "user_ext_lain"}
	}`)
	require.NoError(t, h.removeMembership(payload))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID.String()).Error)
	assert.Equal(t, models.RolePPTK, user.Role)
	assert.NotNil(t, user.OrganizationID)
}

func TestMembershipCreatedMapsProviderRole(t *testing.T) {
	db := newWebhookTestDB(t)
	orgID, userID := seedMembership(t, db, models.RoleViewer)
	h := NewWebhookHandler(db)

	payload := json.RawMessage(`{
		"organization": {"id": "org_ext_1"},
		"public_user_data": {"id": "user_ext_1"},
		"role": "org:bendahara"
	}`)
	require.NoError(t, h.applyMembership(payload))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID.String()).Error)
	assert.Equal(t, models.RoleBendahara, user.Role)
	require.NotNil(t, user.OrganizationID)
	assert.Equal(t, orgID, *user.OrganizationID)
}

func TestMembershipUnknownProviderRoleFallsBackToViewer(t *testing.T) {
	db := newWebhookTestDB(t)
	_, userID := seedMembership(t, db, models.RoleBendahara)
	h := NewWebhookHandler(db)

	payload := json.RawMessage(`{
		"organization": {"id": "org_ext_1"},
		"public_user_data": {"id": "user_ext_1"},
		"role": "org:kepala_dinas"
	}`)
	require.NoError(t, h.applyMembership(payload))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID.String()).Error)
	assert.Equal(t, models.RoleViewer, user.Role)
}
