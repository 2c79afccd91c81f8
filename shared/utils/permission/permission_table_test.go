package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sinpd-backend/shared/database/models"
)

func TestAdminHasEverything(t *testing.T) {
	resources := []string{ResourceRKA, ResourceNPD, ResourceChecklist, ResourceSP2D, ResourceUpload, ResourceUser, ResourceNotification, ResourceExport}
	actions := []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionSubmit, ActionVerify, ActionFinalize, ActionReject, ActionImport, ActionExport}

	for _, resource := range resources {
		for _, action := range actions {
			assert.True(t, HasPermission(models.RoleAdmin, action, resource),
				"admin should be allowed %s on %s", action, resource)
		}
	}
}

func TestPPTKPermissions(t *testing.T) {
	assert.True(t, HasPermission(models.RolePPTK, ActionCreate, ResourceNPD))
	assert.True(t, HasPermission(models.RolePPTK, ActionSubmit, ResourceNPD))
	assert.True(t, HasPermission(models.RolePPTK, ActionCreate, ResourceUpload))
	assert.True(t, HasPermission(models.RolePPTK, ActionExport, ResourceExport))

	// Verification and disbursement stay out of reach.
	assert.False(t, HasPermission(models.RolePPTK, ActionVerify, ResourceNPD))
	assert.False(t, HasPermission(models.RolePPTK, ActionFinalize, ResourceNPD))
	assert.False(t, HasPermission(models.RolePPTK, ActionCreate, ResourceSP2D))
	assert.False(t, HasPermission(models.RolePPTK, ActionCreate, ResourceRKA))
	assert.False(t, HasPermission(models.RolePPTK, ActionImport, ResourceRKA))
}

func TestBendaharaPermissions(t *testing.T) {
	assert.True(t, HasPermission(models.RoleBendahara, ActionVerify, ResourceNPD))
	assert.True(t, HasPermission(models.RoleBendahara, ActionFinalize, ResourceNPD))
	assert.True(t, HasPermission(models.RoleBendahara, ActionReject, ResourceNPD))
	assert.True(t, HasPermission(models.RoleBendahara, ActionCreate, ResourceSP2D))
	assert.True(t, HasPermission(models.RoleBendahara, ActionDelete, ResourceSP2D))

	assert.False(t, HasPermission(models.RoleBendahara, ActionCreate, ResourceNPD))
	assert.False(t, HasPermission(models.RoleBendahara, ActionSubmit, ResourceNPD))
}

func TestVerifikatorPermissions(t *testing.T) {
	assert.True(t, HasPermission(models.RoleVerifikator, ActionVerify, ResourceNPD))
	assert.True(t, HasPermission(models.RoleVerifikator, ActionReject, ResourceNPD))
	assert.True(t, HasPermission(models.RoleVerifikator, ActionUpdate, ResourceChecklist))

	assert.False(t, HasPermission(models.RoleVerifikator, ActionFinalize, ResourceNPD))
	assert.False(t, HasPermission(models.RoleVerifikator, ActionCreate, ResourceSP2D))
}

func TestViewerIsReadOnly(t *testing.T) {
	assert.True(t, HasPermission(models.RoleViewer, ActionRead, ResourceRKA))
	assert.True(t, HasPermission(models.RoleViewer, ActionRead, ResourceNPD))
	assert.True(t, HasPermission(models.RoleViewer, ActionRead, ResourceSP2D))
	// Marking own notifications read is the one allowed write.
	assert.True(t, HasPermission(models.RoleViewer, ActionUpdate, ResourceNotification))

	assert.False(t, HasPermission(models.RoleViewer, ActionCreate, ResourceNPD))
	assert.False(t, HasPermission(models.RoleViewer, ActionUpdate, ResourceNPD))
	assert.False(t, HasPermission(models.RoleViewer, ActionExport, ResourceExport))
	assert.False(t, HasPermission(models.RoleViewer, ActionRead, ResourceUpload))
}

func TestUnknownRoleDenied(t *testing.T) {
	assert.False(t, HasPermission(models.Role("superuser"), ActionRead, ResourceNPD))
	assert.False(t, HasPermission(models.Role(""), ActionRead, ResourceNPD))
}

func TestUnknownResourceAndActionDenied(t *testing.T) {
	assert.False(t, HasPermission(models.RolePPTK, ActionRead, "budgets"))
	assert.False(t, HasPermission(models.RolePPTK, "approve", ResourceNPD))
}
