package permission

import "sinpd-backend/shared/database/models"

// Resources and actions. Resource slugs name the domain entities the
// gateway routes expose; actions cover CRUD plus the workflow verbs.
const (
	ResourceAll          = "*"
	ResourceRKA          = "rka"
	ResourceNPD          = "npd"
	ResourceChecklist    = "checklist"
	ResourceSP2D         = "sp2d"
	ResourceUpload       = "upload"
	ResourceUser         = "users"
	ResourceNotification = "notifications"
	ResourceAudit        = "audit"
	ResourceExport       = "export"
)

const (
	ActionAll      = "*"
	ActionCreate   = "create"
	ActionRead     = "read"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionSubmit   = "submit"
	ActionVerify   = "verify"
	ActionFinalize = "finalize"
	ActionReject   = "reject"
	ActionImport   = "import"
	ActionExport   = "export"
)

type pair struct {
	action   string
	resource string
}

// permissionTable is the static policy: role → allowed (action,
// resource) pairs. A `*` in either position matches anything. There
// is no dynamic policy; unknown roles are denied.
var permissionTable = map[models.Role][]pair{
	models.RoleAdmin: {
		{ActionAll, ResourceAll},
	},
	models.RolePPTK: {
		{ActionRead, ResourceRKA},
		{ActionCreate, ResourceNPD},
		{ActionRead, ResourceNPD},
		{ActionUpdate, ResourceNPD},
		{ActionDelete, ResourceNPD},
		{ActionSubmit, ResourceNPD},
		{ActionRead, ResourceChecklist},
		{ActionUpdate, ResourceChecklist},
		{ActionRead, ResourceSP2D},
		{ActionCreate, ResourceUpload},
		{ActionRead, ResourceUpload},
		{ActionRead, ResourceNotification},
		{ActionUpdate, ResourceNotification},
		{ActionExport, ResourceExport},
	},
	models.RoleBendahara: {
		{ActionRead, ResourceRKA},
		{ActionRead, ResourceNPD},
		{ActionVerify, ResourceNPD},
		{ActionFinalize, ResourceNPD},
		{ActionReject, ResourceNPD},
		{ActionRead, ResourceChecklist},
		{ActionUpdate, ResourceChecklist},
		{ActionCreate, ResourceSP2D},
		{ActionRead, ResourceSP2D},
		{ActionDelete, ResourceSP2D},
		{ActionRead, ResourceUpload},
		{ActionRead, ResourceNotification},
		{ActionUpdate, ResourceNotification},
		{ActionExport, ResourceExport},
	},
	models.RoleVerifikator: {
		{ActionRead, ResourceRKA},
		{ActionRead, ResourceNPD},
		{ActionVerify, ResourceNPD},
		{ActionReject, ResourceNPD},
		{ActionRead, ResourceChecklist},
		{ActionUpdate, ResourceChecklist},
		{ActionRead, ResourceSP2D},
		{ActionRead, ResourceUpload},
		{ActionRead, ResourceNotification},
		{ActionUpdate, ResourceNotification},
		{ActionExport, ResourceExport},
	},
	models.RoleViewer: {
		{ActionRead, ResourceRKA},
		{ActionRead, ResourceNPD},
		{ActionRead, ResourceChecklist},
		{ActionRead, ResourceSP2D},
		{ActionRead, ResourceNotification},
		{ActionUpdate, ResourceNotification},
	},
}

// HasPermission reports whether role may perform action on resource.
// Pure table lookup, recomputed on every call. Unknown roles are
// denied; the function is total for arbitrary string inputs.
func HasPermission(role models.Role, action, resource string) bool {
	pairs, ok := permissionTable[role]
	if !ok {
		return false
	}

	for _, p := range pairs {
		if (p.action == ActionAll || p.action == action) &&
			(p.resource == ResourceAll || p.resource == resource) {
			return true
		}
	}
	return false
}
