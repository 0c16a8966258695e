package rbac

// PermissionKey identifies a protected surface of the application.
// Call sites use the constants below; free-form strings reaching the
// evaluator are still handled (unknown keys evaluate to deny for
// role-bound users) so a typo can never silently allow.
type PermissionKey string

const (
	PermDashboard       PermissionKey = "dashboard"
	PermProductsView    PermissionKey = "products.view"
	PermProductsManage  PermissionKey = "products.manage"
	PermInventoryView   PermissionKey = "inventory.view"
	PermInventoryManage PermissionKey = "inventory.manage"
	PermCustomersView   PermissionKey = "customers.view"
	PermCustomersManage PermissionKey = "customers.manage"
	PermExpensesView    PermissionKey = "expenses.view"
	PermExpensesManage  PermissionKey = "expenses.manage"
	PermLocationsView   PermissionKey = "locations.view"
	PermLocationsManage PermissionKey = "locations.manage"
	PermRolesManage     PermissionKey = "roles.manage"
	PermUsersManage     PermissionKey = "users.manage"
	PermReportsView     PermissionKey = "reports.view"
)

// KnownPermissions lists every permission key the application checks,
// in the order settings screens present them.
var KnownPermissions = []PermissionKey{
	PermDashboard,
	PermProductsView,
	PermProductsManage,
	PermInventoryView,
	PermInventoryManage,
	PermCustomersView,
	PermCustomersManage,
	PermExpensesView,
	PermExpensesManage,
	PermLocationsView,
	PermLocationsManage,
	PermRolesManage,
	PermUsersManage,
	PermReportsView,
}

// IsKnownPermission reports whether key belongs to the closed set.
func IsKnownPermission(key PermissionKey) bool {
	for _, k := range KnownPermissions {
		if k == key {
			return true
		}
	}
	return false
}

// PermissionSet maps permission keys to grant decisions as stored on a
// role. An absent key means denied.
type PermissionSet map[PermissionKey]bool

// Allows reports whether the set grants the given key.
func (ps PermissionSet) Allows(key PermissionKey) bool {
	return ps[key]
}
