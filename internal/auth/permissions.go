package auth

// Global permission flags. They are carried on the user and bypass the
// asset scoped permission matrix.
const (
	// PermAccessAdminPanel allows access to every administration feature.
	PermAccessAdminPanel = "ACCESS_ADMIN_PANEL"
	// PermViewAllRestaurantReports allows viewing P&L for all restaurant assets.
	PermViewAllRestaurantReports = "VIEW_ALL_RESTAURANT_REPORTS"
	// PermManageAllUsers allows creating, editing and deactivating any user.
	PermManageAllUsers = "MANAGE_ALL_USERS"
)

// GlobalPermission describes a global permission flag.
type GlobalPermission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GlobalPermissions lists the known global flags.
func GlobalPermissions() []GlobalPermission {
	return []GlobalPermission{
		{ID: "perm-1", Name: PermAccessAdminPanel, Description: "Can access the global admin panel."},
		{ID: "perm-2", Name: PermViewAllRestaurantReports, Description: "Can view P&L for all restaurant assets."},
		{ID: "perm-3", Name: PermManageAllUsers, Description: "Can create, edit, and deactivate any user."},
	}
}
