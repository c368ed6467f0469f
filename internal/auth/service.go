package auth

import (
	"slices"

	"github.com/atlas-ops/atlas/internal/domain"
)

// Directory looks up the assets and blueprints permissions are resolved against.
type Directory interface {
	Asset(id string) (domain.Asset, bool)
	AssetTypeConfig(id string) (domain.AssetTypeConfig, bool)
}

// HasPermission resolves whether user may use permissionID (a granular
// permission or a page id) at the given asset.
func HasPermission(dir Directory, user domain.User, assetID, permissionID string) bool {
	if override, ok := FindOverride(user.Overrides, assetID, permissionID); ok {
		return override.HasPermission
	}

	config, positionID, ok := blueprintAt(dir, user, assetID)
	if !ok {
		return false
	}

	return config.PermissionMatrix.Allows(positionID, permissionID)
}

// EffectivePermissions resolves every page and granular permission of the
// asset's blueprint for the user. Overrides on ids outside the blueprint are
// included as well.
func EffectivePermissions(dir Directory, user domain.User, assetID string) map[string]bool {
	out := make(map[string]bool)

	if asset, ok := dir.Asset(assetID); ok {
		if config, ok := dir.AssetTypeConfig(asset.AssetTypeID); ok {
			for _, id := range config.PermissionIDs() {
				out[id] = HasPermission(dir, user, assetID, id)
			}
		}
	}

	for _, o := range user.Overrides {
		if o.AssetID == assetID {
			out[o.PermissionID] = o.HasPermission
		}
	}

	return out
}

// HasGlobalPermission reports whether the user carries the global flag.
// Administrators hold every global flag.
func HasGlobalPermission(user domain.User, permission string) bool {
	if slices.Contains(user.GlobalPermissions, PermAccessAdminPanel) {
		return true
	}

	return slices.Contains(user.GlobalPermissions, permission)
}

// IsAdmin reports whether the user may access the admin panel.
func IsAdmin(user domain.User) bool {
	return slices.Contains(user.GlobalPermissions, PermAccessAdminPanel)
}

// CanLaunchTemplate reports whether the user may launch the template.
// The asset is not consulted: position matches count at any asset.
func CanLaunchTemplate(user domain.User, template domain.ProjectTemplate) bool {
	if IsAdmin(user) {
		return true
	}

	if slices.Contains(template.AccessPermissions.UserIDs, user.ID) {
		return true
	}

	for _, a := range user.Assignments {
		if slices.Contains(template.AccessPermissions.PositionIDs, a.PositionID) {
			return true
		}
	}

	return false
}

// blueprintAt returns the blueprint of the asset and the position the user
// holds there. The position must exist in the blueprint.
func blueprintAt(dir Directory, user domain.User, assetID string) (domain.AssetTypeConfig, string, bool) {
	if dir == nil {
		return domain.AssetTypeConfig{}, "", false
	}

	asset, ok := dir.Asset(assetID)
	if !ok {
		return domain.AssetTypeConfig{}, "", false
	}

	config, ok := dir.AssetTypeConfig(asset.AssetTypeID)
	if !ok {
		return domain.AssetTypeConfig{}, "", false
	}

	positionID, ok := user.PositionAt(assetID)
	if !ok {
		return domain.AssetTypeConfig{}, "", false
	}

	if _, ok = config.Position(positionID); !ok {
		return domain.AssetTypeConfig{}, "", false
	}

	return config, positionID, true
}
