// Package auth implements the Atlas permission model and password handling.
//
// Permissions are scoped to assets. Every asset has an asset type, and every
// asset type carries a blueprint (domain.AssetTypeConfig) listing its
// positions, its pages with their granular permissions, and a matrix granting
// page and permission ids to positions.
//
// # Resolution
//
// For a user, an asset and a permission id the effective value is
//
//	override.HasPermission   if the user has an override for (asset, permission)
//	matrix[position][perm]   for the position the user holds at the asset
//	false                    otherwise
//
// Unknown assets, blueprints and positions resolve to false. Resolution never
// fails.
//
// # Global permissions
//
// Users may carry global flags. PermAccessAdminPanel marks an administrator
// and passes every admin-gated check regardless of the matrix.
//
// # Launch rights
//
// CanLaunchTemplate allows a user named in the template's access list, a user
// holding one of the listed positions at any asset, or an administrator.
//
// Example usage:
//
//	if !auth.HasPermission(dir, user, assetID, "perm-reports-view-pnl") {
//	    return ErrUnauthorized
//	}
//
//	user.Overrides = auth.SetOverride(user.Overrides, assetID, permID, nil) // inherit
package auth
