package auth

import (
	"slices"

	"github.com/atlas-ops/atlas/internal/domain"
)

// FindOverride returns the override for (assetID, permissionID), if any.
func FindOverride(overrides []domain.UserPermissionOverride, assetID, permissionID string) (domain.UserPermissionOverride, bool) {
	for _, o := range overrides {
		if o.AssetID == assetID && o.PermissionID == permissionID {
			return o, true
		}
	}

	return domain.UserPermissionOverride{}, false
}

// SetOverride returns a new override list with (assetID, permissionID) set to
// grant (true), deny (false) or inherit (nil). Inherit removes the record.
// The input slice is not modified.
func SetOverride(
	overrides []domain.UserPermissionOverride,
	assetID, permissionID string,
	value *bool,
) []domain.UserPermissionOverride {
	out := slices.DeleteFunc(slices.Clone(overrides), func(o domain.UserPermissionOverride) bool {
		return o.AssetID == assetID && o.PermissionID == permissionID
	})

	if value != nil {
		out = append(out, domain.UserPermissionOverride{
			AssetID:       assetID,
			PermissionID:  permissionID,
			HasPermission: *value,
		})
	}

	return out
}

// NormalizeOverrides keeps at most one override per (asset, permission).
// The last record wins and keeps its position.
func NormalizeOverrides(overrides []domain.UserPermissionOverride) []domain.UserPermissionOverride {
	type key struct{ asset, permission string }

	last := make(map[key]int, len(overrides))
	for i, o := range overrides {
		last[key{o.AssetID, o.PermissionID}] = i
	}

	out := make([]domain.UserPermissionOverride, 0, len(last))
	for i, o := range overrides {
		if last[key{o.AssetID, o.PermissionID}] == i {
			out = append(out, o)
		}
	}

	return out
}
