// Package domain contains the entity types shared by every Atlas component.
//
// Aggregates are plain values. Every aggregate exposes a Clone method that
// returns a deep copy, so services can apply copy-on-write updates without
// leaking references to their internal state.
package domain

import (
	"maps"
	"slices"
)

// GranularPermission is a single action a user can take on a page.
type GranularPermission struct {
	// ID is the permission id referenced by the permission matrix and overrides.
	ID string `json:"id" validate:"required"`
	// Description is a human readable explanation of the permission.
	Description string `json:"description"`
}

// ConfigurablePage is a page or tool of an asset type, carrying its own permissions.
type ConfigurablePage struct {
	// ID is the page id. Page ids are valid permission ids in the matrix.
	ID string `json:"id" validate:"required"`
	// Name is the display name of the page.
	Name string `json:"name" validate:"required"`
	// Icon is the icon key used by the console.
	Icon string `json:"icon"`
	// Permissions are the granular permissions the page offers.
	Permissions []GranularPermission `json:"permissions" validate:"dive"`
}

// Position is a job title, scoped to one asset type.
type Position struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
}

// PermissionMatrix maps position id to permission or page id to a grant flag.
type PermissionMatrix map[string]map[string]bool

// Allows reports the matrix entry for the given position and permission.
// Missing entries are false.
func (m PermissionMatrix) Allows(positionID, permissionID string) bool {
	return m[positionID][permissionID]
}

// Clone returns a deep copy of the matrix.
func (m PermissionMatrix) Clone() PermissionMatrix {
	if m == nil {
		return nil
	}

	out := make(PermissionMatrix, len(m))
	for position, row := range m {
		out[position] = maps.Clone(row)
	}

	return out
}

// AssetTypeConfig is the access control blueprint for a category of assets.
type AssetTypeConfig struct {
	ID               string             `json:"id" validate:"required"`
	Name             string             `json:"name" validate:"required"`
	Positions        []Position         `json:"positions" validate:"dive"`
	Pages            []ConfigurablePage `json:"pages" validate:"dive"`
	PermissionMatrix PermissionMatrix   `json:"permissionMatrix"`
}

// Position looks up a position of this blueprint by id.
func (c AssetTypeConfig) Position(id string) (Position, bool) {
	for _, p := range c.Positions {
		if p.ID == id {
			return p, true
		}
	}

	return Position{}, false
}

// PermissionIDs lists every page id and granular permission id of the blueprint
// in page order.
func (c AssetTypeConfig) PermissionIDs() []string {
	ids := make([]string, 0, len(c.Pages))

	for _, page := range c.Pages {
		ids = append(ids, page.ID)
		for _, perm := range page.Permissions {
			ids = append(ids, perm.ID)
		}
	}

	return ids
}

// Clone returns a deep copy of the blueprint.
func (c AssetTypeConfig) Clone() AssetTypeConfig {
	out := c
	out.Positions = slices.Clone(c.Positions)
	out.PermissionMatrix = c.PermissionMatrix.Clone()

	if c.Pages != nil {
		out.Pages = make([]ConfigurablePage, len(c.Pages))
		for i, page := range c.Pages {
			page.Permissions = slices.Clone(page.Permissions)
			out.Pages[i] = page
		}
	}

	return out
}
