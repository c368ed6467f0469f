package domain

import (
	"slices"
	"strings"
)

// Assignment binds a user to a position at an asset.
// AssetName and PositionTitle are cache fields kept in sync on rename.
type Assignment struct {
	ID            string `json:"id"`
	AssetID       string `json:"assetId" validate:"required"`
	AssetName     string `json:"assetName"`
	PositionID    string `json:"positionId" validate:"required"`
	PositionTitle string `json:"positionTitle"`
}

// UserPermissionOverride is an explicit grant or deny of one permission at one asset.
type UserPermissionOverride struct {
	AssetID       string `json:"assetId" validate:"required"`
	PermissionID  string `json:"permissionId" validate:"required"`
	HasPermission bool   `json:"hasPermission"`
}

// User is an account of the console.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	// PasswordHash is the argon2id hash of the password.
	PasswordHash      string                   `json:"passwordHash,omitempty"`
	IsActive          bool                     `json:"isActive"`
	Assignments       []Assignment             `json:"assignments" validate:"dive"`
	GlobalPermissions []string                 `json:"globalPermissions"`
	Overrides         []UserPermissionOverride `json:"overrides" validate:"dive"`
}

// DisplayName is "First Last".
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PositionAt returns the position the user holds at the given asset.
func (u User) PositionAt(assetID string) (string, bool) {
	for _, a := range u.Assignments {
		if a.AssetID == assetID {
			return a.PositionID, true
		}
	}

	return "", false
}

// PositionIDs lists the position ids the user holds at any asset.
func (u User) PositionIDs() []string {
	ids := make([]string, 0, len(u.Assignments))
	for _, a := range u.Assignments {
		if !slices.Contains(ids, a.PositionID) {
			ids = append(ids, a.PositionID)
		}
	}

	return ids
}

// Redacted returns a copy without the password hash.
func (u User) Redacted() User {
	out := u.Clone()
	out.PasswordHash = ""

	return out
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	out := u
	out.Assignments = slices.Clone(u.Assignments)
	out.GlobalPermissions = slices.Clone(u.GlobalPermissions)
	out.Overrides = slices.Clone(u.Overrides)

	return out
}
