package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas/internal/domain"
)

type testDirectory struct {
	assets  map[string]domain.Asset
	configs map[string]domain.AssetTypeConfig
}

func (d testDirectory) Asset(id string) (domain.Asset, bool) {
	a, ok := d.assets[id]
	return a, ok
}

func (d testDirectory) AssetTypeConfig(id string) (domain.AssetTypeConfig, bool) {
	c, ok := d.configs[id]
	return c, ok
}

func newTestDirectory() testDirectory {
	restaurant := domain.AssetTypeConfig{
		ID:   "type-restaurant",
		Name: "Restaurant",
		Positions: []domain.Position{
			{ID: "pos-res-sm", Title: "Store Manager"},
			{ID: "pos-res-crew", Title: "Crew Member"},
		},
		Pages: []domain.ConfigurablePage{
			{ID: "page-res-dash", Name: "Dashboard"},
			{ID: "page-res-reports", Name: "Reports", Permissions: []domain.GranularPermission{
				{ID: "perm-reports-view-pnl"},
				{ID: "perm-reports-view-sales"},
			}},
		},
		PermissionMatrix: domain.PermissionMatrix{
			"pos-res-sm": {
				"page-res-dash":           true,
				"page-res-reports":        true,
				"perm-reports-view-pnl":   true,
				"perm-reports-view-sales": true,
			},
			"pos-res-crew": {
				"page-res-dash":         true,
				"perm-reports-view-pnl": false,
			},
		},
	}

	return testDirectory{
		assets: map[string]domain.Asset{
			"asset-store-0142": {ID: "asset-store-0142", AssetTypeID: "type-restaurant"},
			"asset-orphan":     {ID: "asset-orphan", AssetTypeID: "type-missing"},
		},
		configs: map[string]domain.AssetTypeConfig{restaurant.ID: restaurant},
	}
}

func boolPtr(b bool) *bool { return &b }

func TestHasPermission(t *testing.T) {
	dir := newTestDirectory()

	manager := domain.User{
		ID:          "user-alex-chen",
		Assignments: []domain.Assignment{{AssetID: "asset-store-0142", PositionID: "pos-res-sm"}},
	}

	testCases := []struct {
		name       string
		user       domain.User
		assetID    string
		permission string
		expected   bool
	}{
		{name: "matrix grant", user: manager, assetID: "asset-store-0142", permission: "perm-reports-view-sales", expected: true},
		{name: "page id from matrix", user: manager, assetID: "asset-store-0142", permission: "page-res-reports", expected: true},
		{
			name: "override deny beats matrix grant",
			user: func() domain.User {
				u := manager.Clone()
				u.Overrides = []domain.UserPermissionOverride{
					{AssetID: "asset-store-0142", PermissionID: "perm-reports-view-pnl", HasPermission: false},
				}
				return u
			}(),
			assetID: "asset-store-0142", permission: "perm-reports-view-pnl", expected: false,
		},
		{
			name: "override grant without any position",
			user: domain.User{
				ID: "user-jenna",
				Overrides: []domain.UserPermissionOverride{
					{AssetID: "asset-store-0142", PermissionID: "perm-reports-view-pnl", HasPermission: true},
				},
			},
			assetID: "asset-store-0142", permission: "perm-reports-view-pnl", expected: true,
		},
		{name: "missing matrix entry", user: manager, assetID: "asset-store-0142", permission: "perm-unknown", expected: false},
		{name: "unknown asset", user: manager, assetID: "asset-missing", permission: "page-res-dash", expected: false},
		{name: "unknown blueprint", user: manager, assetID: "asset-orphan", permission: "page-res-dash", expected: false},
		{
			name: "position outside blueprint",
			user: domain.User{
				Assignments: []domain.Assignment{{AssetID: "asset-store-0142", PositionID: "pos-hot-gm"}},
			},
			assetID: "asset-store-0142", permission: "page-res-dash", expected: false,
		},
		{name: "no assignment at asset", user: domain.User{ID: "nobody"}, assetID: "asset-store-0142", permission: "page-res-dash", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HasPermission(dir, tc.user, tc.assetID, tc.permission))
		})
	}
}

func TestHasPermission_NilDirectory(t *testing.T) {
	user := domain.User{Assignments: []domain.Assignment{{AssetID: "a", PositionID: "p"}}}
	assert.False(t, HasPermission(nil, user, "a", "perm"))
}

func TestEffectivePermissions(t *testing.T) {
	dir := newTestDirectory()

	crew := domain.User{
		Assignments: []domain.Assignment{{AssetID: "asset-store-0142", PositionID: "pos-res-crew"}},
		Overrides: []domain.UserPermissionOverride{
			{AssetID: "asset-store-0142", PermissionID: "perm-reports-view-sales", HasPermission: true},
		},
	}

	got := EffectivePermissions(dir, crew, "asset-store-0142")

	assert.Equal(t, map[string]bool{
		"page-res-dash":           true,
		"page-res-reports":        false,
		"perm-reports-view-pnl":   false,
		"perm-reports-view-sales": true,
	}, got)
}

func TestCanLaunchTemplate(t *testing.T) {
	tpl := domain.ProjectTemplate{
		ID: "template-1",
		AccessPermissions: domain.AccessPermissions{
			UserIDs:     []string{"user-direct"},
			PositionIDs: []string{"pos-res-sm", "pos-hot-gm"},
		},
	}

	testCases := []struct {
		name     string
		user     domain.User
		expected bool
	}{
		{name: "listed user", user: domain.User{ID: "user-direct"}, expected: true},
		{
			name: "listed position at any asset",
			user: domain.User{ID: "u", Assignments: []domain.Assignment{
				{AssetID: "asset-store-0255", PositionID: "pos-res-crew"},
				{AssetID: "asset-hotel-1", PositionID: "pos-hot-gm"},
			}},
			expected: true,
		},
		{name: "admin", user: domain.User{ID: "admin", GlobalPermissions: []string{PermAccessAdminPanel}}, expected: true},
		{
			name: "other global flag only",
			user: domain.User{ID: "u", GlobalPermissions: []string{PermManageAllUsers}},
		},
		{
			name: "unlisted position",
			user: domain.User{ID: "u", Assignments: []domain.Assignment{{AssetID: "a", PositionID: "pos-res-crew"}}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanLaunchTemplate(tc.user, tpl))
		})
	}
}

func TestHasGlobalPermission(t *testing.T) {
	admin := domain.User{GlobalPermissions: []string{PermAccessAdminPanel}}
	reporter := domain.User{GlobalPermissions: []string{PermViewAllRestaurantReports}}

	assert.True(t, HasGlobalPermission(admin, PermManageAllUsers))
	assert.True(t, HasGlobalPermission(reporter, PermViewAllRestaurantReports))
	assert.False(t, HasGlobalPermission(reporter, PermManageAllUsers))
	assert.True(t, IsAdmin(admin))
	assert.False(t, IsAdmin(reporter))
}

func TestSetOverride(t *testing.T) {
	original := []domain.UserPermissionOverride{
		{AssetID: "a1", PermissionID: "p1", HasPermission: true},
		{AssetID: "a1", PermissionID: "p2", HasPermission: false},
	}

	denied := SetOverride(original, "a1", "p1", boolPtr(false))
	require.Len(t, denied, 2)

	o, ok := FindOverride(denied, "a1", "p1")
	require.True(t, ok)
	assert.False(t, o.HasPermission)

	inherited := SetOverride(denied, "a1", "p2", nil)
	assert.Len(t, inherited, 1)
	_, ok = FindOverride(inherited, "a1", "p2")
	assert.False(t, ok)

	// input untouched
	assert.True(t, original[0].HasPermission)
	assert.Len(t, original, 2)
}

func TestNormalizeOverrides(t *testing.T) {
	got := NormalizeOverrides([]domain.UserPermissionOverride{
		{AssetID: "a1", PermissionID: "p1", HasPermission: true},
		{AssetID: "a2", PermissionID: "p1", HasPermission: true},
		{AssetID: "a1", PermissionID: "p1", HasPermission: false},
	})

	assert.Equal(t, []domain.UserPermissionOverride{
		{AssetID: "a2", PermissionID: "p1", HasPermission: true},
		{AssetID: "a1", PermissionID: "p1", HasPermission: false},
	}, got)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cr3t")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("s3cr3t", hash))
	assert.False(t, VerifyPassword("wrong", hash))
	assert.False(t, VerifyPassword("s3cr3t", ""))
	assert.False(t, VerifyPassword("s3cr3t", "not-a-hash"))

	_, err = HashPassword("")
	require.ErrorIs(t, err, ErrPasswordEmpty)
}
