package launch

import (
	"slices"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
)

// AppliesTo reports whether the template can be launched at the asset.
// A non-empty asset allow-list replaces the asset type filter.
func AppliesTo(t domain.ProjectTemplate, asset domain.Asset) bool {
	if len(t.AppliesToAssetIDs) > 0 {
		return slices.Contains(t.AppliesToAssetIDs, asset.ID)
	}

	return slices.Contains(t.AppliesToAssetTypeIDs, asset.AssetTypeID)
}

// Available returns the templates the user may launch at the asset.
func Available(user domain.User, templates []domain.ProjectTemplate, asset domain.Asset) []domain.ProjectTemplate {
	out := make([]domain.ProjectTemplate, 0, len(templates))

	for _, t := range templates {
		if AppliesTo(t, asset) && auth.CanLaunchTemplate(user, t) {
			out = append(out, t)
		}
	}

	return out
}
