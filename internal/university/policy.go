package university

import (
	"slices"

	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/tracker"
)

// AssigneePolicy decides whether a task counts as assigned to the user when
// a course completion is propagated.
type AssigneePolicy func(user domain.User, project domain.ActiveProject, task domain.ActiveTask) bool

// PositionMatch matches the user directly or by any position id the user
// holds, at any asset. A position id reused across asset types matches
// everywhere.
func PositionMatch(user domain.User, _ domain.ActiveProject, task domain.ActiveTask) bool {
	return tracker.AssignedTo(task.Task.Assignment, user)
}

// AssetScopedPositionMatch only counts the position the user holds at the
// project's primary asset.
func AssetScopedPositionMatch(user domain.User, project domain.ActiveProject, task domain.ActiveTask) bool {
	a := task.Task.Assignment
	if slices.Contains(a.UserIDs, user.ID) {
		return true
	}

	positionID, ok := user.PositionAt(project.PrimaryAssetID)

	return ok && slices.Contains(a.RoleIDs, positionID)
}

// PolicyByName maps a configured policy name to its function.
// Unknown names fall back to PositionMatch.
func PolicyByName(name string) AssigneePolicy {
	switch name {
	case "asset_scoped":
		return AssetScopedPositionMatch
	default:
		return PositionMatch
	}
}
