// Package placeholder resolves template placeholders into concrete assignments.
package placeholder

import (
	"slices"

	"github.com/atlas-ops/atlas/internal/domain"
)

// Answers merges launch-time choices over the template defaults.
// A placeholder the launcher answered uses that answer even when it is empty.
func Answers(defined []domain.DefinedPlaceholder, explicit map[string]domain.TaskAssignment) map[string]domain.TaskAssignment {
	out := make(map[string]domain.TaskAssignment, len(defined)+len(explicit))

	for _, p := range defined {
		out[p.ID] = p.DefaultAssignment.Clone()
	}

	for id, answer := range explicit {
		out[id] = answer.Clone()
	}

	return out
}

// ResolveAssignment folds the answers of every referenced placeholder into the
// assignment. Role and user ids are deduplicated in first-seen order, and the
// result never references placeholders. Placeholders without an answer add
// nothing, so the result may be empty.
func ResolveAssignment(a domain.TaskAssignment, answers map[string]domain.TaskAssignment) domain.TaskAssignment {
	roles := appendUnique(make([]string, 0, len(a.RoleIDs)), a.RoleIDs...)
	users := appendUnique(make([]string, 0, len(a.UserIDs)), a.UserIDs...)

	for _, id := range a.PlaceholderIDs {
		answer, ok := answers[id]
		if !ok {
			continue
		}

		roles = appendUnique(roles, answer.RoleIDs...)
		users = appendUnique(users, answer.UserIDs...)
	}

	return domain.TaskAssignment{
		RoleIDs:        roles,
		UserIDs:        users,
		PlaceholderIDs: []string{},
	}
}

func appendUnique(dst []string, ids ...string) []string {
	for _, id := range ids {
		if !slices.Contains(dst, id) {
			dst = append(dst, id)
		}
	}

	return dst
}
