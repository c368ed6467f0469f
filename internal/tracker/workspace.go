package tracker

import (
	"cmp"
	"slices"

	"github.com/atlas-ops/atlas/internal/domain"
)

// AssignedTo reports whether the resolved assignment names the user directly
// or through any position the user holds.
func AssignedTo(a domain.TaskAssignment, user domain.User) bool {
	if slices.Contains(a.UserIDs, user.ID) {
		return true
	}

	for _, positionID := range user.PositionIDs() {
		if slices.Contains(a.RoleIDs, positionID) {
			return true
		}
	}

	return false
}

// Workspace builds the action center of the user: every project task assigned
// to them and every action item they own, ordered by due date.
// Items without an owner are shared and shown to everyone.
func Workspace(projects []domain.ActiveProject, items []domain.ActionItem, assets []domain.Asset, user domain.User) []domain.DisplayTask {
	assetNames := make(map[string]string, len(assets))
	for _, a := range assets {
		assetNames[a.ID] = a.Name
	}

	out := make([]domain.DisplayTask, 0)

	for _, p := range projects {
		for _, t := range p.Tasks {
			if !AssignedTo(t.Task.Assignment, user) {
				continue
			}

			out = append(out, projectRow(p, t, assetNames[p.PrimaryAssetID]))
		}
	}

	for _, item := range items {
		if item.OwnerID != "" && item.OwnerID != user.ID {
			continue
		}

		out = append(out, actionItemRow(item))
	}

	slices.SortStableFunc(out, func(a, b domain.DisplayTask) int {
		if c := a.AbsoluteDueDate.Compare(b.AbsoluteDueDate); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return out
}

func projectRow(p domain.ActiveProject, t domain.ActiveTask, assetName string) domain.DisplayTask {
	t = t.Clone()

	return domain.DisplayTask{
		ID:                  "proj-task-" + p.ID + "-" + t.Task.ID,
		Title:               t.Task.Title,
		Status:              t.Status,
		Assignment:          t.Task.Assignment,
		AbsoluteDueDate:     t.AbsoluteDueDate,
		CompletedAt:         t.CompletedAt,
		SourceType:          t.SourceType,
		ProjectID:           p.ID,
		ProjectName:         p.Name,
		OriginalTaskID:      t.Task.ID,
		IsRecurringInstance: t.SourceType == domain.SourceRecurringTask,
		AssetName:           assetName,
		AttachmentCount:     t.Task.AttachmentCount,
		CommentCount:        t.Task.CommentCount,
		SOPLink:             t.Task.SOPLink,
	}
}

func actionItemRow(item domain.ActionItem) domain.DisplayTask {
	item = item.Clone()

	return domain.DisplayTask{
		ID:                   "action-item-" + item.ID,
		Title:                item.Description,
		Status:               item.Status,
		Assignment:           domain.TaskAssignment{RoleIDs: []string{}, UserIDs: ownerIDs(item), PlaceholderIDs: []string{}},
		AbsoluteDueDate:      item.DueDate,
		CompletedAt:          item.CompletedAt,
		SourceType:           item.SourceType,
		OriginalActionItemID: item.ID,
		IsRecurringInstance:  item.SourceType == domain.SourceRecurringTask,
		AttachmentCount:      item.AttachmentCount,
		CommentCount:         item.CommentCount,
		SOPLink:              item.SOPLink,
	}
}

func ownerIDs(item domain.ActionItem) []string {
	if item.OwnerID == "" {
		return []string{}
	}

	return []string{item.OwnerID}
}
