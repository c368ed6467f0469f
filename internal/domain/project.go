package domain

import (
	"slices"
	"time"
)

// TaskStatus is the state of an active task or action item.
type TaskStatus string

// Task states. Only Pending and Completed are reached by toggling.
const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusBlocked    TaskStatus = "Blocked"
)

// SourceType records where a task in the action center came from.
type SourceType string

// Task sources.
const (
	SourceProject       SourceType = "project"
	SourceRecurringTask SourceType = "recurring_task"
	SourceStandalone    SourceType = "standalone"
)

// ProjectStatus is the health of an active project.
type ProjectStatus string

// Project states.
const (
	ProjectOnTrack  ProjectStatus = "On Track"
	ProjectAtRisk   ProjectStatus = "At Risk"
	ProjectOffTrack ProjectStatus = "Off Track"
)

// ActiveTask is a launched TemplateTask with resolved assignment and due date.
type ActiveTask struct {
	Task            TemplateTask `json:"task"`
	SourceType      SourceType   `json:"sourceType"`
	Status          TaskStatus   `json:"status"`
	CompletedAt     *time.Time   `json:"completedAt,omitempty"`
	CompletedBy     string       `json:"completedBy,omitempty"`
	AbsoluteDueDate time.Time    `json:"absoluteDueDate"`
}

// Clone returns a deep copy of the task.
func (t ActiveTask) Clone() ActiveTask {
	out := t
	out.Task = t.Task.Clone()

	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}

	return out
}

// ActiveProject is a launched project template.
type ActiveProject struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	TemplateID     string        `json:"templateId"`
	PrimaryAssetID string        `json:"primaryAssetId"`
	Status         ProjectStatus `json:"status"`
	LaunchedAt     time.Time     `json:"launchedAt"`
	LaunchedBy     string        `json:"launchedBy"`
	Tasks          []ActiveTask  `json:"tasks"`
}

// TaskIndex returns the position of the task with the given id.
func (p ActiveProject) TaskIndex(taskID string) int {
	return slices.IndexFunc(p.Tasks, func(t ActiveTask) bool {
		return t.Task.ID == taskID
	})
}

// Clone returns a deep copy of the project.
func (p ActiveProject) Clone() ActiveProject {
	out := p
	if p.Tasks != nil {
		out.Tasks = make([]ActiveTask, len(p.Tasks))
		for i, t := range p.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}

	return out
}

// ActionItem is a standalone task outside any project.
type ActionItem struct {
	ID          string `json:"id"`
	Description string `json:"description" validate:"required"`
	// Source is the display name of whoever created the item.
	Source string `json:"source"`
	// OwnerID is the user the item belongs to.
	OwnerID         string     `json:"ownerId,omitempty"`
	DueDate         time.Time  `json:"dueDate"`
	Status          TaskStatus `json:"status"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	SourceType      SourceType `json:"sourceType"`
	AttachmentCount int        `json:"attachmentCount"`
	CommentCount    int        `json:"commentCount"`
	SOPLink         string     `json:"sopLink,omitempty"`
}

// Clone returns a deep copy of the item.
func (a ActionItem) Clone() ActionItem {
	out := a
	if a.CompletedAt != nil {
		at := *a.CompletedAt
		out.CompletedAt = &at
	}

	return out
}

// DisplayTask is the unified action center row for project tasks and action items.
type DisplayTask struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Status               TaskStatus     `json:"status"`
	Assignment           TaskAssignment `json:"assignment"`
	AbsoluteDueDate      time.Time      `json:"absoluteDueDate"`
	CompletedAt          *time.Time     `json:"completedAt,omitempty"`
	SourceType           SourceType     `json:"sourceType"`
	ProjectID            string         `json:"projectId,omitempty"`
	ProjectName          string         `json:"projectName,omitempty"`
	OriginalTaskID       string         `json:"originalTaskId,omitempty"`
	OriginalActionItemID string         `json:"originalActionItemId,omitempty"`
	IsRecurringInstance  bool           `json:"isRecurringInstance"`
	AssetName            string         `json:"assetName,omitempty"`
	AttachmentCount      int            `json:"attachmentCount"`
	CommentCount         int            `json:"commentCount"`
	SOPLink              string         `json:"sopLink,omitempty"`
}
