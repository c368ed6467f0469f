// Package tracker implements the task state machine of active projects and
// standalone action items.
//
// Toggling is symmetric: a completed task goes back to Pending and loses its
// completion stamp, anything else becomes Completed. Project status is set
// at launch and never recomputed here.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/atlas-ops/atlas/internal/domain"
)

var (
	// ErrTaskNotFound is returned when a project has no task with the given id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrActionItemNotFound is returned when no action item has the given id.
	ErrActionItemNotFound = errors.New("action item not found")
	// ErrDescriptionEmpty is returned when an action item has no description.
	ErrDescriptionEmpty = errors.New("action item description cannot be empty")
)

// Complete marks the task Completed by actor. It reports false and leaves the
// task untouched when it was already completed.
func Complete(task *domain.ActiveTask, actor domain.User, now time.Time) bool {
	if task.Status == domain.StatusCompleted {
		return false
	}

	at := now
	task.Status = domain.StatusCompleted
	task.CompletedAt = &at
	task.CompletedBy = actor.DisplayName()

	return true
}

// Reopen puts the task back to Pending and clears the completion stamp.
func Reopen(task *domain.ActiveTask) {
	task.Status = domain.StatusPending
	task.CompletedAt = nil
	task.CompletedBy = ""
}

// ToggleTask flips one task of the project in place and returns its new state.
func ToggleTask(project *domain.ActiveProject, taskID string, actor domain.User, now time.Time) (domain.ActiveTask, error) {
	i := project.TaskIndex(taskID)
	if i < 0 {
		return domain.ActiveTask{}, fmt.Errorf("%w: %q in project %q", ErrTaskNotFound, taskID, project.ID)
	}

	task := &project.Tasks[i]
	if task.Status == domain.StatusCompleted {
		Reopen(task)
	} else {
		Complete(task, actor, now)
	}

	return task.Clone(), nil
}

// NewActionItem creates a pending standalone item owned by actor.
func NewActionItem(id string, actor domain.User, description string, due time.Time) (domain.ActionItem, error) {
	if description == "" {
		return domain.ActionItem{}, ErrDescriptionEmpty
	}

	return domain.ActionItem{
		ID:          id,
		Description: description,
		Source:      actor.DisplayName(),
		OwnerID:     actor.ID,
		DueDate:     due,
		Status:      domain.StatusPending,
		SourceType:  domain.SourceStandalone,
	}, nil
}

// ToggleActionItem flips the item between Pending and Completed.
func ToggleActionItem(item *domain.ActionItem, now time.Time) {
	if item.Status == domain.StatusCompleted {
		item.Status = domain.StatusPending
		item.CompletedAt = nil

		return
	}

	at := now
	item.Status = domain.StatusCompleted
	item.CompletedAt = &at
}
