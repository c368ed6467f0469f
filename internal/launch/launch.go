// Package launch turns project templates into active projects.
//
// The engine resolves placeholders and relative due dates for every template
// task. It does not check launch rights; callers verify
// auth.CanLaunchTemplate first.
package launch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/duedate"
	"github.com/atlas-ops/atlas/internal/placeholder"
)

var (
	// ErrTemplateNotFound is returned when a launch names no template.
	ErrTemplateNotFound = errors.New("project template not found")

	// ErrAssetNotFound is returned when a launch names no primary asset.
	ErrAssetNotFound = errors.New("primary asset not found")
)

// Engine launches projects. Now and NewID are injectable for tests.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

// New returns an engine using the wall clock and random UUIDs.
func New() *Engine {
	return &Engine{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Request carries the inputs of a launch.
type Request struct {
	Template     *domain.ProjectTemplate
	PrimaryAsset *domain.Asset
	// Name of the project; the template name when empty.
	Name string
	// Answers are the launcher's placeholder choices. Unanswered placeholders
	// fall back to the template defaults.
	Answers    map[string]domain.TaskAssignment
	LaunchedBy string
}

// Launch builds a new active project. Nothing in the request is modified and
// the result shares no memory with the template.
func (e *Engine) Launch(req Request) (domain.ActiveProject, error) {
	if req.Template == nil {
		return domain.ActiveProject{}, ErrTemplateNotFound
	}

	if req.PrimaryAsset == nil {
		return domain.ActiveProject{}, ErrAssetNotFound
	}

	now := e.Now()
	answers := placeholder.Answers(req.Template.DefinedPlaceholders, req.Answers)

	tasks := make([]domain.ActiveTask, 0, len(req.Template.Tasks))

	for _, tpl := range req.Template.Tasks {
		task := tpl.Clone()
		task.Assignment = placeholder.ResolveAssignment(tpl.Assignment, answers)

		due, err := duedate.Resolve(duedate.AnchorFor(tpl.DueDate.Ref, now), tpl.DueDate)
		if err != nil {
			return domain.ActiveProject{}, fmt.Errorf("task %q: %w", tpl.ID, err)
		}

		tasks = append(tasks, domain.ActiveTask{
			Task:            task,
			SourceType:      sourceTypeOf(tpl),
			Status:          domain.StatusPending,
			AbsoluteDueDate: due,
		})
	}

	name := req.Name
	if name == "" {
		name = req.Template.Name
	}

	return domain.ActiveProject{
		ID:             e.NewID(),
		Name:           name,
		TemplateID:     req.Template.ID,
		PrimaryAssetID: req.PrimaryAsset.ID,
		Status:         domain.ProjectOnTrack,
		LaunchedAt:     now,
		LaunchedBy:     req.LaunchedBy,
		Tasks:          tasks,
	}, nil
}

func sourceTypeOf(t domain.TemplateTask) domain.SourceType {
	if t.Kind() == domain.KindRecurringTask {
		return domain.SourceRecurringTask
	}

	return domain.SourceProject
}
