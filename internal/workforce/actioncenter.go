package workforce

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/launch"
	"github.com/atlas-ops/atlas/internal/metrics"
	"github.com/atlas-ops/atlas/internal/notify"
	"github.com/atlas-ops/atlas/internal/tracker"
)

// ActiveProject returns the project with the given id.
func (s *Service) ActiveProject(id string) (domain.ActiveProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects.get(id)
	if !ok {
		return domain.ActiveProject{}, fmt.Errorf("%w: %q", ErrProjectNotFound, id)
	}

	return p, nil
}

// ActiveProjects lists every launched project.
func (s *Service) ActiveProjects() []domain.ActiveProject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.projects.list()
}

// ActionItems lists every standalone action item.
func (s *Service) ActionItems() []domain.ActionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.items.list()
}

// LaunchInput is a project launch request.
type LaunchInput struct {
	TemplateID string                           `json:"templateId" validate:"required"`
	AssetID    string                           `json:"assetId" validate:"required"`
	Name       string                           `json:"name"`
	Answers    map[string]domain.TaskAssignment `json:"answers"`
}

// LaunchProject launches a template at an asset on behalf of the actor.
// Directly assigned users are notified once the project is stored.
func (s *Service) LaunchProject(ctx context.Context, actorID string, in LaunchInput) (domain.ActiveProject, error) {
	if err := s.validateStruct(in); err != nil {
		return domain.ActiveProject{}, err
	}

	project, outbox, err := s.launchProject(ctx, actorID, in)
	if err != nil {
		return domain.ActiveProject{}, err
	}

	s.send(ctx, outbox)

	return project, nil
}

func (s *Service) launchProject(ctx context.Context, actorID string, in LaunchInput) (domain.ActiveProject, []notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.user(actorID)
	if err != nil {
		return domain.ActiveProject{}, nil, err
	}

	template, ok := s.templates.get(in.TemplateID)
	if !ok {
		return domain.ActiveProject{}, nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, in.TemplateID)
	}

	asset, ok := s.assets.get(in.AssetID)
	if !ok {
		return domain.ActiveProject{}, nil, fmt.Errorf("%w: %q", ErrAssetNotFound, in.AssetID)
	}

	if !auth.CanLaunchTemplate(actor, template) {
		metrics.PermissionDenials.WithLabelValues("launch_project").Inc()
		log.Warn().Str("user", actorID).Str("template", template.ID).Msg("launch refused")

		return domain.ActiveProject{}, nil, fmt.Errorf("%w: %q may not launch template %q", ErrUnauthorized, actorID, template.ID)
	}

	if !launch.AppliesTo(template, asset) {
		return domain.ActiveProject{}, nil, fmt.Errorf("%w: %q at %q", ErrTemplateNotApplicable, template.ID, asset.ID)
	}

	project, err := s.engine.Launch(launch.Request{
		Template:     &template,
		PrimaryAsset: &asset,
		Name:         in.Name,
		Answers:      in.Answers,
		LaunchedBy:   actorID,
	})
	if err != nil {
		return domain.ActiveProject{}, nil, invalid(err)
	}

	var t tx
	t.save(KindActiveProject, project.ID, project)

	if err = s.commit(ctx, &t); err != nil {
		return domain.ActiveProject{}, nil, err
	}

	metrics.ProjectsLaunched.WithLabelValues(template.ID).Inc()
	log.Info().
		Str("project", project.ID).
		Str("template", template.ID).
		Str("asset", asset.ID).
		Str("user", actorID).
		Int("tasks", len(project.Tasks)).
		Msg("project launched")

	return project, s.assigneeNotifications(project), nil
}

// assigneeNotifications addresses every directly assigned user of a new
// project once. Callers hold mu.
func (s *Service) assigneeNotifications(project domain.ActiveProject) []notify.Notification {
	var (
		seen []string
		out  []notify.Notification
	)

	for _, task := range project.Tasks {
		for _, userID := range task.Task.Assignment.UserIDs {
			if slices.Contains(seen, userID) {
				continue
			}

			seen = append(seen, userID)

			u, ok := s.users.get(userID)
			if !ok {
				continue
			}

			out = append(out, notify.Notification{
				Kind:    notify.KindProjectLaunched,
				UserID:  u.ID,
				Email:   u.Email,
				Subject: "New tasks in " + project.Name,
				Body:    fmt.Sprintf("You have been assigned tasks in %q.", project.Name),
				At:      project.LaunchedAt,
			})
		}
	}

	return out
}

// send delivers notifications outside the lock. Failures are logged and do
// not undo the operation that caused them.
func (s *Service) send(ctx context.Context, outbox []notify.Notification) {
	for _, n := range outbox {
		if err := s.notifier.Notify(ctx, n); err != nil {
			log.Error().Err(err).Str("kind", string(n.Kind)).Str("user", n.UserID).Msg("notification failed")
		}
	}
}

// ToggleTask flips a project task between Pending and Completed. The actor
// must be assigned to the task, have launched the project or be an
// administrator.
func (s *Service) ToggleTask(ctx context.Context, actorID, projectID, taskID string) (domain.ActiveTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.user(actorID)
	if err != nil {
		return domain.ActiveTask{}, err
	}

	project, ok := s.projects.get(projectID)
	if !ok {
		return domain.ActiveTask{}, fmt.Errorf("%w: %q", ErrProjectNotFound, projectID)
	}

	i := project.TaskIndex(taskID)
	if i < 0 {
		return domain.ActiveTask{}, fmt.Errorf("%w: %w", ErrNotFound, tracker.ErrTaskNotFound)
	}

	if !tracker.AssignedTo(project.Tasks[i].Task.Assignment, actor) && project.LaunchedBy != actorID && !auth.IsAdmin(actor) {
		metrics.PermissionDenials.WithLabelValues("toggle_task").Inc()
		log.Warn().Str("user", actorID).Str("project", projectID).Str("task", taskID).Msg("toggle refused")

		return domain.ActiveTask{}, fmt.Errorf("%w: %q is not assigned to task %q", ErrUnauthorized, actorID, taskID)
	}

	task, err := tracker.ToggleTask(&project, taskID, actor, s.now())
	if err != nil {
		return domain.ActiveTask{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var t tx
	t.save(KindActiveProject, project.ID, project)

	if err = s.commit(ctx, &t); err != nil {
		return domain.ActiveTask{}, err
	}

	metrics.TasksToggled.WithLabelValues(string(task.Status)).Inc()
	log.Info().Str("project", projectID).Str("task", taskID).Str("status", string(task.Status)).Str("user", actorID).Msg("task toggled")

	return task, nil
}

// CreateActionItem adds a standalone item owned by the actor.
func (s *Service) CreateActionItem(ctx context.Context, actorID, description string, due time.Time) (domain.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.user(actorID)
	if err != nil {
		return domain.ActionItem{}, err
	}

	item, err := tracker.NewActionItem(s.newID(), actor, description, due)
	if err != nil {
		return domain.ActionItem{}, invalid(err)
	}

	var t tx
	t.save(KindActionItem, item.ID, item)

	if err = s.commit(ctx, &t); err != nil {
		return domain.ActionItem{}, err
	}

	log.Info().Str("item", item.ID).Str("user", actorID).Msg("action item created")

	return item, nil
}

// SaveActionItem inserts or replaces an action item as is.
func (s *Service) SaveActionItem(ctx context.Context, item domain.ActionItem) (domain.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item = item.Clone()
	if item.ID == "" {
		item.ID = s.newID()
	}

	if item.Status == "" {
		item.Status = domain.StatusPending
	}

	if item.SourceType == "" {
		item.SourceType = domain.SourceStandalone
	}

	if err := s.validateStruct(item); err != nil {
		return domain.ActionItem{}, err
	}

	var t tx
	t.save(KindActionItem, item.ID, item)

	if err := s.commit(ctx, &t); err != nil {
		return domain.ActionItem{}, err
	}

	return item, nil
}

// ToggleActionItem flips an action item. Only its owner or an administrator
// may toggle an owned item; shared items are open to everyone.
func (s *Service) ToggleActionItem(ctx context.Context, actorID, itemID string) (domain.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.user(actorID)
	if err != nil {
		return domain.ActionItem{}, err
	}

	item, ok := s.items.get(itemID)
	if !ok {
		return domain.ActionItem{}, fmt.Errorf("%w: %q", ErrActionItemNotFound, itemID)
	}

	if item.OwnerID != "" && item.OwnerID != actorID && !auth.IsAdmin(actor) {
		metrics.PermissionDenials.WithLabelValues("toggle_action_item").Inc()

		return domain.ActionItem{}, fmt.Errorf("%w: action item %q belongs to another user", ErrUnauthorized, itemID)
	}

	tracker.ToggleActionItem(&item, s.now())

	var t tx
	t.save(KindActionItem, item.ID, item)

	if err = s.commit(ctx, &t); err != nil {
		return domain.ActionItem{}, err
	}

	metrics.TasksToggled.WithLabelValues(string(item.Status)).Inc()
	log.Info().Str("item", itemID).Str("status", string(item.Status)).Str("user", actorID).Msg("action item toggled")

	return item, nil
}

// Workspace returns the action center of the user.
func (s *Service) Workspace(userID string) ([]domain.DisplayTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	return tracker.Workspace(s.projects.list(), s.items.list(), s.assets.list(), u), nil
}
