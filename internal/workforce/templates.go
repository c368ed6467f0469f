package workforce

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/duedate"
)

// ProjectTemplate returns the template with the given id.
func (s *Service) ProjectTemplate(id string) (domain.ProjectTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates.get(id)
	if !ok {
		return domain.ProjectTemplate{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	return t, nil
}

// ProjectTemplates lists every project template.
func (s *Service) ProjectTemplates() []domain.ProjectTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.templates.list()
}

// RecurringTaskTemplates lists every recurring task rule.
func (s *Service) RecurringTaskTemplates() []domain.RecurringTaskTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recurringTasks.list()
}

// RecurringProjectTemplates lists every recurring project rule.
func (s *Service) RecurringProjectTemplates() []domain.RecurringProjectTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recurringProjects.list()
}

// SaveProjectTemplate inserts or replaces a project template and stamps
// LastUpdated.
func (s *Service) SaveProjectTemplate(ctx context.Context, t domain.ProjectTemplate) (domain.ProjectTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	if t.ID == "" {
		t.ID = s.newID()
	}

	return s.putTemplate(ctx, t, "project template saved")
}

// DeleteProjectTemplate removes a template. Templates used as the base of a
// recurring project rule cannot be deleted.
func (s *Service) DeleteProjectTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.templates.has(id) {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	var series string

	s.recurringProjects.each(func(r domain.RecurringProjectTemplate) bool {
		if r.BaseProjectTemplateID == id {
			series = r.SeriesName
			return false
		}

		return true
	})

	if series != "" {
		return fmt.Errorf("%w: template %q is the base of recurring project %q", ErrConflict, id, series)
	}

	var t tx
	t.delete(KindProjectTemplate, id)

	if err := s.commit(ctx, &t); err != nil {
		return err
	}

	log.Info().Str("template", id).Msg("project template deleted")

	return nil
}

// DuplicateProjectTemplate stores a deep copy of a template under a fresh id
// and the name "<name> (Copy)".
func (s *Service) DuplicateProjectTemplate(ctx context.Context, id string) (domain.ProjectTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates.get(id)
	if !ok {
		return domain.ProjectTemplate{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	t.ID = s.newID()
	t.Name += " (Copy)"

	return s.putTemplate(ctx, t, "project template duplicated")
}

// ReorderTemplateTasks puts the tasks of a template in the given order and
// renumbers their display order from 1. taskIDs must list every task once.
func (s *Service) ReorderTemplateTasks(ctx context.Context, id string, taskIDs []string) (domain.ProjectTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates.get(id)
	if !ok {
		return domain.ProjectTemplate{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	if len(taskIDs) != len(t.Tasks) {
		return domain.ProjectTemplate{}, fmt.Errorf("%w: expected %d task ids, got %d", ErrValidation, len(t.Tasks), len(taskIDs))
	}

	tasks := make([]domain.TemplateTask, 0, len(t.Tasks))

	for i, taskID := range taskIDs {
		j := slices.IndexFunc(t.Tasks, func(task domain.TemplateTask) bool { return task.ID == taskID })
		if j < 0 || slices.Contains(taskIDs[:i], taskID) {
			return domain.ProjectTemplate{}, fmt.Errorf("%w: task id %q", ErrValidation, taskID)
		}

		task := t.Tasks[j]
		task.DisplayOrder = i + 1
		tasks = append(tasks, task)
	}

	t.Tasks = tasks

	return s.putTemplate(ctx, t, "project template tasks reordered")
}

// putTemplate validates, stamps and stores t. Callers hold mu.
func (s *Service) putTemplate(ctx context.Context, t domain.ProjectTemplate, msg string) (domain.ProjectTemplate, error) {
	if t.AssetAssignmentRule.Type == "" {
		t.AssetAssignmentRule.Type = domain.RulePrimaryOnly
	}

	if err := checkTemplate(t); err != nil {
		return domain.ProjectTemplate{}, err
	}

	t.LastUpdated = s.now()

	var changes tx
	changes.save(KindProjectTemplate, t.ID, t)

	if err := s.commit(ctx, &changes); err != nil {
		return domain.ProjectTemplate{}, err
	}

	log.Info().Str("template", t.ID).Str("name", t.Name).Int("tasks", len(t.Tasks)).Msg(msg)

	return t, nil
}

func checkTemplate(t domain.ProjectTemplate) error {
	if err := validate.Struct(t); err != nil {
		return invalid(err)
	}

	switch t.AssetAssignmentRule.Type {
	case domain.RulePrimaryOnly, domain.RulePrimaryDistrict, domain.RuleManualList:
	default:
		return fmt.Errorf("%w: unknown asset assignment rule %q", ErrValidation, t.AssetAssignmentRule.Type)
	}

	placeholders := make([]string, 0, len(t.DefinedPlaceholders))
	for _, p := range t.DefinedPlaceholders {
		if slices.Contains(placeholders, p.ID) {
			return fmt.Errorf("%w: duplicate placeholder %q", ErrValidation, p.ID)
		}

		placeholders = append(placeholders, p.ID)
	}

	taskIDs := make([]string, 0, len(t.Tasks))

	for _, task := range t.Tasks {
		if slices.Contains(taskIDs, task.ID) {
			return fmt.Errorf("%w: duplicate task %q", ErrValidation, task.ID)
		}

		taskIDs = append(taskIDs, task.ID)

		if task.Details == nil {
			return fmt.Errorf("%w: task %q: %w", ErrValidation, task.ID, domain.ErrTaskDetailsMissing)
		}

		if _, err := duedate.Resolve(time.Time{}, task.DueDate); err != nil {
			return fmt.Errorf("%w: task %q: %w", ErrValidation, task.ID, err)
		}

		for _, id := range task.Assignment.PlaceholderIDs {
			if !slices.Contains(placeholders, id) {
				return fmt.Errorf("%w: %q in task %q", ErrUnknownPlaceholder, id, task.ID)
			}
		}
	}

	return nil
}

// SaveRecurringTaskTemplate inserts or replaces a recurring task rule.
func (s *Service) SaveRecurringTaskTemplate(ctx context.Context, r domain.RecurringTaskTemplate) (domain.RecurringTaskTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = r.Clone()
	if r.ID == "" {
		r.ID = s.newID()
	}

	if r.Status == "" {
		r.Status = domain.TemplateActive
	}

	if err := s.validateStruct(r); err != nil {
		return domain.RecurringTaskTemplate{}, err
	}

	if err := checkTemplateStatus(r.Status); err != nil {
		return domain.RecurringTaskTemplate{}, err
	}

	if !s.assets.has(r.AppliesToAssetID) {
		return domain.RecurringTaskTemplate{}, fmt.Errorf("%w: unknown asset %q", ErrValidation, r.AppliesToAssetID)
	}

	var t tx
	t.save(KindRecurringTaskTemplate, r.ID, r)

	if err := s.commit(ctx, &t); err != nil {
		return domain.RecurringTaskTemplate{}, err
	}

	log.Info().Str("template", r.ID).Str("title", r.Title).Msg("recurring task template saved")

	return r, nil
}

// DeleteRecurringTaskTemplate removes a recurring task rule.
func (s *Service) DeleteRecurringTaskTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recurringTasks.has(id) {
		return fmt.Errorf("%w: %q", ErrRecurringTemplateNotFound, id)
	}

	var t tx
	t.delete(KindRecurringTaskTemplate, id)

	return s.commit(ctx, &t)
}

// SaveRecurringProjectTemplate inserts or replaces a recurring project rule.
func (s *Service) SaveRecurringProjectTemplate(ctx context.Context, r domain.RecurringProjectTemplate) (domain.RecurringProjectTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = r.Clone()
	if r.ID == "" {
		r.ID = s.newID()
	}

	if r.Status == "" {
		r.Status = domain.TemplateActive
	}

	if err := s.validateStruct(r); err != nil {
		return domain.RecurringProjectTemplate{}, err
	}

	if err := checkTemplateStatus(r.Status); err != nil {
		return domain.RecurringProjectTemplate{}, err
	}

	if !s.templates.has(r.BaseProjectTemplateID) {
		return domain.RecurringProjectTemplate{}, fmt.Errorf("%w: unknown base template %q", ErrValidation, r.BaseProjectTemplateID)
	}

	var t tx
	t.save(KindRecurringProjectTemplate, r.ID, r)

	if err := s.commit(ctx, &t); err != nil {
		return domain.RecurringProjectTemplate{}, err
	}

	log.Info().Str("template", r.ID).Str("series", r.SeriesName).Msg("recurring project template saved")

	return r, nil
}

// DeleteRecurringProjectTemplate removes a recurring project rule.
func (s *Service) DeleteRecurringProjectTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recurringProjects.has(id) {
		return fmt.Errorf("%w: %q", ErrRecurringTemplateNotFound, id)
	}

	var t tx
	t.delete(KindRecurringProjectTemplate, id)

	return s.commit(ctx, &t)
}

func checkTemplateStatus(status domain.TemplateStatus) error {
	switch status {
	case domain.TemplateActive, domain.TemplatePaused:
		return nil
	default:
		return fmt.Errorf("%w: unknown template status %q", ErrValidation, status)
	}
}
