package workforce

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/domain"
)

// Import stores a complete snapshot into an empty service in one
// transaction. Entities keep their ids; users must carry a password hash.
// Every entity passes the same checks as the single-entity operations.
func (s *Service) Import(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users.size() > 0 {
		return ErrNotEmpty
	}

	stage := New(Options{Now: s.now, NewID: s.newID})

	var t tx

	for _, c := range snap.AssetTypeConfigs {
		c = c.Clone()
		if c.PermissionMatrix == nil {
			c.PermissionMatrix = domain.PermissionMatrix{}
		}

		if err := requireID(KindAssetTypeConfig, c.ID); err != nil {
			return err
		}

		if err := stage.validateStruct(c); err != nil {
			return fmt.Errorf("asset type config %q: %w", c.ID, err)
		}

		stage.configs.put(c.ID, c)
		t.save(KindAssetTypeConfig, c.ID, c)
	}

	for _, a := range snap.Assets {
		a = a.Clone()
		if a.Status == "" {
			a.Status = domain.AssetActive
		}

		if err := requireID(KindAsset, a.ID); err != nil {
			return err
		}

		if err := stage.checkAsset(a); err != nil {
			return fmt.Errorf("asset %q: %w", a.ID, err)
		}

		stage.assets.put(a.ID, a)
		t.save(KindAsset, a.ID, a)
	}

	for _, u := range snap.Users {
		u = u.Clone()
		if err := requireID(KindUser, u.ID); err != nil {
			return err
		}

		if u.PasswordHash == "" {
			return fmt.Errorf("user %q: %w", u.ID, ErrPasswordRequired)
		}

		if err := stage.checkUser(&u); err != nil {
			return fmt.Errorf("user %q: %w", u.ID, err)
		}

		stage.users.put(u.ID, u)
		t.save(KindUser, u.ID, u)
	}

	for _, p := range snap.ProjectTemplates {
		p = p.Clone()
		if p.AssetAssignmentRule.Type == "" {
			p.AssetAssignmentRule.Type = domain.RulePrimaryOnly
		}

		if p.LastUpdated.IsZero() {
			p.LastUpdated = s.now()
		}

		if err := requireID(KindProjectTemplate, p.ID); err != nil {
			return err
		}

		if err := checkTemplate(p); err != nil {
			return fmt.Errorf("project template %q: %w", p.ID, err)
		}

		t.save(KindProjectTemplate, p.ID, p)
	}

	var items []entity
	items = appendEntities(items, KindRecurringTaskTemplate, snap.RecurringTaskTemplates, func(v domain.RecurringTaskTemplate) string { return v.ID })
	items = appendEntities(items, KindRecurringProjectTemplate, snap.RecurringProjectTemplates, func(v domain.RecurringProjectTemplate) string { return v.ID })
	items = appendEntities(items, KindActiveProject, snap.ActiveProjects, func(v domain.ActiveProject) string { return v.ID })
	items = appendEntities(items, KindActionItem, snap.ActionItems, func(v domain.ActionItem) string { return v.ID })
	items = appendEntities(items, KindCourse, snap.Courses, func(v domain.UniversityCourse) string { return v.ID })
	items = appendEntities(items, KindEnrollment, snap.Enrollments, func(v domain.UserEnrollment) string { return v.ID })
	items = appendEntities(items, KindCertification, snap.Certifications, func(v domain.UserCertification) string { return v.ID })
	items = appendEntities(items, KindLearningPath, snap.LearningPaths, func(v domain.LearningPath) string { return v.ID })

	for _, l := range snap.PlaybookLogs {
		l = l.Clone()
		if err := requireID(KindPlaybookLog, l.ID); err != nil {
			return err
		}

		if err := stage.checkPlaybookLog(&l); err != nil {
			return fmt.Errorf("playbook log %q: %w", l.ID, err)
		}

		t.save(KindPlaybookLog, l.ID, l)
	}

	for _, it := range items {
		if err := requireID(it.kind, it.id); err != nil {
			return err
		}

		if err := stage.validateStruct(it.v); err != nil {
			return fmt.Errorf("%s %q: %w", it.kind, it.id, err)
		}

		t.save(it.kind, it.id, it.v)
	}

	if err := s.commit(ctx, &t); err != nil {
		return err
	}

	log.Info().
		Int("users", len(snap.Users)).
		Int("assets", len(snap.Assets)).
		Int("templates", len(snap.ProjectTemplates)).
		Int("courses", len(snap.Courses)).
		Msg("workforce state imported")

	return nil
}

type entity struct {
	kind Kind
	id   string
	v    any
}

func appendEntities[T cloner[T]](out []entity, kind Kind, in []T, id func(T) string) []entity {
	for _, v := range in {
		out = append(out, entity{kind: kind, id: id(v), v: v.Clone()})
	}

	return out
}

func requireID(kind Kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s without id", ErrValidation, kind)
	}

	return nil
}
