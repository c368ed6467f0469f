// Package workforce is the application service of Atlas.
//
// Service owns every entity collection and exposes the console operations as
// methods. Each mutating method is one atomic transaction: it computes the
// new entities on copies, hands them to the Repository and only then swaps
// them into memory. A failed write leaves the service unchanged.
package workforce

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/launch"
	"github.com/atlas-ops/atlas/internal/notify"
	"github.com/atlas-ops/atlas/internal/university"
)

var validate = validator.New() //nolint:gochecknoglobals

// Options configure a Service. Zero values select the defaults.
type Options struct {
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// NewID generates entity ids. Defaults to uuid.NewString.
	NewID func() string
	// Repository persists every transaction. Nil keeps state in memory only.
	Repository Repository
	// Notifier delivers user notifications. Defaults to notify.LogNotifier.
	Notifier notify.Notifier
	// AssigneePolicy matches users to tasks on course completion.
	// Defaults to university.PositionMatch.
	AssigneePolicy university.AssigneePolicy
}

// Service is the workforce operations console core.
type Service struct {
	mu sync.RWMutex

	now      func() time.Time
	newID    func() string
	repo     Repository
	notifier notify.Notifier
	policy   university.AssigneePolicy
	engine   *launch.Engine

	configs           *collection[domain.AssetTypeConfig]
	assets            *collection[domain.Asset]
	users             *collection[domain.User]
	templates         *collection[domain.ProjectTemplate]
	recurringTasks    *collection[domain.RecurringTaskTemplate]
	recurringProjects *collection[domain.RecurringProjectTemplate]
	projects          *collection[domain.ActiveProject]
	items             *collection[domain.ActionItem]
	courses           *collection[domain.UniversityCourse]
	enrollments       *collection[domain.UserEnrollment]
	certifications    *collection[domain.UserCertification]
	paths             *collection[domain.LearningPath]
	playbooks         *collection[domain.PlaybookLog]
}

// New returns an empty service.
func New(opts Options) *Service {
	s := &Service{
		now:      opts.Now,
		newID:    opts.NewID,
		repo:     opts.Repository,
		notifier: opts.Notifier,
		policy:   opts.AssigneePolicy,

		configs:           newCollection[domain.AssetTypeConfig](),
		assets:            newCollection[domain.Asset](),
		users:             newCollection[domain.User](),
		templates:         newCollection[domain.ProjectTemplate](),
		recurringTasks:    newCollection[domain.RecurringTaskTemplate](),
		recurringProjects: newCollection[domain.RecurringProjectTemplate](),
		projects:          newCollection[domain.ActiveProject](),
		items:             newCollection[domain.ActionItem](),
		courses:           newCollection[domain.UniversityCourse](),
		enrollments:       newCollection[domain.UserEnrollment](),
		certifications:    newCollection[domain.UserCertification](),
		paths:             newCollection[domain.LearningPath](),
		playbooks:         newCollection[domain.PlaybookLog](),
	}

	if s.now == nil {
		s.now = time.Now
	}

	if s.newID == nil {
		s.newID = uuid.NewString
	}

	if s.notifier == nil {
		s.notifier = notify.LogNotifier{}
	}

	if s.policy == nil {
		s.policy = university.PositionMatch
	}

	s.engine = &launch.Engine{Now: s.now, NewID: s.newID}

	return s
}

// Load replaces the in-memory state with the repository contents.
func (s *Service) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs.reset(snap.AssetTypeConfigs, func(v domain.AssetTypeConfig) string { return v.ID })
	s.assets.reset(snap.Assets, func(v domain.Asset) string { return v.ID })
	s.users.reset(snap.Users, func(v domain.User) string { return v.ID })
	s.templates.reset(snap.ProjectTemplates, func(v domain.ProjectTemplate) string { return v.ID })
	s.recurringTasks.reset(snap.RecurringTaskTemplates, func(v domain.RecurringTaskTemplate) string { return v.ID })
	s.recurringProjects.reset(snap.RecurringProjectTemplates, func(v domain.RecurringProjectTemplate) string { return v.ID })
	s.projects.reset(snap.ActiveProjects, func(v domain.ActiveProject) string { return v.ID })
	s.items.reset(snap.ActionItems, func(v domain.ActionItem) string { return v.ID })
	s.courses.reset(snap.Courses, func(v domain.UniversityCourse) string { return v.ID })
	s.enrollments.reset(snap.Enrollments, func(v domain.UserEnrollment) string { return v.ID })
	s.certifications.reset(snap.Certifications, func(v domain.UserCertification) string { return v.ID })
	s.paths.reset(snap.LearningPaths, func(v domain.LearningPath) string { return v.ID })
	s.playbooks.reset(snap.PlaybookLogs, func(v domain.PlaybookLog) string { return v.ID })

	log.Info().
		Int("users", s.users.size()).
		Int("assets", s.assets.size()).
		Int("projects", s.projects.size()).
		Msg("workforce state loaded")

	return nil
}

// Empty reports whether the service holds no users yet.
func (s *Service) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.users.size() == 0
}

// tx collects the writes of one operation.
type tx struct {
	changes []Change
}

func (t *tx) save(kind Kind, id string, v any) {
	t.changes = append(t.changes, Change{Kind: kind, ID: id, Value: v})
}

func (t *tx) delete(kind Kind, id string) {
	t.changes = append(t.changes, Change{Kind: kind, ID: id, Deleted: true})
}

// commit persists the transaction and applies it to memory. Callers hold mu.
func (s *Service) commit(ctx context.Context, t *tx) error {
	if len(t.changes) == 0 {
		return nil
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, t.changes); err != nil {
			return fmt.Errorf("persist changes: %w", err)
		}
	}

	for _, c := range t.changes {
		s.apply(c)
	}

	return nil
}

func (s *Service) apply(c Change) {
	if c.Deleted {
		s.remove(c.Kind, c.ID)
		return
	}

	switch v := c.Value.(type) {
	case domain.AssetTypeConfig:
		s.configs.put(c.ID, v)
	case domain.Asset:
		s.assets.put(c.ID, v)
	case domain.User:
		s.users.put(c.ID, v)
	case domain.ProjectTemplate:
		s.templates.put(c.ID, v)
	case domain.RecurringTaskTemplate:
		s.recurringTasks.put(c.ID, v)
	case domain.RecurringProjectTemplate:
		s.recurringProjects.put(c.ID, v)
	case domain.ActiveProject:
		s.projects.put(c.ID, v)
	case domain.ActionItem:
		s.items.put(c.ID, v)
	case domain.UniversityCourse:
		s.courses.put(c.ID, v)
	case domain.UserEnrollment:
		s.enrollments.put(c.ID, v)
	case domain.UserCertification:
		s.certifications.put(c.ID, v)
	case domain.LearningPath:
		s.paths.put(c.ID, v)
	case domain.PlaybookLog:
		s.playbooks.put(c.ID, v)
	default:
		log.Error().Str("kind", string(c.Kind)).Type("value", v).Msg("unknown change value")
	}
}

func (s *Service) remove(kind Kind, id string) {
	switch kind {
	case KindAssetTypeConfig:
		s.configs.remove(id)
	case KindAsset:
		s.assets.remove(id)
	case KindUser:
		s.users.remove(id)
	case KindProjectTemplate:
		s.templates.remove(id)
	case KindRecurringTaskTemplate:
		s.recurringTasks.remove(id)
	case KindRecurringProjectTemplate:
		s.recurringProjects.remove(id)
	case KindActiveProject:
		s.projects.remove(id)
	case KindActionItem:
		s.items.remove(id)
	case KindCourse:
		s.courses.remove(id)
	case KindEnrollment:
		s.enrollments.remove(id)
	case KindCertification:
		s.certifications.remove(id)
	case KindLearningPath:
		s.paths.remove(id)
	case KindPlaybookLog:
		s.playbooks.remove(id)
	}
}

// directory exposes the asset lookups of the permission model. Callers hold mu.
type directory struct {
	s *Service
}

func (d directory) Asset(id string) (domain.Asset, bool) {
	return d.s.assets.get(id)
}

func (d directory) AssetTypeConfig(id string) (domain.AssetTypeConfig, bool) {
	return d.s.configs.get(id)
}

func (s *Service) dir() directory {
	return directory{s: s}
}

func (s *Service) user(id string) (domain.User, error) {
	u, ok := s.users.get(id)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %q", ErrUserNotFound, id)
	}

	return u, nil
}

func (s *Service) validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return invalid(err)
	}

	return nil
}
