package workforce

import (
	"context"

	"github.com/atlas-ops/atlas/internal/domain"
)

// Kind names a collection of the service.
type Kind string

// Collections.
const (
	KindAssetTypeConfig          Kind = "asset_type_config"
	KindAsset                    Kind = "asset"
	KindUser                     Kind = "user"
	KindProjectTemplate          Kind = "project_template"
	KindRecurringTaskTemplate    Kind = "recurring_task_template"
	KindRecurringProjectTemplate Kind = "recurring_project_template"
	KindActiveProject            Kind = "active_project"
	KindActionItem               Kind = "action_item"
	KindCourse                   Kind = "course"
	KindEnrollment               Kind = "enrollment"
	KindCertification            Kind = "certification"
	KindLearningPath             Kind = "learning_path"
	KindPlaybookLog              Kind = "playbook_log"
)

// Kinds lists every collection in load order.
func Kinds() []Kind {
	return []Kind{
		KindAssetTypeConfig,
		KindAsset,
		KindUser,
		KindProjectTemplate,
		KindRecurringTaskTemplate,
		KindRecurringProjectTemplate,
		KindActiveProject,
		KindActionItem,
		KindCourse,
		KindEnrollment,
		KindCertification,
		KindLearningPath,
		KindPlaybookLog,
	}
}

// Change is one whole-entity write of a transaction. Value is nil for deletes.
type Change struct {
	Kind    Kind
	ID      string
	Value   any
	Deleted bool
}

// Snapshot is the full state of the service.
type Snapshot struct {
	AssetTypeConfigs          []domain.AssetTypeConfig
	Assets                    []domain.Asset
	Users                     []domain.User
	ProjectTemplates          []domain.ProjectTemplate
	RecurringTaskTemplates    []domain.RecurringTaskTemplate
	RecurringProjectTemplates []domain.RecurringProjectTemplate
	ActiveProjects            []domain.ActiveProject
	ActionItems               []domain.ActionItem
	Courses                   []domain.UniversityCourse
	Enrollments               []domain.UserEnrollment
	Certifications            []domain.UserCertification
	LearningPaths             []domain.LearningPath
	PlaybookLogs              []domain.PlaybookLog
}

// Repository persists the service state. Save must apply all changes
// atomically or none of them.
type Repository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, changes []Change) error
}
