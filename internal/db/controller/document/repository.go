package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/atlas-ops/atlas/internal/workforce"
)

// Repository stores the workforce service state in the documents table.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a Repository on db.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Repository{db: db}, nil
}

// Save writes all changes in one database transaction.
func (r *Repository) Save(ctx context.Context, changes []workforce.Change) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			if c.Deleted {
				err := Delete(tx, string(c.Kind), c.ID)
				if err != nil && !errors.Is(err, ErrDocumentNotFound) {
					return fmt.Errorf("delete %s %s: %w", c.Kind, c.ID, err)
				}
				continue
			}

			payload, err := json.Marshal(c.Value)
			if err != nil {
				return fmt.Errorf("encode %s %s: %w", c.Kind, c.ID, err)
			}

			if _, err := Put(tx, string(c.Kind), c.ID, payload); err != nil {
				return fmt.Errorf("put %s %s: %w", c.Kind, c.ID, err)
			}
		}

		return nil
	})
}

// Load reads every collection.
func (r *Repository) Load(ctx context.Context) (workforce.Snapshot, error) {
	db := r.db.WithContext(ctx)

	var (
		s   workforce.Snapshot
		err error
	)

	load := func(kind workforce.Kind, fn func() error) {
		if err != nil {
			return
		}
		if e := fn(); e != nil {
			err = fmt.Errorf("load %s: %w", kind, e)
		}
	}

	load(workforce.KindAssetTypeConfig, func() error { return decodeAll(db, workforce.KindAssetTypeConfig, &s.AssetTypeConfigs) })
	load(workforce.KindAsset, func() error { return decodeAll(db, workforce.KindAsset, &s.Assets) })
	load(workforce.KindUser, func() error { return decodeAll(db, workforce.KindUser, &s.Users) })
	load(workforce.KindProjectTemplate, func() error { return decodeAll(db, workforce.KindProjectTemplate, &s.ProjectTemplates) })
	load(workforce.KindRecurringTaskTemplate, func() error {
		return decodeAll(db, workforce.KindRecurringTaskTemplate, &s.RecurringTaskTemplates)
	})
	load(workforce.KindRecurringProjectTemplate, func() error {
		return decodeAll(db, workforce.KindRecurringProjectTemplate, &s.RecurringProjectTemplates)
	})
	load(workforce.KindActiveProject, func() error { return decodeAll(db, workforce.KindActiveProject, &s.ActiveProjects) })
	load(workforce.KindActionItem, func() error { return decodeAll(db, workforce.KindActionItem, &s.ActionItems) })
	load(workforce.KindCourse, func() error { return decodeAll(db, workforce.KindCourse, &s.Courses) })
	load(workforce.KindEnrollment, func() error { return decodeAll(db, workforce.KindEnrollment, &s.Enrollments) })
	load(workforce.KindCertification, func() error { return decodeAll(db, workforce.KindCertification, &s.Certifications) })
	load(workforce.KindLearningPath, func() error { return decodeAll(db, workforce.KindLearningPath, &s.LearningPaths) })
	load(workforce.KindPlaybookLog, func() error { return decodeAll(db, workforce.KindPlaybookLog, &s.PlaybookLogs) })

	return s, err
}

func decodeAll[T any](db *gorm.DB, kind workforce.Kind, out *[]T) error {
	docs, err := List(db, string(kind))
	if err != nil {
		return err
	}

	items := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Payload, &v); err != nil {
			return fmt.Errorf("decode %s: %w", d.ID, err)
		}
		items = append(items, v)
	}

	*out = items

	return nil
}
