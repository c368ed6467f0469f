// Package seed loads the demo fixtures of etc/seed.yaml into an empty
// workforce service.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/workforce"
)

// User is a fixture user with a plaintext password.
type User struct {
	domain.User
	Password string `json:"password"`
}

// Fixtures is the content of a seed file. Keys follow the JSON names of the
// domain types.
type Fixtures struct {
	AssetTypeConfigs          []domain.AssetTypeConfig          `json:"assetTypeConfigs"`
	Assets                    []domain.Asset                    `json:"assets"`
	Users                     []User                            `json:"users"`
	ProjectTemplates          []domain.ProjectTemplate          `json:"projectTemplates"`
	RecurringTaskTemplates    []domain.RecurringTaskTemplate    `json:"recurringTaskTemplates"`
	RecurringProjectTemplates []domain.RecurringProjectTemplate `json:"recurringProjectTemplates"`
	ActiveProjects            []domain.ActiveProject            `json:"activeProjects"`
	ActionItems               []domain.ActionItem               `json:"actionItems"`
	Courses                   []domain.UniversityCourse         `json:"courses"`
	Enrollments               []domain.UserEnrollment           `json:"enrollments"`
	Certifications            []domain.UserCertification        `json:"certifications"`
	LearningPaths             []domain.LearningPath             `json:"learningPaths"`
	PlaybookLogs              []domain.PlaybookLog              `json:"playbookLogs"`
}

// Parse decodes a YAML seed document. The document is converted to JSON
// first so the domain types decode with their JSON rules, task details
// included.
func Parse(data []byte) (Fixtures, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Fixtures{}, errors.Wrap(err, "failed to parse seed yaml")
	}

	js, err := json.Marshal(doc)
	if err != nil {
		return Fixtures{}, errors.Wrap(err, "failed to convert seed yaml")
	}

	var f Fixtures
	if err := json.Unmarshal(js, &f); err != nil {
		return Fixtures{}, errors.Wrap(err, "failed to decode seed")
	}

	return f, nil
}

// Load reads and parses a seed file.
func Load(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, errors.Wrap(err, "failed to read seed file")
	}

	return Parse(data)
}

// Snapshot hashes the fixture passwords and returns the service state.
func (f Fixtures) Snapshot() (workforce.Snapshot, error) {
	users := make([]domain.User, 0, len(f.Users))

	for _, u := range f.Users {
		if u.Password == "" {
			return workforce.Snapshot{}, fmt.Errorf("user %q: %w", u.ID, workforce.ErrPasswordRequired)
		}

		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return workforce.Snapshot{}, errors.Wrapf(err, "hash password of %q", u.ID)
		}

		user := u.User
		user.PasswordHash = hash
		users = append(users, user)
	}

	return workforce.Snapshot{
		AssetTypeConfigs:          f.AssetTypeConfigs,
		Assets:                    f.Assets,
		Users:                     users,
		ProjectTemplates:          f.ProjectTemplates,
		RecurringTaskTemplates:    f.RecurringTaskTemplates,
		RecurringProjectTemplates: f.RecurringProjectTemplates,
		ActiveProjects:            f.ActiveProjects,
		ActionItems:               f.ActionItems,
		Courses:                   f.Courses,
		Enrollments:               f.Enrollments,
		Certifications:            f.Certifications,
		LearningPaths:             f.LearningPaths,
		PlaybookLogs:              f.PlaybookLogs,
	}, nil
}

// Apply imports the fixtures when the service holds no users yet. It
// reports whether anything was imported.
func Apply(ctx context.Context, svc *workforce.Service, f Fixtures) (bool, error) {
	if !svc.Empty() {
		log.Debug().Msg("state not empty, skipping seed")
		return false, nil
	}

	snap, err := f.Snapshot()
	if err != nil {
		return false, err
	}

	if err := svc.Import(ctx, snap); err != nil {
		return false, errors.Wrap(err, "failed to import seed")
	}

	return true, nil
}
