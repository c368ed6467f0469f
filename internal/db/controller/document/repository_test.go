package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/workforce"
)

func TestNewRepository(t *testing.T) {
	_, err := NewRepository(nil)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestRepository_SaveLoad(t *testing.T) {
	db := setupTestDB(t)
	repo, err := NewRepository(db)
	require.NoError(t, err)

	ctx := context.Background()
	launched := time.Date(2024, time.July, 29, 9, 0, 0, 0, time.UTC)

	template := domain.ProjectTemplate{
		ID:   "template-1",
		Name: "Onboarding",
		Tasks: []domain.TemplateTask{
			{ID: "t1-1", Title: "Paperwork", Details: domain.StandardTask{Description: "Sign forms"}},
			{ID: "t1-2", Title: "Training", Details: domain.LearningModuleTask{LMSCourseIDs: []string{"course-1"}, Requirement: "Required"}},
		},
	}

	project := domain.ActiveProject{
		ID:             "project-1",
		Name:           "Onboarding: Maria",
		TemplateID:     "template-1",
		PrimaryAssetID: "asset-1",
		Status:         domain.ProjectOnTrack,
		LaunchedAt:     launched,
		LaunchedBy:     "user-1",
		Tasks: []domain.ActiveTask{
			{Task: template.Tasks[1], SourceType: domain.SourceProject, Status: domain.StatusPending, AbsoluteDueDate: launched.AddDate(0, 0, 7)},
		},
	}

	err = repo.Save(ctx, []workforce.Change{
		{Kind: workforce.KindAsset, ID: "asset-1", Value: domain.Asset{ID: "asset-1", Name: "Lumina Cafe", AssetTypeID: "type-1"}},
		{Kind: workforce.KindAsset, ID: "asset-2", Value: domain.Asset{ID: "asset-2", Name: "Grand Hotel", AssetTypeID: "type-2"}},
		{Kind: workforce.KindProjectTemplate, ID: template.ID, Value: template},
		{Kind: workforce.KindActiveProject, ID: project.ID, Value: project},
	})
	require.NoError(t, err)

	err = repo.Save(ctx, []workforce.Change{
		{Kind: workforce.KindAsset, ID: "asset-2", Deleted: true},
		{Kind: workforce.KindAsset, ID: "asset-missing", Deleted: true},
	})
	require.NoError(t, err, "deleting a missing document is not an error")

	snap, err := repo.Load(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Assets, 1)
	assert.Equal(t, "Lumina Cafe", snap.Assets[0].Name)

	require.Len(t, snap.ProjectTemplates, 1)
	gotTemplate := snap.ProjectTemplates[0]
	assert.Equal(t, "Onboarding", gotTemplate.Name)
	require.Len(t, gotTemplate.Tasks, 2)
	assert.Equal(t, domain.StandardTask{Description: "Sign forms"}, gotTemplate.Tasks[0].Details)
	assert.IsType(t, domain.LearningModuleTask{}, gotTemplate.Tasks[1].Details)

	require.Len(t, snap.ActiveProjects, 1)
	got := snap.ActiveProjects[0]
	assert.True(t, launched.Equal(got.LaunchedAt))
	assert.Equal(t, domain.LearningModuleTask{LMSCourseIDs: []string{"course-1"}, Requirement: "Required"}, got.Tasks[0].Task.Details)

	assert.Empty(t, snap.Users)
	assert.Empty(t, snap.Courses)
}

func TestRepository_SaveIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	repo, err := NewRepository(db)
	require.NoError(t, err)

	ctx := context.Background()

	err = repo.Save(ctx, []workforce.Change{
		{Kind: workforce.KindAsset, ID: "asset-1", Value: domain.Asset{ID: "asset-1", Name: "Lumina Cafe"}},
		{Kind: workforce.KindAsset, ID: "asset-bad", Value: make(chan int)},
	})
	require.Error(t, err)

	n, err := Count(db, string(workforce.KindAsset))
	require.NoError(t, err)
	assert.Zero(t, n, "the first write is rolled back")
}

func TestRepository_ServiceRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo, err := NewRepository(db)
	require.NoError(t, err)

	ctx := context.Background()
	svc := workforce.New(workforce.Options{Repository: repo})

	_, err = svc.SaveAssetTypeConfig(ctx, domain.AssetTypeConfig{
		ID:        "type-restaurant",
		Name:      "Restaurant",
		Positions: []domain.Position{{ID: "pos-res-sm", Title: "Store Manager"}},
	})
	require.NoError(t, err)

	asset, err := svc.CreateAsset(ctx, domain.Asset{Name: "Lumina Cafe #0142", AssetTypeID: "type-restaurant"})
	require.NoError(t, err)

	user, err := svc.SaveUser(ctx, workforce.SystemActor, domain.User{
		FirstName: "Alex", LastName: "Chen", Username: "alex", Email: "alex@atlas.test", IsActive: true,
		Assignments: []domain.Assignment{{AssetID: asset.ID, PositionID: "pos-res-sm"}},
	}, "alex-password")
	require.NoError(t, err)

	reloaded := workforce.New(workforce.Options{Repository: repo})
	require.True(t, reloaded.Empty())
	require.NoError(t, reloaded.Load(ctx))
	require.False(t, reloaded.Empty())

	gotAsset, err := reloaded.Asset(asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.Name, gotAsset.Name)

	_, err = reloaded.Authenticate("alex", "alex-password")
	require.NoError(t, err, "password hashes survive the round trip")

	gotUser, err := reloaded.User(user.ID)
	require.NoError(t, err)
	require.Len(t, gotUser.Assignments, 1)
	assert.Equal(t, asset.ID, gotUser.Assignments[0].AssetID)
}
