package hierarchy

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blobmemory "annotation-service/internal/blob/memory"
	"annotation-service/internal/domain/asset"
	"annotation-service/internal/domain/project"
	"annotation-service/internal/repository/memory"
	apperrors "annotation-service/pkg/errors"
)

type fixture struct {
	projects *memory.ProjectRepository
	assets   *memory.AssetRepository
	blobs    *blobmemory.Store
	tree     *Hierarchy
	logHook  *logtest.Hook
}

func newFixture() *fixture {
	log, hook := logtest.NewNullLogger()

	projects := memory.NewProjectRepository()
	assets := memory.NewAssetRepository(projects)
	blobs := blobmemory.NewStore()

	return &fixture{
		projects: projects,
		assets:   assets,
		blobs:    blobs,
		tree:     New(projects, assets, blobs, log),
		logHook:  hook,
	}
}

func (f *fixture) seedProject(t *testing.T) *project.Project {
	t.Helper()
	p := &project.Project{
		Name:         "birds",
		Visibility:   project.VisibilityPrivate,
		Owners:       []string{"owner@example.com"},
		LastModified: time.Now().UTC(),
	}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func (f *fixture) seedAsset(t *testing.T, p *project.Project, kind asset.Kind, parent *asset.Asset, name string) *asset.Asset {
	t.Helper()
	now := time.Now().UTC()

	key := name + "-blob"
	_, err := f.blobs.Put(context.Background(), key, strings.NewReader("content"), "image/png")
	require.NoError(t, err)

	a := &asset.Asset{
		ProjectID:     p.ID,
		Kind:          kind,
		Name:          name,
		BlobKey:       key,
		FileExtension: "png",
		LastModified:  now,
	}
	if parent != nil {
		a.ParentID = &parent.ID
	}
	require.NoError(t, f.assets.Put(context.Background(), a, now))
	return a
}

func TestResolveFindsAssetUnderParent(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)
	img := f.seedAsset(t, p, asset.KindImage, nil, "robin")

	got, err := f.tree.Resolve(context.Background(), asset.KindImage, p.ID, nil, "robin")
	require.NoError(t, err)
	assert.Equal(t, img.ID, got.ID)
}

func TestResolveNotFound(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)

	_, err := f.tree.Resolve(context.Background(), asset.KindImage, p.ID, nil, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveScopedToParent(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)
	imgA := f.seedAsset(t, p, asset.KindImage, nil, "a")
	imgB := f.seedAsset(t, p, asset.KindImage, nil, "b")
	f.seedAsset(t, p, asset.KindMask, imgA, "layer")

	// Same mask name under a different image does not resolve.
	_, err := f.tree.Resolve(context.Background(), asset.KindMask, p.ID, &imgB.ID, "layer")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := f.tree.Resolve(context.Background(), asset.KindMask, p.ID, &imgA.ID, "layer")
	require.NoError(t, err)
	assert.Equal(t, "layer", got.Name)
}

func TestResolveToleratesDuplicateNames(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)
	first := f.seedAsset(t, p, asset.KindImage, nil, "dup")
	second := f.seedAsset(t, p, asset.KindImage, nil, "dup")

	// An inconsistent store never fails a read; one of the duplicates is
	// returned and the inconsistency is logged.
	got, err := f.tree.Resolve(context.Background(), asset.KindImage, p.ID, nil, "dup")
	require.NoError(t, err)
	assert.Equal(t, "dup", got.Name)
	assert.Contains(t, []uuid.UUID{first.ID, second.ID}, got.ID)

	entry := f.logHook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "multiple assets share one name under a parent", entry.Message)
}

func TestEnsureUniqueNameFree(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)
	now := time.Now().UTC()

	name, err := f.tree.EnsureUniqueName(context.Background(), asset.KindImage, p.ID, nil, "fresh", now)
	require.NoError(t, err)
	assert.Equal(t, "fresh", name)
}

func TestEnsureUniqueNameConflictSuffixes(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)
	f.seedAsset(t, p, asset.KindImage, nil, "robin")
	now := time.Now().UTC()

	name, err := f.tree.EnsureUniqueName(context.Background(), asset.KindImage, p.ID, nil, "robin", now)
	require.NoError(t, err)
	assert.Equal(t, "robin-"+now.UTC().Format(time.RFC3339Nano), name)
}

func TestDeleteProjectTreeRemovesEverything(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)
	img := f.seedAsset(t, p, asset.KindImage, nil, "robin")
	f.seedAsset(t, p, asset.KindMask, img, "beak")

	require.NoError(t, f.tree.DeleteProjectTree(context.Background(), p))

	_, err := f.projects.GetByProjID(context.Background(), p.ProjID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	remaining, err := f.assets.ListByProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestDeleteImageTreeRemovesMasksOnly(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)
	img := f.seedAsset(t, p, asset.KindImage, nil, "robin")
	f.seedAsset(t, p, asset.KindMask, img, "beak")
	other := f.seedAsset(t, p, asset.KindImage, nil, "sparrow")

	require.NoError(t, f.tree.DeleteImageTree(context.Background(), img))

	remaining, err := f.assets.ListByProject(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)

	assert.False(t, f.blobs.Contains(img.BlobKey))
	assert.True(t, f.blobs.Contains(other.BlobKey))
}

func TestDeleteMaskLeavesParentImage(t *testing.T) {
	f := newFixture()
	p := f.seedProject(t)
	img := f.seedAsset(t, p, asset.KindImage, nil, "robin")
	mask := f.seedAsset(t, p, asset.KindMask, img, "beak")

	require.NoError(t, f.tree.DeleteMask(context.Background(), mask))

	_, err := f.tree.Resolve(context.Background(), asset.KindImage, p.ID, nil, "robin")
	assert.NoError(t, err)
	assert.False(t, f.blobs.Contains(mask.BlobKey))
	assert.True(t, f.blobs.Contains(img.BlobKey))
}
