package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotation-service/internal/domain/asset"
	"annotation-service/internal/domain/project"
	apperrors "annotation-service/pkg/errors"
)

func newUpload(filename, contentType, content string) *Upload {
	return &Upload{
		Filename:    filename,
		ContentType: contentType,
		Content:     strings.NewReader(content),
	}
}

func (e *env) seedProject(t *testing.T, visibility string) *project.Project {
	t.Helper()
	p, err := e.proj.Create(context.Background(), callerEmail, project.CreateInput{
		Name:       "birds",
		Visibility: visibility,
		Editors:    []string{editorUser},
	})
	require.NoError(t, err)
	return p
}

func TestAssetCreateImage(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	a, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Tags:   "Bird, small, BIRD",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	assert.Equal(t, "robin", a.Name)
	assert.Equal(t, "png", a.FileExtension)
	assert.Equal(t, []string{"bird", "small"}, a.Tags)
	assert.Nil(t, a.ParentID)
	assert.True(t, e.blobs.Contains(a.BlobKey))
}

func TestAssetCreateImageRequiresOwner(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), editorUser, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAssetCreateMaskAllowsEditor(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	img, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	mask, err := e.asset.Create(context.Background(), editorUser, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Upload:      newUpload("beak.png", "image/png", "layer"),
	})
	require.NoError(t, err)

	require.NotNil(t, mask.ParentID)
	assert.Equal(t, img.ID, *mask.ParentID)
}

func TestAssetCreateMaskRequiresParentImage(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "missing",
		Name:        "beak",
		Upload:      newUpload("beak.png", "image/png", "layer"),
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAssetCreateMaskMustBePNG(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.jpg", "image/jpeg", "pixels"),
	})
	require.NoError(t, err)

	_, err = e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Upload:      newUpload("beak.jpg", "image/jpeg", "layer"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestAssetCreateRejectsUnsupportedType(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.exe", "application/octet-stream", "bits"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	assert.Equal(t, 0, e.blobs.Len())
}

func TestAssetCreateMissingUpload(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestAssetCreateEmptyUploadCleansBlob(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", ""),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	assert.Equal(t, 0, e.blobs.Len())
}

func TestAssetCreateNameCollisionSuffixes(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	first, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	second, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	assert.Equal(t, "robin", first.Name)
	assert.True(t, strings.HasPrefix(second.Name, "robin-"))
	assert.NotEqual(t, first.Name, second.Name)
}

func TestAssetCreateDefaultsName(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	a, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Upload: newUpload("photo.png", "image/png", "pixels"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.Name, "Untitled-"))
}

func TestAssetCreateRefreshesProjectTimestamp(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")
	before := p.LastModified

	time.Sleep(time.Millisecond)
	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	got, err := e.proj.Get(context.Background(), callerEmail, p.ProjID)
	require.NoError(t, err)
	assert.True(t, got.LastModified.After(before))
}

func TestAssetUpdateImageUploadDiscarded(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	img, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "original"),
	})
	require.NoError(t, err)

	got, err := e.asset.Update(context.Background(), callerEmail, UpdateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin2.png", "image/png", "replacement"),
	})
	require.NoError(t, err)

	assert.Equal(t, img.BlobKey, got.BlobKey)
	assert.Equal(t, 1, e.blobs.Len())
}

func TestAssetUpdateMaskReplacesBlob(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	mask, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Upload:      newUpload("beak.png", "image/png", "v1"),
	})
	require.NoError(t, err)

	got, err := e.asset.Update(context.Background(), editorUser, UpdateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Upload:      newUpload("beak.png", "image/png", "v2"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, mask.BlobKey, got.BlobKey)
	assert.False(t, e.blobs.Contains(mask.BlobKey))
	assert.True(t, e.blobs.Contains(got.BlobKey))
}

func TestAssetUpdateMaskEmptyUploadRejected(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	mask, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Upload:      newUpload("beak.png", "image/png", "v1"),
	})
	require.NoError(t, err)

	_, err = e.asset.Update(context.Background(), editorUser, UpdateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Upload:      newUpload("beak.png", "image/png", ""),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	// The stored mask and its blob survive the rejected replacement.
	assert.True(t, e.blobs.Contains(mask.BlobKey))
	assert.Equal(t, 2, e.blobs.Len())
}

func TestAssetUpdateRename(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)
	_, err = e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "sparrow",
		Upload: newUpload("sparrow.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	// Plain rename.
	got, err := e.asset.Update(context.Background(), callerEmail, UpdateAssetInput{
		ProjID:  p.ProjID,
		Name:    "robin",
		NewName: "finch",
	})
	require.NoError(t, err)
	assert.Equal(t, "finch", got.Name)

	// Renaming onto a taken name picks up a suffix.
	got, err = e.asset.Update(context.Background(), callerEmail, UpdateAssetInput{
		ProjID:  p.ProjID,
		Name:    "finch",
		NewName: "sparrow",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Name, "sparrow-"))
}

func TestAssetUpdateTagsWholesale(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Tags:   "bird",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	got, err := e.asset.Update(context.Background(), callerEmail, UpdateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Tags:   "Garden, Winter",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"garden", "winter"}, got.Tags)

	// No tags supplied leaves the stored set alone.
	got, err = e.asset.Update(context.Background(), callerEmail, UpdateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"garden", "winter"}, got.Tags)
}

func TestAssetUpdateRequiresName(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Update(context.Background(), callerEmail, UpdateAssetInput{ProjID: p.ProjID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestAssetDeleteImageCascadesToMasks(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)
	_, err = e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Upload:      newUpload("beak.png", "image/png", "layer"),
	})
	require.NoError(t, err)

	_, err = e.asset.Update(context.Background(), callerEmail, UpdateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Delete: true,
	})
	require.NoError(t, err)

	remaining, err := e.assets.ListByProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, 0, e.blobs.Len())
}

func TestAssetDeleteRequiresOwner(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	_, err = e.asset.Update(context.Background(), editorUser, UpdateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Delete: true,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAssetListWithMasksAndTagScope(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")
	ctx := context.Background()

	_, err := e.asset.Create(ctx, callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Tags:   "bird",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)
	_, err = e.asset.Create(ctx, callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "stone",
		Tags:   "rock",
		Upload: newUpload("stone.png", "image/png", "pixels"),
	})
	require.NoError(t, err)
	_, err = e.asset.Create(ctx, callerEmail, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Tags:        "bird",
		Upload:      newUpload("beak.png", "image/png", "layer"),
	})
	require.NoError(t, err)
	_, err = e.asset.Create(ctx, callerEmail, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "wing",
		Upload:      newUpload("wing.png", "image/png", "layer"),
	})
	require.NoError(t, err)

	// Without masks the tag filter narrows the images.
	flat, err := e.asset.List(ctx, callerEmail, ListAssetsInput{ProjID: p.ProjID, Tag: "bird"})
	require.NoError(t, err)
	require.Len(t, flat, 1)
	assert.Equal(t, "robin", flat[0].Image.Name)
	assert.Nil(t, flat[0].Masks)

	// With masks the tag filter moves to the masks and all images list.
	nested, err := e.asset.List(ctx, callerEmail, ListAssetsInput{ProjID: p.ProjID, WithMasks: true, Tag: "bird"})
	require.NoError(t, err)
	require.Len(t, nested, 2)
	for _, l := range nested {
		if l.Image.Name == "robin" {
			require.Len(t, l.Masks, 1)
			assert.Equal(t, "beak", l.Masks[0].Name)
		}
	}
}

func TestAssetListMaskNameImpliesMasks(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")
	ctx := context.Background()

	_, err := e.asset.Create(ctx, callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)
	_, err = e.asset.Create(ctx, callerEmail, CreateAssetInput{
		ProjID:      p.ProjID,
		ParentImage: "robin",
		Name:        "beak",
		Upload:      newUpload("beak.png", "image/png", "layer"),
	})
	require.NoError(t, err)

	listings, err := e.asset.List(ctx, callerEmail, ListAssetsInput{ProjID: p.ProjID, MaskName: "beak"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Len(t, listings[0].Masks, 1)
	assert.Equal(t, "beak", listings[0].Masks[0].Name)
}

func TestAssetListSortOrders(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")
	ctx := context.Background()

	base := time.Now().UTC()
	older := &asset.Asset{ProjectID: p.ID, Kind: asset.KindImage, Name: "older", LastModified: base}
	require.NoError(t, e.assets.Put(ctx, older, older.LastModified))
	newer := &asset.Asset{ProjectID: p.ID, Kind: asset.KindImage, Name: "newer", LastModified: base.Add(time.Minute)}
	require.NoError(t, e.assets.Put(ctx, newer, newer.LastModified))

	firstMask := &asset.Asset{ProjectID: p.ID, ParentID: &older.ID, Kind: asset.KindMask, Name: "first", LastModified: base}
	require.NoError(t, e.assets.Put(ctx, firstMask, firstMask.LastModified))
	secondMask := &asset.Asset{ProjectID: p.ID, ParentID: &older.ID, Kind: asset.KindMask, Name: "second", LastModified: base.Add(time.Minute)}
	require.NoError(t, e.assets.Put(ctx, secondMask, secondMask.LastModified))

	maskNames := func(l *ImageListing) []string {
		names := make([]string, 0, len(l.Masks))
		for _, m := range l.Masks {
			names = append(names, m.Name)
		}
		return names
	}

	// Both levels default to newest first.
	listings, err := e.asset.List(ctx, callerEmail, ListAssetsInput{ProjID: p.ProjID, WithMasks: true})
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "newer", listings[0].Image.Name)
	assert.Equal(t, "older", listings[1].Image.Name)
	assert.Equal(t, []string{"second", "first"}, maskNames(listings[1]))

	// Ascending images leave the mask order untouched.
	listings, err = e.asset.List(ctx, callerEmail, ListAssetsInput{ProjID: p.ProjID, WithMasks: true, SortImg: "asc"})
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "older", listings[0].Image.Name)
	assert.Equal(t, "newer", listings[1].Image.Name)
	assert.Equal(t, []string{"second", "first"}, maskNames(listings[0]))

	// Ascending masks leave the image order untouched.
	listings, err = e.asset.List(ctx, callerEmail, ListAssetsInput{ProjID: p.ProjID, WithMasks: true, SortMask: "asc"})
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "newer", listings[0].Image.Name)
	assert.Equal(t, []string{"first", "second"}, maskNames(listings[1]))
}

func TestAssetListDeniedForStranger(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	_, err := e.asset.List(context.Background(), strangerTwo, ListAssetsInput{ProjID: p.ProjID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestOpenBlobAccessChecked(t *testing.T) {
	e := newEnv()
	pub := e.seedProject(t, "public")
	ctx := context.Background()

	a, err := e.asset.Create(ctx, callerEmail, CreateAssetInput{
		ProjID: pub.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	// Public project streams for anonymous callers.
	rc, info, err := e.asset.OpenBlob(ctx, "", a.BlobKey)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "pixels", string(data))
	assert.Equal(t, "image/png", info.ContentType)

	_, _, err = e.asset.OpenBlob(ctx, "", "no-such-key")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOpenBlobPrivateDeniesAnonymous(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	a, err := e.asset.Create(context.Background(), callerEmail, CreateAssetInput{
		ProjID: p.ProjID,
		Name:   "robin",
		Upload: newUpload("robin.png", "image/png", "pixels"),
	})
	require.NoError(t, err)

	_, _, err = e.asset.OpenBlob(context.Background(), "", a.BlobKey)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestUploadTarget(t *testing.T) {
	e := newEnv()
	p := e.seedProject(t, "")

	key, url, err := e.asset.UploadTarget(context.Background(), editorUser, p.ProjID, time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Equal(t, "memory://upload/"+key, url)

	_, _, err = e.asset.UploadTarget(context.Background(), strangerTwo, p.ProjID, time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
