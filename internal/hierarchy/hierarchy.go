// Package hierarchy maintains the project -> image -> mask containment
// tree: name resolution, uniqueness under a parent, and cascading
// deletes.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"annotation-service/internal/blob"
	"annotation-service/internal/domain/asset"
	"annotation-service/internal/domain/project"
	"annotation-service/internal/repository"
	apperrors "annotation-service/pkg/errors"
)

type Hierarchy struct {
	projects repository.ProjectRepository
	assets   repository.AssetRepository
	blobs    blob.Store
	log      *logrus.Logger
}

func New(projects repository.ProjectRepository, assets repository.AssetRepository, blobs blob.Store, log *logrus.Logger) *Hierarchy {
	return &Hierarchy{projects: projects, assets: assets, blobs: blobs, log: log}
}

// Resolve looks up the single asset of the given kind directly under the
// parent with a matching name. More than one match means the store is
// inconsistent; the first match is returned and the inconsistency logged.
func (h *Hierarchy) Resolve(ctx context.Context, kind asset.Kind, projectID uuid.UUID, parentID *uuid.UUID, name string) (*asset.Asset, error) {
	matches, err := h.assets.FindByName(ctx, kind, projectID, parentID, name)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("%s not found", kind))
	}
	if len(matches) > 1 {
		h.log.WithFields(logrus.Fields{
			"kind":    kind,
			"project": projectID,
			"name":    name,
			"matches": len(matches),
		}).Warn("multiple assets share one name under a parent")
	}

	return matches[0], nil
}

// EnsureUniqueName returns candidate unchanged when it is free under the
// parent, or candidate suffixed with the supplied timestamp when taken.
// Conflicts are never a hard rejection. A store failure during the probe
// is surfaced rather than treated as "no conflict".
func (h *Hierarchy) EnsureUniqueName(ctx context.Context, kind asset.Kind, projectID uuid.UUID, parentID *uuid.UUID, candidate string, now time.Time) (string, error) {
	_, err := h.Resolve(ctx, kind, projectID, parentID, candidate)
	if err == nil {
		return candidate + "-" + now.UTC().Format(time.RFC3339Nano), nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return candidate, nil
	}
	return "", err
}

// DeleteProjectTree removes every image and mask under the project, then
// the project itself. Entity deletion is fail-stop: a store error leaves
// the tree partially deleted. Blob cleanup is best-effort and never
// blocks the cascade.
func (h *Hierarchy) DeleteProjectTree(ctx context.Context, p *project.Project) error {
	descendants, err := h.assets.ListByProject(ctx, p.ID)
	if err != nil {
		return err
	}

	if err := h.assets.DeleteByProject(ctx, p.ID); err != nil {
		return err
	}
	if err := h.projects.Delete(ctx, p.ID); err != nil {
		return err
	}

	for _, a := range descendants {
		h.deleteBlob(ctx, a.BlobKey)
	}
	return nil
}

// DeleteImageTree removes an image and its masks.
func (h *Hierarchy) DeleteImageTree(ctx context.Context, img *asset.Asset) error {
	masks, err := h.assets.ListByParent(ctx, asset.KindMask, img.ProjectID, &img.ID, repository.AssetListOptions{})
	if err != nil {
		return err
	}

	if err := h.assets.DeleteByParent(ctx, img.ID); err != nil {
		return err
	}
	if err := h.assets.Delete(ctx, img.ID); err != nil {
		return err
	}

	h.deleteBlob(ctx, img.BlobKey)
	for _, m := range masks {
		h.deleteBlob(ctx, m.BlobKey)
	}
	return nil
}

// DeleteMask removes a single mask. Masks are leaves; there is nothing to
// cascade to.
func (h *Hierarchy) DeleteMask(ctx context.Context, m *asset.Asset) error {
	if err := h.assets.Delete(ctx, m.ID); err != nil {
		return err
	}
	h.deleteBlob(ctx, m.BlobKey)
	return nil
}

func (h *Hierarchy) deleteBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.blobs.Delete(ctx, key); err != nil {
		h.log.WithError(err).WithField("blobkey", key).Warn("failed to delete blob during cascade")
	}
}
