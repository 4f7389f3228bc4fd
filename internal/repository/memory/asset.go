package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"annotation-service/internal/domain/asset"
	"annotation-service/internal/repository"
	apperrors "annotation-service/pkg/errors"
)

const errAssetNotFound = "asset not found"

type AssetRepository struct {
	mu       sync.RWMutex
	assets   map[uuid.UUID]*asset.Asset
	projects *ProjectRepository
}

func NewAssetRepository(projects *ProjectRepository) *AssetRepository {
	return &AssetRepository{
		assets:   make(map[uuid.UUID]*asset.Asset),
		projects: projects,
	}
}

func (r *AssetRepository) Put(ctx context.Context, a *asset.Asset, projectModified time.Time) error {
	r.mu.Lock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.assets[a.ID] = cloneAsset(a)
	r.mu.Unlock()

	r.projects.touch(a.ProjectID, projectModified)
	return nil
}

func (r *AssetRepository) FindByName(ctx context.Context, kind asset.Kind, projectID uuid.UUID, parentID *uuid.UUID, name string) ([]*asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*asset.Asset
	for _, a := range r.assets {
		if a.Kind == kind && a.ProjectID == projectID && sameParent(a.ParentID, parentID) && a.Name == name {
			out = append(out, cloneAsset(a))
		}
	}
	return out, nil
}

func (r *AssetRepository) FindByBlobKey(ctx context.Context, blobKey string) (*asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Image-first lookup order.
	var mask *asset.Asset
	for _, a := range r.assets {
		if a.BlobKey != blobKey {
			continue
		}
		if a.Kind == asset.KindImage {
			return cloneAsset(a), nil
		}
		mask = a
	}
	if mask != nil {
		return cloneAsset(mask), nil
	}
	return nil, apperrors.NotFound(errAssetNotFound)
}

func (r *AssetRepository) ListByParent(ctx context.Context, kind asset.Kind, projectID uuid.UUID, parentID *uuid.UUID, opts repository.AssetListOptions) ([]*asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag := strings.ToLower(opts.Tag)

	var out []*asset.Asset
	for _, a := range r.assets {
		if a.Kind != kind || a.ProjectID != projectID || !sameParent(a.ParentID, parentID) {
			continue
		}
		if tag != "" && !hasTag(a, tag) {
			continue
		}
		if opts.Name != "" && a.Name != opts.Name {
			continue
		}
		out = append(out, cloneAsset(a))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if opts.Sort == repository.SortAscending {
			return out[i].LastModified.Before(out[j].LastModified)
		}
		return out[i].LastModified.After(out[j].LastModified)
	})

	return out, nil
}

func (r *AssetRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*asset.Asset
	for _, a := range r.assets {
		if a.ProjectID == projectID {
			out = append(out, cloneAsset(a))
		}
	}
	return out, nil
}

func (r *AssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[id]; !ok {
		return apperrors.NotFound(errAssetNotFound)
	}
	delete(r.assets, id)
	return nil
}

func (r *AssetRepository) DeleteByParent(ctx context.Context, parentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, a := range r.assets {
		if a.ParentID != nil && *a.ParentID == parentID {
			delete(r.assets, id)
		}
	}
	return nil
}

func (r *AssetRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, a := range r.assets {
		if a.ProjectID == projectID {
			delete(r.assets, id)
		}
	}
	return nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func hasTag(a *asset.Asset, tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func cloneAsset(a *asset.Asset) *asset.Asset {
	cp := *a
	cp.Tags = append([]string(nil), a.Tags...)
	if a.ParentID != nil {
		parent := *a.ParentID
		cp.ParentID = &parent
	}
	return &cp
}
