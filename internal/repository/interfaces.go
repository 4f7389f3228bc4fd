package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"annotation-service/internal/domain/asset"
	"annotation-service/internal/domain/project"
)

// EntityStore contracts. The postgres package implements them against a
// parent-pointer table layout; the memory package backs the tests.

type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "dsc"
)

// ParseSortOrder defaults to descending chronological order.
func ParseSortOrder(raw string) SortOrder {
	if strings.ToLower(raw) == string(SortAscending) {
		return SortAscending
	}
	return SortDescending
}

type Role string

const (
	RoleAny    Role = ""
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
)

// ProjectFilter narrows a project scan. The zero filter with only Caller
// set returns every project the caller owns or edits.
type ProjectFilter struct {
	Caller     string
	Role       Role
	Visibility project.Visibility
	Global     bool
	NameEquals string
	Sort       SortOrder
}

// AssetListOptions narrow and order a subtree scan.
type AssetListOptions struct {
	Tag  string
	Name string
	Sort SortOrder
}

type ProjectRepository interface {
	// Create inserts the project, obtaining a store-generated key, then
	// stamps the key's string form onto the record as ProjID.
	Create(ctx context.Context, p *project.Project) error
	GetByProjID(ctx context.Context, projID string) (*project.Project, error)
	Update(ctx context.Context, p *project.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ProjectFilter) ([]*project.Project, error)
}

type AssetRepository interface {
	// Put inserts-or-replaces the asset and refreshes the owning
	// project's last-modified timestamp in one batched write.
	Put(ctx context.Context, a *asset.Asset, projectModified time.Time) error
	FindByName(ctx context.Context, kind asset.Kind, projectID uuid.UUID, parentID *uuid.UUID, name string) ([]*asset.Asset, error)
	FindByBlobKey(ctx context.Context, blobKey string) (*asset.Asset, error)
	ListByParent(ctx context.Context, kind asset.Kind, projectID uuid.UUID, parentID *uuid.UUID, opts AssetListOptions) ([]*asset.Asset, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*asset.Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByParent(ctx context.Context, parentID uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}
