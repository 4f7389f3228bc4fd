// Package memory provides map-backed implementations of the repository
// contracts. They carry the tests and local development; production wiring
// uses the postgres package.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"annotation-service/internal/domain/project"
	"annotation-service/internal/repository"
	apperrors "annotation-service/pkg/errors"
)

const errProjectNotFound = "project not found"

type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*project.Project
	byProjID map[string]uuid.UUID
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		projects: make(map[uuid.UUID]*project.Project),
		byProjID: make(map[string]uuid.UUID),
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = uuid.New()
	p.ProjID = p.ID.String()
	r.projects[p.ID] = cloneProject(p)
	r.byProjID[p.ProjID] = p.ID
	return nil
}

func (r *ProjectRepository) GetByProjID(ctx context.Context, projID string) (*project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byProjID[projID]
	if !ok {
		return nil, apperrors.NotFound(errProjectNotFound)
	}
	return cloneProject(r.projects[id]), nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[p.ID]; !ok {
		return apperrors.NotFound(errProjectNotFound)
	}
	r.projects[p.ID] = cloneProject(p)
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return apperrors.NotFound(errProjectNotFound)
	}
	delete(r.byProjID, p.ProjID)
	delete(r.projects, id)
	return nil
}

func (r *ProjectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]*project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*project.Project
	for _, p := range r.projects {
		if !matchesFilter(p, filter) {
			continue
		}
		out = append(out, cloneProject(p))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if filter.Sort == repository.SortAscending {
			return out[i].LastModified.Before(out[j].LastModified)
		}
		return out[i].LastModified.After(out[j].LastModified)
	})

	return out, nil
}

func matchesFilter(p *project.Project, filter repository.ProjectFilter) bool {
	if filter.Global {
		if p.Visibility != project.VisibilityPublic {
			return false
		}
	} else {
		switch filter.Role {
		case repository.RoleOwner:
			if !p.IsOwner(filter.Caller) {
				return false
			}
		case repository.RoleEditor:
			if !p.IsEditor(filter.Caller) {
				return false
			}
		default:
			if !p.IsOwner(filter.Caller) && !p.IsEditor(filter.Caller) {
				return false
			}
		}
		if filter.Visibility != "" && p.Visibility != filter.Visibility {
			return false
		}
	}

	if filter.NameEquals != "" && !strings.EqualFold(p.Name, filter.NameEquals) {
		return false
	}
	return true
}

// touch refreshes a project's last-modified timestamp; the asset
// repository calls it as the second half of its paired write.
func (r *ProjectRepository) touch(id uuid.UUID, ts time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.projects[id]; ok {
		p.LastModified = ts
	}
}

func cloneProject(p *project.Project) *project.Project {
	cp := *p
	cp.Owners = append([]string(nil), p.Owners...)
	cp.Editors = append([]string(nil), p.Editors...)
	return &cp
}
