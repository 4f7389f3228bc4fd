// Package service implements the application operations over projects,
// images and masks.
package service

import (
	"context"
	"time"

	"annotation-service/internal/access"
	"annotation-service/internal/domain/project"
	"annotation-service/internal/hierarchy"
	"annotation-service/internal/repository"
)

const untitledPrefix = "Untitled-"

type ProjectService struct {
	projects  repository.ProjectRepository
	access    *access.Controller
	hierarchy *hierarchy.Hierarchy
}

func NewProjectService(projects repository.ProjectRepository, ac *access.Controller, h *hierarchy.Hierarchy) *ProjectService {
	return &ProjectService{projects: projects, access: ac, hierarchy: h}
}

// Create registers a new project owned by the caller. The caller is
// always an owner, whatever the supplied owner list says.
func (s *ProjectService) Create(ctx context.Context, caller string, in project.CreateInput) (*project.Project, error) {
	now := time.Now().UTC()

	name := in.Name
	if name == "" {
		name = untitledPrefix + now.Format(time.RFC3339Nano)
	}

	visibility := project.VisibilityPrivate
	if v, ok := project.ParseVisibility(in.Visibility); ok {
		visibility = v
	}

	p := &project.Project{
		Name:         name,
		Visibility:   visibility,
		Owners:       ownersWithCaller(caller, in.Owners),
		Editors:      in.Editors,
		LastModified: now,
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial update to a project, or deletes it and its
// whole asset tree when the delete flag is set. Only owners may update.
// Empty fields leave the stored value untouched; the modification time
// always refreshes.
func (s *ProjectService) Update(ctx context.Context, caller, projID string, in project.UpdateInput) (*project.Project, error) {
	p, err := s.access.Authorize(ctx, projID, caller, false, false)
	if err != nil {
		return nil, err
	}

	if in.Delete {
		if err := s.hierarchy.DeleteProjectTree(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if v, ok := project.ParseVisibility(in.Visibility); ok {
		p.Visibility = v
	}
	if in.Owners != nil {
		p.Owners = ownersWithCaller(caller, in.Owners)
	}
	if in.Editors != nil {
		p.Editors = in.Editors
	}
	p.LastModified = time.Now().UTC()

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a single project the caller may at least view.
func (s *ProjectService) Get(ctx context.Context, caller, projID string) (*project.Project, error) {
	return s.access.Authorize(ctx, projID, caller, true, true)
}

// ListProjectsInput carries the raw query filters; unknown values fall
// back to the widest matching interpretation.
type ListProjectsInput struct {
	Role       string
	Visibility string
	Global     bool
	SearchTerm string
	Sort       string
}

// List returns the caller's projects, or all public ones in global mode.
func (s *ProjectService) List(ctx context.Context, caller string, in ListProjectsInput) ([]*project.Project, error) {
	filter := repository.ProjectFilter{
		Caller:     caller,
		Global:     in.Global,
		NameEquals: in.SearchTerm,
		Sort:       repository.ParseSortOrder(in.Sort),
	}

	switch in.Role {
	case string(repository.RoleOwner):
		filter.Role = repository.RoleOwner
	case string(repository.RoleEditor):
		filter.Role = repository.RoleEditor
	}

	if v, ok := project.ParseVisibility(in.Visibility); ok {
		filter.Visibility = v
	}

	return s.projects.List(ctx, filter)
}

// ownersWithCaller merges the caller into the supplied owner list,
// first-seen order, no duplicates.
func ownersWithCaller(caller string, owners []string) []string {
	merged := make([]string, 0, len(owners)+1)
	seen := make(map[string]struct{}, len(owners)+1)

	for _, o := range append([]string{caller}, owners...) {
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		merged = append(merged, o)
	}
	return merged
}
