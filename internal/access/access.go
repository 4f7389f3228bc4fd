// Package access computes effective permissions for a project and gates
// every project, image and mask operation.
package access

import (
	"context"

	"annotation-service/internal/domain/project"
	"annotation-service/internal/repository"
	apperrors "annotation-service/pkg/errors"
)

const (
	errMissingProjectID = "project ID must be provided"
	errPermissionDenied = "you do not have permission to access this project"
)

type Controller struct {
	projects repository.ProjectRepository
}

func NewController(projects repository.ProjectRepository) *Controller {
	return &Controller{projects: projects}
}

// Authorize loads the project behind projID and checks the caller against
// it. Owners always pass; editors pass when requireEditor is set; anyone
// passes on a public project when allowPublic is set. The check is
// read-only.
func (c *Controller) Authorize(ctx context.Context, projID, caller string, requireEditor, allowPublic bool) (*project.Project, error) {
	if projID == "" {
		return nil, apperrors.InvalidArgument(errMissingProjectID)
	}

	p, err := c.projects.GetByProjID(ctx, projID)
	if err != nil {
		return nil, err
	}

	if p.IsOwner(caller) {
		return p, nil
	}
	if requireEditor && p.IsEditor(caller) {
		return p, nil
	}
	if allowPublic && p.Visibility == project.VisibilityPublic {
		return p, nil
	}

	return nil, apperrors.PermissionDenied(errPermissionDenied)
}
