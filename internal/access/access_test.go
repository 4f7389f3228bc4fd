package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotation-service/internal/domain/project"
	"annotation-service/internal/repository/memory"
	apperrors "annotation-service/pkg/errors"
)

const (
	ownerEmail  = "owner@example.com"
	editorEmail = "editor@example.com"
	otherEmail  = "other@example.com"
)

func seedProject(t *testing.T, repo *memory.ProjectRepository, visibility project.Visibility) *project.Project {
	t.Helper()
	p := &project.Project{
		Name:         "wildlife",
		Visibility:   visibility,
		Owners:       []string{ownerEmail},
		Editors:      []string{editorEmail},
		LastModified: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestAuthorizeOwnerAlwaysPasses(t *testing.T) {
	repo := memory.NewProjectRepository()
	c := NewController(repo)
	p := seedProject(t, repo, project.VisibilityPrivate)

	got, err := c.Authorize(context.Background(), p.ProjID, ownerEmail, false, false)
	require.NoError(t, err)
	assert.Equal(t, p.ProjID, got.ProjID)
}

func TestAuthorizeEditorNeedsFlag(t *testing.T) {
	repo := memory.NewProjectRepository()
	c := NewController(repo)
	p := seedProject(t, repo, project.VisibilityPrivate)

	_, err := c.Authorize(context.Background(), p.ProjID, editorEmail, false, false)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = c.Authorize(context.Background(), p.ProjID, editorEmail, true, false)
	assert.NoError(t, err)
}

func TestAuthorizePublicNeedsFlag(t *testing.T) {
	repo := memory.NewProjectRepository()
	c := NewController(repo)
	p := seedProject(t, repo, project.VisibilityPublic)

	_, err := c.Authorize(context.Background(), p.ProjID, otherEmail, true, false)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = c.Authorize(context.Background(), p.ProjID, otherEmail, true, true)
	assert.NoError(t, err)

	// Anonymous callers also pass on public projects.
	_, err = c.Authorize(context.Background(), p.ProjID, "", true, true)
	assert.NoError(t, err)
}

func TestAuthorizePrivateDeniesOutsider(t *testing.T) {
	repo := memory.NewProjectRepository()
	c := NewController(repo)
	p := seedProject(t, repo, project.VisibilityPrivate)

	_, err := c.Authorize(context.Background(), p.ProjID, otherEmail, true, true)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAuthorizeMissingProjectID(t *testing.T) {
	c := NewController(memory.NewProjectRepository())

	_, err := c.Authorize(context.Background(), "", ownerEmail, true, true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestAuthorizeUnknownProject(t *testing.T) {
	c := NewController(memory.NewProjectRepository())

	_, err := c.Authorize(context.Background(), "no-such-project", ownerEmail, true, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
