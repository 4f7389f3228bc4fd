package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"annotation-service/internal/domain/project"
	"annotation-service/internal/repository"
	apperrors "annotation-service/pkg/errors"
)

type ProjectRepository struct {
	db *DB
}

func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (name, visibility, owners, editors, last_modified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		p.Name, p.Visibility, p.Owners, editorsOrEmpty(p.Editors), p.LastModified,
	).Scan(&p.ID)
	if err != nil {
		return errFailedCreateProject(err)
	}

	// Stamp the store-generated key's string form onto the record as the
	// externally visible project ID.
	p.ProjID = p.ID.String()
	if _, err := r.db.Pool.Exec(ctx,
		"UPDATE projects SET proj_id = $2 WHERE id = $1", p.ID, p.ProjID); err != nil {
		return errFailedStampProject(err)
	}

	return nil
}

func (r *ProjectRepository) GetByProjID(ctx context.Context, projID string) (*project.Project, error) {
	query := `
		SELECT id, proj_id, name, visibility, owners, editors, last_modified
		FROM projects WHERE proj_id = $1
	`

	p := &project.Project{}
	err := r.db.Pool.QueryRow(ctx, query, projID).Scan(
		&p.ID, &p.ProjID, &p.Name, &p.Visibility, &p.Owners, &p.Editors, &p.LastModified,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, errFailedGetProject(err)
	}

	return p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET name = $2, visibility = $3, owners = $4, editors = $5, last_modified = $6
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query,
		p.ID, p.Name, p.Visibility, p.Owners, editorsOrEmpty(p.Editors), p.LastModified,
	)
	if err != nil {
		return errFailedUpdateProject(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errProjectNotFound)
	}

	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return errFailedDeleteProject(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errProjectNotFound)
	}

	return nil
}

func (r *ProjectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]*project.Project, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Global {
		// Global listing ignores the caller's relation and any visibility
		// narrowing: all public projects.
		conds = append(conds, fmt.Sprintf("visibility = %s", arg(project.VisibilityPublic)))
	} else {
		caller := arg(filter.Caller)
		switch filter.Role {
		case repository.RoleOwner:
			conds = append(conds, fmt.Sprintf("%s = ANY(owners)", caller))
		case repository.RoleEditor:
			conds = append(conds, fmt.Sprintf("%s = ANY(editors)", caller))
		default:
			conds = append(conds, fmt.Sprintf("(%s = ANY(owners) OR %s = ANY(editors))", caller, caller))
		}
		if filter.Visibility != "" {
			conds = append(conds, fmt.Sprintf("visibility = %s", arg(filter.Visibility)))
		}
	}

	if filter.NameEquals != "" {
		conds = append(conds, fmt.Sprintf("LOWER(name) = LOWER(%s)", arg(filter.NameEquals)))
	}

	order := "DESC"
	if filter.Sort == repository.SortAscending {
		order = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, proj_id, name, visibility, owners, editors, last_modified
		FROM projects WHERE %s ORDER BY last_modified %s
	`, strings.Join(conds, " AND "), order)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListProjects(err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		p := &project.Project{}
		if err := rows.Scan(&p.ID, &p.ProjID, &p.Name, &p.Visibility, &p.Owners, &p.Editors, &p.LastModified); err != nil {
			return nil, errFailedScanProject(err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// editorsOrEmpty keeps the editors column NOT NULL for scan simplicity.
func editorsOrEmpty(editors []string) []string {
	if editors == nil {
		return []string{}
	}
	return editors
}
