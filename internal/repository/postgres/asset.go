package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"annotation-service/internal/domain/asset"
	"annotation-service/internal/repository"
	apperrors "annotation-service/pkg/errors"
)

type AssetRepository struct {
	db *DB
}

func NewAssetRepository(db *DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = "id, project_id, parent_id, kind, name, blob_key, file_extension, tags, last_modified"

func (r *AssetRepository) Put(ctx context.Context, a *asset.Asset, projectModified time.Time) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	// Asset write and parent-project timestamp refresh go out as one batch.
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO assets (id, project_id, parent_id, kind, name, blob_key, file_extension, tags, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			blob_key = EXCLUDED.blob_key,
			file_extension = EXCLUDED.file_extension,
			tags = EXCLUDED.tags,
			last_modified = EXCLUDED.last_modified
	`, a.ID, a.ProjectID, a.ParentID, a.Kind, a.Name, a.BlobKey, a.FileExtension, tagsOrEmpty(a.Tags), a.LastModified)
	batch.Queue("UPDATE projects SET last_modified = $2 WHERE id = $1", a.ProjectID, projectModified)

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return errFailedPutAsset(err)
		}
	}

	return nil
}

func (r *AssetRepository) FindByName(ctx context.Context, kind asset.Kind, projectID uuid.UUID, parentID *uuid.UUID, name string) ([]*asset.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM assets
		WHERE kind = $1 AND project_id = $2 AND parent_id IS NOT DISTINCT FROM $3 AND name = $4
	`, assetColumns)

	rows, err := r.db.Pool.Query(ctx, query, kind, projectID, parentID, name)
	if err != nil {
		return nil, errFailedListAssets(err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

func (r *AssetRepository) FindByBlobKey(ctx context.Context, blobKey string) (*asset.Asset, error) {
	// Images sort before masks, matching the image-first lookup order.
	query := fmt.Sprintf(`
		SELECT %s FROM assets WHERE blob_key = $1 ORDER BY kind ASC LIMIT 1
	`, assetColumns)

	a := &asset.Asset{}
	err := r.db.Pool.QueryRow(ctx, query, blobKey).Scan(
		&a.ID, &a.ProjectID, &a.ParentID, &a.Kind, &a.Name, &a.BlobKey, &a.FileExtension, &a.Tags, &a.LastModified,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errAssetNotFound)
		}
		return nil, errFailedGetAsset(err)
	}

	return a, nil
}

func (r *AssetRepository) ListByParent(ctx context.Context, kind asset.Kind, projectID uuid.UUID, parentID *uuid.UUID, opts repository.AssetListOptions) ([]*asset.Asset, error) {
	conds := []string{"kind = $1", "project_id = $2", "parent_id IS NOT DISTINCT FROM $3"}
	args := []interface{}{kind, projectID, parentID}

	if opts.Tag != "" {
		args = append(args, strings.ToLower(opts.Tag))
		conds = append(conds, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	if opts.Name != "" {
		args = append(args, opts.Name)
		conds = append(conds, fmt.Sprintf("name = $%d", len(args)))
	}

	order := "DESC"
	if opts.Sort == repository.SortAscending {
		order = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM assets WHERE %s ORDER BY last_modified %s
	`, assetColumns, strings.Join(conds, " AND "), order)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListAssets(err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

func (r *AssetRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*asset.Asset, error) {
	query := fmt.Sprintf("SELECT %s FROM assets WHERE project_id = $1", assetColumns)

	rows, err := r.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, errFailedListAssets(err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

func (r *AssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM assets WHERE id = $1", id)
	if err != nil {
		return errFailedDeleteAssets(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errAssetNotFound)
	}

	return nil
}

func (r *AssetRepository) DeleteByParent(ctx context.Context, parentID uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx, "DELETE FROM assets WHERE parent_id = $1", parentID); err != nil {
		return errFailedDeleteAssets(err)
	}
	return nil
}

func (r *AssetRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx, "DELETE FROM assets WHERE project_id = $1", projectID); err != nil {
		return errFailedDeleteAssets(err)
	}
	return nil
}

func scanAssets(rows pgx.Rows) ([]*asset.Asset, error) {
	var assets []*asset.Asset
	for rows.Next() {
		a := &asset.Asset{}
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.ParentID, &a.Kind, &a.Name, &a.BlobKey, &a.FileExtension, &a.Tags, &a.LastModified); err != nil {
			return nil, errFailedScanAsset(err)
		}
		assets = append(assets, a)
	}

	return assets, rows.Err()
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
