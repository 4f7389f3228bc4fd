package postgres

import (
	"fmt"
	"time"

	apperrors "annotation-service/pkg/errors"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errProjectNotFound = "project not found"
	errAssetNotFound   = "asset not found"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedCreateProjectMsg = "failed to create project"
	errFailedStampProjectMsg  = "failed to stamp project id"
	errFailedGetProjectMsg    = "failed to get project"
	errFailedListProjectsMsg  = "failed to list projects"
	errFailedScanProjectMsg   = "failed to scan project"
	errFailedUpdateProjectMsg = "failed to update project"
	errFailedDeleteProjectMsg = "failed to delete project"

	errFailedPutAssetMsg     = "failed to put asset"
	errFailedGetAssetMsg     = "failed to get asset"
	errFailedListAssetsMsg   = "failed to list assets"
	errFailedScanAssetMsg    = "failed to scan asset"
	errFailedDeleteAssetsMsg = "failed to delete assets"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }

	errFailedCreateProject = func(err error) error { return apperrors.Storage(errFailedCreateProjectMsg, err) }
	errFailedStampProject  = func(err error) error { return apperrors.Storage(errFailedStampProjectMsg, err) }
	errFailedGetProject    = func(err error) error { return apperrors.Storage(errFailedGetProjectMsg, err) }
	errFailedListProjects  = func(err error) error { return apperrors.Storage(errFailedListProjectsMsg, err) }
	errFailedScanProject   = func(err error) error { return apperrors.Storage(errFailedScanProjectMsg, err) }
	errFailedUpdateProject = func(err error) error { return apperrors.Storage(errFailedUpdateProjectMsg, err) }
	errFailedDeleteProject = func(err error) error { return apperrors.Storage(errFailedDeleteProjectMsg, err) }

	errFailedPutAsset     = func(err error) error { return apperrors.Storage(errFailedPutAssetMsg, err) }
	errFailedGetAsset     = func(err error) error { return apperrors.Storage(errFailedGetAssetMsg, err) }
	errFailedListAssets   = func(err error) error { return apperrors.Storage(errFailedListAssetsMsg, err) }
	errFailedScanAsset    = func(err error) error { return apperrors.Storage(errFailedScanAssetMsg, err) }
	errFailedDeleteAssets = func(err error) error { return apperrors.Storage(errFailedDeleteAssetsMsg, err) }
)
