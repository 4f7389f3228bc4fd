package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"annotation-service/internal/access"
	"annotation-service/internal/audit"
	"annotation-service/internal/auth"
	s3blob "annotation-service/internal/blob/s3"
	"annotation-service/internal/config"
	"annotation-service/internal/hierarchy"
	"annotation-service/internal/http"
	"annotation-service/internal/repository/postgres"
	"annotation-service/internal/service"
)

// InitializeService wires up all dependencies and returns a configured
// Service.
func InitializeService() (*Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger()

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	blobStore, err := s3blob.NewClient(&cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	projectRepo := postgres.NewProjectRepository(db)
	assetRepo := postgres.NewAssetRepository(db)

	accessControl := access.NewController(projectRepo)
	tree := hierarchy.New(projectRepo, assetRepo, blobStore, log)

	projectService := service.NewProjectService(projectRepo, accessControl, tree)
	assetService := service.NewAssetService(assetRepo, blobStore, accessControl, tree, log)

	jwtService := auth.NewJWTService(cfg.Identity.JWTSecret)
	authMiddleware := auth.NewMiddleware(jwtService, cfg.Identity.LoginURL)

	server := http.NewServer(&http.ServerDependencies{
		Config:         cfg,
		ProjectService: projectService,
		AssetService:   assetService,
		AuthMiddleware: authMiddleware,
		AuditLogger:    audit.NewLogger(db.Pool, log),
	})

	return &Service{
		config: cfg,
		log:    log,
		db:     db,
		server: server,
	}, nil
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}
