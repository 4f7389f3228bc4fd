// Package app wires the annotation service together and owns its
// lifecycle.
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"annotation-service/internal/config"
	"annotation-service/internal/http"
	"annotation-service/internal/repository/postgres"
)

// Service is the assembled application: configuration, storage and the
// HTTP server.
type Service struct {
	config *config.Config
	log    *logrus.Logger
	db     *postgres.DB
	server *http.Server
}

func NewService() (*Service, error) {
	return InitializeService()
}

// Start runs the HTTP server. Blocks until the server stops.
func (s *Service) Start() error {
	s.log.WithField("port", s.config.Server.Port).Info("starting annotation service")
	return s.server.Start(":" + s.config.Server.Port)
}

// Shutdown drains in-flight requests, then releases the database pool.
func (s *Service) Shutdown(ctx context.Context) error {
	defer s.db.Pool.Close()
	return s.server.Shutdown(ctx)
}
