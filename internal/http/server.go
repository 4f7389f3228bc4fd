package http

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"annotation-service/internal/audit"
	"annotation-service/internal/auth"
	"annotation-service/internal/config"
	"annotation-service/internal/http/handler"
	"annotation-service/internal/http/middleware"
	"annotation-service/internal/service"
	"annotation-service/pkg/metrics"
)

const (
	jsonKeyStatus = "status"
	statusOK      = "ok"

	bytesPerMegabyte = 1024 * 1024
)

type ServerDependencies struct {
	Config         *config.Config
	ProjectService *service.ProjectService
	AssetService   *service.AssetService
	AuthMiddleware *auth.Middleware
	AuditLogger    *audit.Logger
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first so everything downstream logs with one.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(bodyLimit(deps.Config.App.MaxUploadSize)))
	e.Use(metrics.MetricsMiddleware())

	// Caller identity is resolved once, before rate limiting, so
	// authenticated callers are limited per user rather than per IP.
	e.Use(deps.AuthMiddleware.Identify())
	e.Use(deps.AuditLogger.Middleware())

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	strictRateLimiter := middleware.NewStrictRateLimiter()

	projectHandler := handler.NewProjectHandler(deps.ProjectService)
	blobHandler := handler.NewBlobHandler(deps.AssetService, deps.Config.App.UploadURLExpiry)
	loginHandler := handler.NewLoginHandler(deps.Config.Identity.LoginURL, deps.Config.Identity.LogoutURL)

	e.POST("/projects", projectHandler.Post, deps.AuthMiddleware.RequireUser())
	e.GET("/projects", projectHandler.Get)

	e.POST("/blobs", blobHandler.Post, deps.AuthMiddleware.RequireUser(), strictRateLimiter.Middleware())
	e.GET("/blobs", blobHandler.Get)

	e.GET("/blob-host", blobHandler.Host)
	e.GET("/blob-upload", blobHandler.UploadTarget, deps.AuthMiddleware.RedirectAnonymous())

	e.GET("/login-status", loginHandler.Status)
	e.GET("/health", healthCheck)
	metrics.RegisterMetricsRoute(e)

	return &Server{
		echo: e,
		deps: deps,
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for the handler tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}

// bodyLimit leaves headroom above the raw upload size for the rest of
// the multipart envelope.
func bodyLimit(maxUploadSize int64) string {
	mb := maxUploadSize/bytesPerMegabyte + 1
	return fmt.Sprintf("%dM", mb)
}
