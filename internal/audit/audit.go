// Package audit records mutating requests in the database for later
// review. Auditing is best-effort: a failed insert never fails the
// request it describes.
package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"annotation-service/internal/auth"
)

const (
	insertTimeout = 500 * time.Millisecond

	insertEventQuery = `
		INSERT INTO audit_events (actor, method, path, status, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

type Logger struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

func NewLogger(pool *pgxpool.Pool, log *logrus.Logger) *Logger {
	return &Logger{pool: pool, log: log}
}

// Middleware records every non-GET request after it completes. A nil
// receiver yields a pass-through, so tests can wire no auditing at all.
func (l *Logger) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if l == nil || c.Request().Method == http.MethodGet {
				return err
			}

			actor, _ := auth.GetUserEmail(c)
			l.record(
				actor,
				c.Request().Method,
				c.Request().URL.Path,
				c.Response().Status,
				c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return err
		}
	}
}

func (l *Logger) record(actor, method, path string, status int, requestID string) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	_, err := l.pool.Exec(ctx, insertEventQuery,
		actor, method, path, status, requestID, time.Now().UTC())
	if err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Warn("failed to record audit event")
	}
}
