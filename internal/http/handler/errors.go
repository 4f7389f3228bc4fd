package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "annotation-service/pkg/errors"
)

// respondAppError maps a service error onto an HTTP status. Store-level
// failures are logged and masked behind a generic message; everything
// else carries its own user-facing text.
func respondAppError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		c.Logger().Errorf("request failed: %v", err)
		return respondError(c, status, msgInternalError)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return respondError(c, status, appErr.Message)
	}
	return respondError(c, status, err.Error())
}
