package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "annotation-service/pkg/errors"
)

// CustomHTTPErrorHandler handles errors that escape the handlers, mapping
// the sentinel errors to HTTP status codes and sanitizing internal ones.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			code = http.StatusNotFound
			message = "Resource not found"
		case errors.Is(err, apperrors.ErrUnauthenticated):
			code = http.StatusUnauthorized
			message = "Login required"
		case errors.Is(err, apperrors.ErrPermissionDenied):
			code = http.StatusForbidden
			message = "Permission denied"
		case errors.Is(err, apperrors.ErrInvalidArgument):
			code = http.StatusBadRequest
			message = "Invalid input"
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if code < 500 {
				message = appErr.Message
			}
		}
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = "unknown"
	}

	if code >= 500 {
		c.Logger().Errorf("request failed: request_id=%s status=%d error=%v", requestID, code, err)
		message = "Internal server error"
	} else {
		c.Logger().Warnf("request rejected: request_id=%s status=%d error=%v", requestID, code, err)
	}

	if err := c.JSON(code, map[string]interface{}{
		"error":      message,
		"request_id": requestID,
	}); err != nil {
		c.Logger().Error(err)
	}
}
