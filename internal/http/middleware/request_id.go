package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the request ID on the wire.
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is where handlers find the ID in the echo context.
	RequestIDContextKey = "request_id"
)

// RequestID tags every request with an ID, honoring one supplied by the
// caller and minting one otherwise. The ID is echoed back on the
// response so clients can quote it when reporting a failure.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Set(RequestIDContextKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the request's ID, or "" outside the middleware.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}
