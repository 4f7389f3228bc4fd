package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "annotation-service/pkg/errors"
)

type Middleware struct {
	jwtService *JWTService
	loginURL   string
}

func NewMiddleware(jwtService *JWTService, loginURL string) *Middleware {
	return &Middleware{jwtService: jwtService, loginURL: loginURL}
}

// Identify resolves the caller's email from a bearer token or the
// session cookie when one is present. It never rejects; endpoints that
// work for anonymous callers (public projects, login status) run behind
// this alone.
func (m *Middleware) Identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token != "" {
				if claims, err := m.jwtService.Verify(token); err == nil {
					c.Set(ContextKeyUserEmail, strings.ToLower(claims.Email))
				}
			}
			return next(c)
		}
	}
}

// RequireUser rejects anonymous callers with 401. Runs after Identify.
func (m *Middleware) RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := GetUserEmail(c); err != nil {
				return respondError(c, http.StatusUnauthorized, msgMissingAuthorization)
			}
			return next(c)
		}
	}
}

// RedirectAnonymous sends anonymous browser callers to the identity
// provider's login page instead of a bare 401.
func (m *Middleware) RedirectAnonymous() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := GetUserEmail(c); err != nil {
				return c.Redirect(http.StatusFound, m.loginURL)
			}
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if token := extractBearerToken(c); token != "" {
		return token
	}
	if cookie, err := c.Cookie(cookieSessionToken); err == nil {
		return cookie.Value
	}
	return ""
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

// GetUserEmail returns the authenticated caller's email from the request
// context.
func GetUserEmail(c echo.Context) (string, error) {
	email := c.Get(ContextKeyUserEmail)
	if email == nil {
		return "", apperrors.Unauthenticated(msgUserNotAuthenticated)
	}

	s, ok := email.(string)
	if !ok || s == "" {
		return "", apperrors.Unauthenticated(msgInvalidUserEmailCtx)
	}

	return s, nil
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}
