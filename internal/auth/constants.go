package auth

const (
	ContextKeyUserEmail = "user_email"

	jsonKeyError = "error"

	headerAuthorization = "Authorization"
	cookieSessionToken  = "session_token"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgMissingAuthorization    = "missing authorization token"
	msgInvalidOrExpiredToken   = "invalid or expired token"
	msgUserNotAuthenticated    = "user not authenticated"
	msgInvalidUserEmailCtx     = "invalid user email in context"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgMissingEmailClaim       = "token carries no email claim"
)
