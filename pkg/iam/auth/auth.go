package auth

import (
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// ============================================================================
// Token Types
// ============================================================================

// Claims are the access-token claims. The subject is the account id.
type Claims struct {
	Email     string `json:"email"`
	Verified  bool   `json:"verified"`
	Admin     bool   `json:"admin"`
	CSRFToken string `json:"csrf_token"`
	jwt.RegisteredClaims
}

// AccountID returns the subject as an account id.
func (c *Claims) AccountID() kernel.AccountID {
	return kernel.AccountID(c.Subject)
}

// TokenPair is the result of a mint. CSRFToken always equals
// Claims.CSRFToken.
type TokenPair struct {
	Claims       *Claims
	AuthToken    string
	RefreshToken string
	CSRFToken    string
}

// Session is what a request presents: decoded access claims and, when sent,
// the refresh token.
type Session struct {
	Claims       *Claims
	AuthToken    string
	RefreshToken *string

	// FromCookie is set when the access token came from the auth_token cookie.
	FromCookie bool
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeUnauthorized         = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, 0, "Unauthorized")
	CodeForbidden            = ErrRegistry.Register("FORBIDDEN", errx.TypeForbidden, 0, "Forbidden")
	CodeInvalidToken         = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, 0, "Invalid or expired token")
	CodeInvalidRefreshToken  = ErrRegistry.Register("INVALID_REFRESH_TOKEN", errx.TypeAuthorization, 0, "Invalid refresh token")
	CodeCSRFMismatch         = ErrRegistry.Register("CSRF_MISMATCH", errx.TypeForbidden, 0, "CSRF token mismatch")
	CodeMissingRedirect      = ErrRegistry.Register("MISSING_REDIRECT", errx.TypeValidation, 0, "missing redirect target")
	CodeInvalidUser          = ErrRegistry.Register("INVALID_USER", errx.TypeValidation, 0, "invalid user")
	CodeCodeBindingInvariant = ErrRegistry.Register("CODE_BINDING_INVARIANT", errx.TypeInvariant, 0, "authorization code bound to more than one account")
	CodeSigningKeyMissing    = ErrRegistry.Register("SIGNING_KEY_UNAVAILABLE", errx.TypeInternal, 0, "signing key unavailable")
	CodeSigningFailed        = ErrRegistry.Register("SIGNING_FAILED", errx.TypeInternal, 0, "failed to sign token")
	CodeTokenGeneration      = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, 0, "failed to generate token")
	CodeUnsupportedChannel   = ErrRegistry.Register("UNSUPPORTED_CONTENT_TYPE", errx.TypeUnsupportedMediaType, 0, "unsupported content type")
	CodeMalformedRequest     = ErrRegistry.Register("MALFORMED_REQUEST", errx.TypeValidation, 0, "malformed request body")
)

// ErrUnauthorized is returned for every credential failure so callers cannot
// tell a missing account from a wrong password or an unverified account.
func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

func ErrForbidden() *errx.Error {
	return ErrRegistry.New(CodeForbidden)
}

func ErrInvalidRefreshToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidRefreshToken)
}

func ErrMissingRedirect() *errx.Error {
	return ErrRegistry.New(CodeMissingRedirect)
}
