package auth

import (
	"context"
	"time"

	"github.com/Abraxas-365/authcore/pkg/kernel"
)

// TokenSigner turns claims into a compact signed string and back.
type TokenSigner interface {
	Encode(claims *Claims) (string, error)
	Decode(token string) (*Claims, error)
}

// RefreshTokenStore records issued refresh tokens.
type RefreshTokenStore interface {
	Save(ctx context.Context, token string, accountID kernel.AccountID, ttl time.Duration) error

	// Consume atomically removes token and returns its owner. A token that
	// is unknown or already consumed yields INVALID_REFRESH_TOKEN.
	Consume(ctx context.Context, token string) (kernel.AccountID, error)

	Delete(ctx context.Context, token string) error
}

// AuditService records security-relevant events.
type AuditService interface {
	LogLoginAttempt(ctx context.Context, email string, channel string, success bool, ip string, userAgent string)
	LogAuthorizationCodeIssued(ctx context.Context, email string, ip string)
	LogTokenRefresh(ctx context.Context, accountID kernel.AccountID, ip string)
	LogLogout(ctx context.Context, accountID kernel.AccountID, ip string)
}
