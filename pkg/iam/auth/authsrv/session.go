package authsrv

import (
	"context"

	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/logx"
)

// SessionService rotates and revokes refresh tokens.
type SessionService struct {
	minter *auth.Minter
	audit  auth.AuditService
}

func NewSessionService(minter *auth.Minter, audit auth.AuditService) *SessionService {
	return &SessionService{minter: minter, audit: audit}
}

// Refresh exchanges a refresh token for a new pair.
func (s *SessionService) Refresh(ctx context.Context, refreshToken, ip string) (*auth.TokenPair, error) {
	pair, err := s.minter.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	s.audit.LogTokenRefresh(ctx, pair.Claims.AccountID(), ip)
	return pair, nil
}

// Logout revokes the session's refresh token, if any. The session may
// carry only a refresh token when the access token already expired. Store
// failures are logged, not returned.
func (s *SessionService) Logout(ctx context.Context, session *auth.Session, ip string) {
	if session == nil {
		return
	}
	if session.RefreshToken != nil {
		if err := s.minter.Revoke(ctx, *session.RefreshToken); err != nil {
			logx.WithError(err).Warn("failed to revoke refresh token on logout")
		}
	}
	if session.Claims != nil {
		s.audit.LogLogout(ctx, session.Claims.AccountID(), ip)
	}
}
