package authinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

var _ auth.AuditService = (*LogxAuditService)(nil)

func (s *LogxAuditService) LogLoginAttempt(_ context.Context, email string, channel string, success bool, ip string, userAgent string) {
	entry := logx.WithFields(logx.Fields{
		"audit_event": "login_attempt",
		"email":       email,
		"channel":     channel,
		"success":     success,
		"ip":          ip,
		"user_agent":  userAgent,
		"timestamp":   time.Now(),
	})
	if success {
		entry.Info("Audit: login attempt")
		return
	}
	entry.Warn("Audit: login attempt")
}

func (s *LogxAuditService) LogAuthorizationCodeIssued(_ context.Context, email string, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "authorization_code_issued",
		"email":       email,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: authorization code issued")
}

func (s *LogxAuditService) LogTokenRefresh(_ context.Context, accountID kernel.AccountID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "token_refresh",
		"account_id":  accountID,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: token refresh")
}

func (s *LogxAuditService) LogLogout(_ context.Context, accountID kernel.AccountID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "logout",
		"account_id":  accountID,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: logout")
}
