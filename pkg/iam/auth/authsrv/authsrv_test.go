package authsrv_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/database"
	"github.com/Abraxas-365/authcore/pkg/iam/account"
	"github.com/Abraxas-365/authcore/pkg/iam/account/accountinfra"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authsrv"
	"github.com/Abraxas-365/authcore/pkg/iam/password"
	"github.com/Abraxas-365/authcore/pkg/iam/redirect"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var fastParams = password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type auditEvent struct {
	kind    string
	success bool
}

type recordingAudit struct {
	mu     sync.Mutex
	events []auditEvent
}

func (a *recordingAudit) add(kind string, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, auditEvent{kind: kind, success: success})
}

func (a *recordingAudit) LogLoginAttempt(_ context.Context, _ string, _ string, success bool, _ string, _ string) {
	a.add("login_attempt", success)
}

func (a *recordingAudit) LogAuthorizationCodeIssued(context.Context, string, string) {
	a.add("authorization_code_issued", true)
}

func (a *recordingAudit) LogTokenRefresh(context.Context, kernel.AccountID, string) {
	a.add("token_refresh", true)
}

func (a *recordingAudit) LogLogout(context.Context, kernel.AccountID, string) {
	a.add("logout", true)
}

type env struct {
	repo     *accountinfra.SQLAccountRepository
	hasher   *password.Hasher
	signer   *auth.JWTService
	minter   *auth.Minter
	verifier *authsrv.Verifier
	issuer   *authsrv.CodeIssuer
	login    *authsrv.LoginService
	sessions *authsrv.SessionService
	audit    *recordingAudit
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "auth.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	e := &env{
		repo:   accountinfra.NewSQLAccountRepository(db),
		hasher: password.NewHasher(fastParams),
		signer: auth.NewJWTService("secret", "authcore"),
		audit:  &recordingAudit{},
	}
	e.minter = auth.NewMinter(e.signer, authinfra.NewRedisRefreshStore(client), e.repo, auth.MinterConfig{
		Issuer:             "authcore",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
		RefreshTokenLength: 32,
		CSRFTokenLength:    20,
	})
	e.verifier, err = authsrv.NewVerifier(e.repo, e.hasher)
	require.NoError(t, err)
	e.issuer = authsrv.NewCodeIssuer(e.repo, 30)
	e.login = authsrv.NewLoginService(
		e.verifier,
		e.issuer,
		e.minter,
		redirect.NewValidator("https://site.example.com", []string{"https://app.example.com"}, false),
		e.audit,
		authsrv.LoginConfig{
			AccessTokenTTL: time.Hour,
			LoginPage:      "/_/auth/login/",
			ProfilePage:    "/_/auth/profile",
		},
	)
	e.sessions = authsrv.NewSessionService(e.minter, e.audit)
	return e
}

func (e *env) seed(t *testing.T, email, pw string, verified bool) account.Account {
	t.Helper()
	hash, err := e.hasher.Hash(pw)
	require.NoError(t, err)
	acc := account.Account{
		ID:           kernel.NewAccountID(),
		Email:        email,
		PasswordHash: hash,
		Verified:     verified,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.repo.Create(context.Background(), acc))
	return acc
}
