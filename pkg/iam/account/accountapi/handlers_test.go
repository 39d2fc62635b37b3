package accountapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/database"
	"github.com/Abraxas-365/authcore/pkg/iam/account/accountapi"
	"github.com/Abraxas-365/authcore/pkg/iam/account/accountinfra"
	"github.com/Abraxas-365/authcore/pkg/iam/account/accountsrv"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/password"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *captureMailer) SendTemplatedEmail(_ context.Context, _ string, data any, _ notifx.EmailMessage, _ ...notifx.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, data.(map[string]string)["Link"])
	return nil
}

type fixture struct {
	app    *fiber.App
	repo   *accountinfra.SQLAccountRepository
	signer *auth.JWTService
	mailer *captureMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "accounts.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	f := &fixture{
		repo:   accountinfra.NewSQLAccountRepository(db),
		signer: auth.NewJWTService("secret", "authcore"),
		mailer: &captureMailer{},
	}
	service := accountsrv.NewAccountService(
		f.repo,
		password.NewHasher(password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
		password.DefaultPolicy(),
		f.mailer,
		"https://site.example.com",
	)

	f.app = fiber.New()
	accountapi.NewAccountHandlers(service, auth.NewSessionMiddleware(f.signer), "/_/auth/login/").RegisterRoutes(f.app)
	return f
}

func (f *fixture) token(t *testing.T, admin bool) string {
	t.Helper()
	now := time.Now()
	token, err := f.signer.Encode(&auth.Claims{
		Email:     "admin@example.com",
		Verified:  true,
		Admin:     admin,
		CSRFToken: "csrf",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   kernel.NewAccountID().String(),
			Issuer:    "authcore",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return token
}

func createRequest(token string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/_admin/user", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestCreateRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	body := accountsrv.CreateRequest{Email: "new@example.com", Password: "long-enough", Verified: true}

	resp, err := f.app.Test(createRequest("", body))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	resp, err = f.app.Test(createRequest(f.token(t, false), body))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestCreateVerifiedAccount(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(createRequest(f.token(t, true), accountsrv.CreateRequest{
		Email:    "New@Example.com",
		Password: "long-enough",
		Verified: true,
	}))
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	var out accountapi.CreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.ID.IsEmpty())

	acc, err := f.repo.FindByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, out.ID, acc.ID)
	assert.True(t, acc.Verified)
	assert.Empty(t, f.mailer.links)

	resp, err = f.app.Test(createRequest(f.token(t, true), accountsrv.CreateRequest{
		Email:    "new@example.com",
		Password: "long-enough",
	}))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(createRequest(f.token(t, true), accountsrv.CreateRequest{
		Email:    "new@example.com",
		Password: "short",
	}))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestConfirmEmail(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(createRequest(f.token(t, true), accountsrv.CreateRequest{
		Email:    "pending@example.com",
		Password: "long-enough",
	}))
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)
	require.Len(t, f.mailer.links, 1)

	path := strings.TrimPrefix(f.mailer.links[0], "https://site.example.com")
	resp, err = f.app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	assert.Equal(t, 303, resp.StatusCode)
	assert.Equal(t, "/_/auth/login/", resp.Header.Get("Location"))

	acc, err := f.repo.FindByEmail(context.Background(), "pending@example.com")
	require.NoError(t, err)
	assert.True(t, acc.Verified)

	resp, err = f.app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
