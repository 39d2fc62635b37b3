package authsrv_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authsrv"
	"github.com/Abraxas-365/authcore/pkg/iam/redirect"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formLogin(email, pw string) authsrv.LoginInput {
	return authsrv.LoginInput{
		Channel: authsrv.ChannelForm,
		Request: authsrv.LoginRequest{Email: email, Password: pw},
	}
}

func TestStructuredLoginReturnsBoundTokens(t *testing.T) {
	e := newEnv(t)
	acc := e.seed(t, "user@example.com", "correct", true)

	out, err := e.login.Login(context.Background(), authsrv.LoginInput{
		Channel: authsrv.ChannelStructured,
		Request: authsrv.LoginRequest{Email: "user@example.com", Password: "correct"},
	})
	require.NoError(t, err)
	require.Equal(t, authsrv.OutcomeJSON, out.Kind)
	require.NotNil(t, out.Tokens)

	assert.NotEmpty(t, out.Tokens.AuthToken)
	assert.NotEmpty(t, out.Tokens.RefreshToken)
	assert.NotEmpty(t, out.Tokens.CSRFToken)

	claims, err := e.signer.Decode(out.Tokens.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, out.Tokens.CSRFToken, claims.CSRFToken)
	assert.Equal(t, acc.ID, claims.AccountID())
	assert.True(t, claims.Verified)
}

func TestStructuredLoginIgnoresCodeResponseType(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	out, err := e.login.Login(context.Background(), authsrv.LoginInput{
		Channel: authsrv.ChannelStructured,
		Request: authsrv.LoginRequest{
			Email:        "user@example.com",
			Password:     "correct",
			ResponseType: ptrx.String("code"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, authsrv.OutcomeJSON, out.Kind)
}

func TestStructuredLoginFailureIsRawError(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	out, err := e.login.Login(context.Background(), authsrv.LoginInput{
		Channel: authsrv.ChannelStructured,
		Request: authsrv.LoginRequest{Email: "user@example.com", Password: "wrong"},
	})
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Equal(t, 401, errx.From(err).HTTPStatus)
}

func TestCodeFlowRedirectCarriesPersistedCode(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	in := formLogin("user@example.com", "correct")
	in.Request.ResponseType = ptrx.String("code")
	in.Request.RedirectTo = ptrx.String("https://app.example.com/cb")
	in.Request.PKCECodeChallenge = ptrx.String("abc")

	out, err := e.login.Login(ctx, in)
	require.NoError(t, err)
	require.Equal(t, authsrv.OutcomeCodeRedirect, out.Kind)
	assert.True(t, strings.HasPrefix(out.Location, "https://app.example.com/cb?code="), out.Location)

	u, err := url.Parse(out.Location)
	require.NoError(t, err)
	code := u.Query().Get("code")
	assert.Len(t, code, 30)

	acc, err := e.repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, code, ptrx.StringValue(acc.AuthorizationCode))
	assert.Equal(t, "abc", ptrx.StringValue(acc.PKCECodeChallenge))
	assert.NotNil(t, acc.AuthorizationCodeIssuedAt)
}

func TestCodeFlowKeepsExistingQuery(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	in := formLogin("user@example.com", "correct")
	in.Channel = authsrv.ChannelMultipart
	in.Request.ResponseType = ptrx.String("code")
	in.QueryRedirect = ptrx.String("https://app.example.com/cb?state=xyz")

	out, err := e.login.Login(context.Background(), in)
	require.NoError(t, err)

	u, err := url.Parse(out.Location)
	require.NoError(t, err)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.NotEmpty(t, u.Query().Get("code"))
}

func TestCodeFlowWithoutRedirect(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	in := formLogin("user@example.com", "correct")
	in.Request.ResponseType = ptrx.String("code")

	out, err := e.login.Login(ctx, in)
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, auth.CodeMissingRedirect))
	assert.Equal(t, 400, errx.From(err).HTTPStatus)
	assert.Equal(t, "missing redirect target", errx.From(err).Message)

	acc, err := e.repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Nil(t, acc.AuthorizationCode)
}

func TestCodeFlowWrongPasswordWithoutRedirectAlerts(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	for _, channel := range []authsrv.Channel{authsrv.ChannelForm, authsrv.ChannelMultipart} {
		in := formLogin("user@example.com", "wrong")
		in.Channel = channel
		in.Request.ResponseType = ptrx.String("code")

		out, err := e.login.Login(context.Background(), in)
		require.NoError(t, err, channel.String())
		require.Equal(t, authsrv.OutcomeErrorRedirect, out.Kind, channel.String())
		assert.Contains(t, out.Location, "401%20Unauthorized", channel.String())
	}
}

func TestCodeFlowServerErrorIsRaw(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	login := authsrv.NewLoginService(
		e.verifier,
		authsrv.NewCodeIssuer(rowsRepo{rows: 2}, 30),
		e.minter,
		redirect.NewValidator("https://site.example.com", nil, false),
		e.audit,
		authsrv.LoginConfig{AccessTokenTTL: time.Hour, LoginPage: "/_/auth/login/", ProfilePage: "/_/auth/profile"},
	)

	for _, channel := range []authsrv.Channel{authsrv.ChannelForm, authsrv.ChannelMultipart} {
		in := formLogin("user@example.com", "correct")
		in.Channel = channel
		in.Request.ResponseType = ptrx.String("code")
		in.Request.RedirectTo = ptrx.String("/cb")

		out, err := login.Login(context.Background(), in)
		assert.Nil(t, out, channel.String())
		require.Error(t, err, channel.String())
		assert.True(t, errx.HasCode(err, auth.CodeCodeBindingInvariant), channel.String())
		assert.Equal(t, 500, errx.From(err).HTTPStatus, channel.String())
	}
}

func TestFormWrongPasswordRedirectsWithAlert(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	out, err := e.login.Login(context.Background(), formLogin("user@example.com", "wrong"))
	require.NoError(t, err)
	require.Equal(t, authsrv.OutcomeErrorRedirect, out.Kind)
	assert.Nil(t, out.Tokens)

	assert.True(t, strings.HasPrefix(out.Location, "/_/auth/login/?alert="), out.Location)
	assert.Contains(t, out.Location, "Login%20Failed%20%5B401%20Unauthorized%5D%3A%20Unauthorized")

	u, err := url.Parse(out.Location)
	require.NoError(t, err)
	assert.Equal(t, "Login Failed [401 Unauthorized]: Unauthorized", u.Query().Get("alert"))
}

func TestInvalidRedirectIsRawOnEveryChannel(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	for _, ch := range []authsrv.Channel{authsrv.ChannelStructured, authsrv.ChannelForm, authsrv.ChannelMultipart} {
		in := formLogin("user@example.com", "correct")
		in.Channel = ch
		in.QueryRedirect = ptrx.String("/fine")
		in.Request.RedirectTo = ptrx.String("https://evil.com/")

		out, err := e.login.Login(context.Background(), in)
		assert.Nil(t, out, ch.String())
		assert.True(t, errx.HasCode(err, redirect.CodeInvalidTarget), ch.String())
	}
}

func TestCookieFlowTargets(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	out, err := e.login.Login(context.Background(), formLogin("user@example.com", "correct"))
	require.NoError(t, err)
	assert.Equal(t, authsrv.OutcomeCookieRedirect, out.Kind)
	assert.Equal(t, "/_/auth/profile", out.Location)
	require.NotNil(t, out.Tokens)
	assert.Equal(t, out.Tokens.CSRFToken, out.Tokens.Claims.CSRFToken)

	in := formLogin("user@example.com", "correct")
	in.Request.RedirectTo = ptrx.String("/dashboard")
	out, err = e.login.Login(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", out.Location)
}

func TestConcurrentCodeFlowLastWriterWins(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes []string
		errs  []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := formLogin("user@example.com", "correct")
			in.Request.ResponseType = ptrx.String("code")
			in.Request.RedirectTo = ptrx.String("https://app.example.com/cb")

			out, err := e.login.Login(ctx, in)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			u, perr := url.Parse(out.Location)
			if perr != nil {
				errs = append(errs, perr)
				return
			}
			codes = append(codes, u.Query().Get("code"))
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, codes, 2)
	assert.NotEqual(t, codes[0], codes[1])

	acc, err := e.repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Contains(t, codes, ptrx.StringValue(acc.AuthorizationCode))
}

func TestLoginAuditsAttempts(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "user@example.com", "correct", true)

	_, _ = e.login.Login(context.Background(), formLogin("user@example.com", "wrong"))
	_, _ = e.login.Login(context.Background(), formLogin("user@example.com", "correct"))

	require.Len(t, e.audit.events, 2)
	assert.False(t, e.audit.events[0].success)
	assert.True(t, e.audit.events[1].success)
}
