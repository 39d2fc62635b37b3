package authsrv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/redirect"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
)

// Channel is the client protocol a login arrived on. It fixes the shape
// of the response.
type Channel int

const (
	ChannelStructured Channel = iota
	ChannelForm
	ChannelMultipart
)

func (c Channel) String() string {
	switch c {
	case ChannelStructured:
		return "structured"
	case ChannelForm:
		return "form"
	case ChannelMultipart:
		return "multipart"
	default:
		return "unknown"
	}
}

// Redirects reports whether the channel answers with redirects.
func (c Channel) Redirects() bool {
	return c != ChannelStructured
}

const responseTypeCode = "code"

// LoginRequest is one decoded login attempt.
type LoginRequest struct {
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	RedirectTo        *string `json:"redirect_to,omitempty"`
	ResponseType      *string `json:"response_type,omitempty"`
	PKCECodeChallenge *string `json:"pkce_code_challenge,omitempty"`
}

// LoginInput is a LoginRequest plus what the transport knows about it.
type LoginInput struct {
	Channel       Channel
	Request       LoginRequest
	QueryRedirect *string
	IP            string
	UserAgent     string
}

// OutcomeKind tags the successful shapes a login can resolve to.
type OutcomeKind int

const (
	OutcomeJSON OutcomeKind = iota
	OutcomeCodeRedirect
	OutcomeCookieRedirect
	OutcomeErrorRedirect
)

// Outcome is how the transport must answer. Tokens is set for OutcomeJSON
// and OutcomeCookieRedirect; Location for every redirect kind.
type Outcome struct {
	Kind     OutcomeKind
	Tokens   *auth.TokenPair
	Location string
}

// LoginConfig holds the pages and TTL the orchestrator needs.
type LoginConfig struct {
	AccessTokenTTL time.Duration
	LoginPage      string
	ProfilePage    string
	// ServesPublicDir sends cookie logins without a target to "/"
	ServesPublicDir bool
}

// LoginService resolves a login attempt into an Outcome.
type LoginService struct {
	verifier  *Verifier
	issuer    *CodeIssuer
	minter    *auth.Minter
	redirects *redirect.Validator
	audit     auth.AuditService
	cfg       LoginConfig
}

func NewLoginService(verifier *Verifier, issuer *CodeIssuer, minter *auth.Minter, redirects *redirect.Validator, audit auth.AuditService, cfg LoginConfig) *LoginService {
	return &LoginService{
		verifier:  verifier,
		issuer:    issuer,
		minter:    minter,
		redirects: redirects,
		audit:     audit,
		cfg:       cfg,
	}
}

// Login runs one attempt. A returned error must be written as-is by the
// transport; every other result is described by the Outcome.
func (s *LoginService) Login(ctx context.Context, in LoginInput) (*Outcome, error) {
	target, err := s.redirects.Validate(ptrx.NonEmpty(in.QueryRedirect), ptrx.NonEmpty(in.Request.RedirectTo))
	if err != nil {
		return nil, err
	}

	codeFlow := in.Channel.Redirects() && ptrx.StringValue(in.Request.ResponseType) == responseTypeCode

	outcome, err := s.login(ctx, in, target, codeFlow)
	if err == nil {
		return outcome, nil
	}

	// a code flow with nowhere to send the code has no alert target either
	if errx.HasCode(err, auth.CodeMissingRedirect) {
		return nil, err
	}

	status := errx.From(err).HTTPStatus
	if in.Channel.Redirects() && errx.IsClientError(status) {
		return &Outcome{Kind: OutcomeErrorRedirect, Location: s.alertLocation(err)}, nil
	}
	return nil, err
}

func (s *LoginService) login(ctx context.Context, in LoginInput, target *string, codeFlow bool) (*Outcome, error) {
	acc, err := s.verifier.Verify(ctx, in.Request.Email, in.Request.Password)
	s.audit.LogLoginAttempt(ctx, in.Request.Email, in.Channel.String(), err == nil, in.IP, in.UserAgent)
	if err != nil {
		return nil, err
	}

	if codeFlow {
		if target == nil {
			return nil, auth.ErrMissingRedirect()
		}
		code, err := s.issuer.Issue(ctx, acc.Email, ptrx.NonEmpty(in.Request.PKCECodeChallenge))
		if err != nil {
			return nil, err
		}
		s.audit.LogAuthorizationCodeIssued(ctx, acc.Email, in.IP)

		location, err := withQueryParam(*target, "code", code)
		if err != nil {
			return nil, err
		}
		return &Outcome{Kind: OutcomeCodeRedirect, Location: location}, nil
	}

	pair, err := s.minter.Mint(ctx, acc, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	if !in.Channel.Redirects() {
		return &Outcome{Kind: OutcomeJSON, Tokens: pair}, nil
	}

	location := s.cfg.ProfilePage
	switch {
	case target != nil:
		location = *target
	case s.cfg.ServesPublicDir:
		location = "/"
	}
	return &Outcome{Kind: OutcomeCookieRedirect, Tokens: pair, Location: location}, nil
}

// alertLocation renders "Login Failed [401 Unauthorized]: <message>" into
// the login page's alert parameter.
func (s *LoginService) alertLocation(err error) string {
	e := errx.From(err)
	msg := fmt.Sprintf("Login Failed [%d %s]: %s", e.HTTPStatus, http.StatusText(e.HTTPStatus), e.Message)

	sep := "?"
	if strings.Contains(s.cfg.LoginPage, "?") {
		sep = "&"
	}
	return s.cfg.LoginPage + sep + "alert=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

func withQueryParam(target, key, value string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", errx.Wrap(err, "failed to parse redirect target", errx.TypeValidation)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
