package authapi

import (
	"encoding/json"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authsrv"
	"github.com/Abraxas-365/authcore/pkg/iam/redirect"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// TokenResponse is the body of a successful structured login or refresh.
type TokenResponse struct {
	AuthToken    string `json:"auth_token"`
	RefreshToken string `json:"refresh_token"`
	CSRFToken    string `json:"csrf_token"`
}

func tokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AuthToken:    pair.AuthToken,
		RefreshToken: pair.RefreshToken,
		CSRFToken:    pair.CSRFToken,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthHandlers serves the /api/auth/v1 endpoints.
type AuthHandlers struct {
	login     *authsrv.LoginService
	status    *authsrv.StatusService
	sessions  *authsrv.SessionService
	redirects *redirect.Validator
	mw        *auth.SessionMiddleware
	cookies   auth.CookieConfig
}

func NewAuthHandlers(
	login *authsrv.LoginService,
	status *authsrv.StatusService,
	sessions *authsrv.SessionService,
	redirects *redirect.Validator,
	mw *auth.SessionMiddleware,
	cookies auth.CookieConfig,
) *AuthHandlers {
	return &AuthHandlers{
		login:     login,
		status:    status,
		sessions:  sessions,
		redirects: redirects,
		mw:        mw,
		cookies:   cookies,
	}
}

func (h *AuthHandlers) RegisterRoutes(router fiber.Router) {
	g := router.Group("/api/auth/v1")
	g.Post("/login", h.Login)
	g.Get("/status", h.mw.Optional(), h.Status)
	g.Post("/refresh", h.Refresh)
	g.Get("/logout", h.mw.Optional(), h.Logout)
	g.Post("/logout", h.mw.Optional(), h.Logout)
}

// Login handles JSON, urlencoded and multipart logins.
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	channel, err := detectChannel(c.Get(fiber.HeaderContentType))
	if err != nil {
		return respondError(c, err)
	}

	req, err := decodeLogin(c, channel)
	if err != nil {
		return respondError(c, err)
	}

	out, err := h.login.Login(c.UserContext(), authsrv.LoginInput{
		Channel:       channel,
		Request:       req,
		QueryRedirect: queryParam(c, "redirect_to"),
		IP:            c.IP(),
		UserAgent:     c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return respondError(c, err)
	}

	switch out.Kind {
	case authsrv.OutcomeJSON:
		return c.JSON(tokenResponse(out.Tokens))
	case authsrv.OutcomeCookieRedirect:
		auth.SetSessionCookies(c, out.Tokens, h.cookies)
		return c.Redirect(out.Location, fiber.StatusSeeOther)
	default:
		return c.Redirect(out.Location, fiber.StatusSeeOther)
	}
}

// Status echoes the caller's session, or nulls without one.
func (h *AuthHandlers) Status(c *fiber.Ctx) error {
	view, err := h.status.Status(auth.SessionFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// Refresh rotates the refresh token from the JSON body or the cookie.
// Cookie callers get fresh cookies as well as the body.
func (h *AuthHandlers) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return respondError(c, auth.ErrRegistry.NewWithCause(auth.CodeMalformedRequest, err))
		}
	}

	fromCookie := false
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies(auth.CookieRefreshToken)
		fromCookie = req.RefreshToken != ""
	}

	pair, err := h.sessions.Refresh(c.UserContext(), req.RefreshToken, c.IP())
	if err != nil {
		return respondError(c, err)
	}

	if fromCookie {
		auth.SetSessionCookies(c, pair, h.cookies)
	}
	return c.JSON(tokenResponse(pair))
}

// Logout revokes the refresh token and clears cookies. With a redirect_to
// query parameter the client is sent there.
func (h *AuthHandlers) Logout(c *fiber.Ctx) error {
	target, err := h.redirects.Validate(queryParam(c, "redirect_to"))
	if err != nil {
		return respondError(c, err)
	}

	session := auth.SessionFrom(c)
	if session == nil {
		if rt := c.Cookies(auth.CookieRefreshToken); rt != "" {
			session = &auth.Session{RefreshToken: &rt}
		}
	}
	h.sessions.Logout(c.UserContext(), session, c.IP())
	auth.ClearSessionCookies(c, h.cookies)

	if target != nil {
		return c.Redirect(*target, fiber.StatusSeeOther)
	}
	return c.SendStatus(fiber.StatusOK)
}

func respondError(c *fiber.Ctx, err error) error {
	e := errx.From(err)
	if !errx.IsClientError(e.HTTPStatus) {
		logx.WithFields(logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"request_id": c.Get(fiber.HeaderXRequestID),
		}).WithError(err).Error("auth request failed")
	}
	return errx.Respond(c, e)
}
