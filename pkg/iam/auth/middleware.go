package auth

import (
	"strings"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

const (
	HeaderRefreshToken = "Refresh-Token"
	HeaderCSRFToken    = "CSRF-Token"
)

// SessionMiddleware extracts sessions from cookies or headers.
type SessionMiddleware struct {
	signer TokenSigner
}

func NewSessionMiddleware(signer TokenSigner) *SessionMiddleware {
	return &SessionMiddleware{signer: signer}
}

// Optional attaches a session when the request carries a valid access
// token. Missing or invalid tokens leave the request anonymous.
func (m *SessionMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if session := m.extract(c); session != nil {
			c.Locals(kernel.SessionKey, session)
		}
		return c.Next()
	}
}

// RequireSession rejects anonymous requests. Cookie sessions on unsafe
// methods must echo the CSRF token in the CSRF-Token header.
func (m *SessionMiddleware) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := m.authorize(c)
		if err != nil {
			return errx.Respond(c, err)
		}
		c.Locals(kernel.SessionKey, session)
		return c.Next()
	}
}

// RequireAdmin is RequireSession plus the admin claim.
func (m *SessionMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := m.authorize(c)
		if err != nil {
			return errx.Respond(c, err)
		}
		if !session.Claims.Admin {
			return errx.Respond(c, ErrForbidden())
		}
		c.Locals(kernel.SessionKey, session)
		return c.Next()
	}
}

func (m *SessionMiddleware) authorize(c *fiber.Ctx) (*Session, error) {
	session := m.extract(c)
	if session == nil {
		return nil, ErrUnauthorized()
	}
	if session.FromCookie && !isSafeMethod(c.Method()) && c.Get(HeaderCSRFToken) != session.Claims.CSRFToken {
		return nil, ErrRegistry.New(CodeCSRFMismatch)
	}
	return session, nil
}

// SessionFrom returns the session attached by the middleware, or nil.
func SessionFrom(c *fiber.Ctx) *Session {
	session, _ := c.Locals(kernel.SessionKey).(*Session)
	return session
}

func (m *SessionMiddleware) extract(c *fiber.Ctx) *Session {
	token, fromCookie := bearerToken(c), false
	if token == "" {
		token, fromCookie = c.Cookies(CookieAuthToken), true
	}
	if token == "" {
		return nil
	}

	claims, err := m.signer.Decode(token)
	if err != nil {
		return nil
	}

	session := &Session{Claims: claims, AuthToken: token, FromCookie: fromCookie}
	refresh := c.Get(HeaderRefreshToken)
	if fromCookie {
		refresh = c.Cookies(CookieRefreshToken)
	}
	if refresh != "" {
		session.RefreshToken = &refresh
	}
	return session
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func isSafeMethod(method string) bool {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	}
	return false
}
