package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	CookieAuthToken    = "auth_token"
	CookieRefreshToken = "refresh_token"
)

// CookieConfig controls the session cookie pair.
type CookieConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Secure is false only in dev mode
	Secure bool
}

// SetSessionCookies writes both session cookies for pair.
func SetSessionCookies(c *fiber.Ctx, pair *TokenPair, cfg CookieConfig) {
	c.Cookie(sessionCookie(CookieAuthToken, pair.AuthToken, cfg.AccessTTL, cfg.Secure))
	c.Cookie(sessionCookie(CookieRefreshToken, pair.RefreshToken, cfg.RefreshTTL, cfg.Secure))
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(c *fiber.Ctx, cfg CookieConfig) {
	for _, name := range []string{CookieAuthToken, CookieRefreshToken} {
		cookie := sessionCookie(name, "", 0, cfg.Secure)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		c.Cookie(cookie)
	}
}

func sessionCookie(name, value string, ttl time.Duration, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
