package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"lead-tracking-service/internal/identity"
)

// clientCookieMaxAge matches the lifetime of the Google Analytics _ga cookie.
const clientCookieMaxAge = 2 * 365 * 24 * time.Hour

// CookieConfig controls the identity cookies written on responses.
type CookieConfig struct {
	Secure bool
	// SessionTTL is the inactivity timeout of the session cookie. Every request
	// that reads the session pushes the expiry forward. Zero keeps it a
	// browser-session cookie.
	SessionTTL time.Duration
}

// cookieStore is an identity.Store over the request cookies. Writes are
// cached so that later reads in the same request see them.
type cookieStore struct {
	c      *fiber.Ctx
	cfg    CookieConfig
	values map[string]string
}

func newCookieStore(c *fiber.Ctx, cfg CookieConfig) *cookieStore {
	return &cookieStore{c: c, cfg: cfg, values: map[string]string{}}
}

func (s *cookieStore) Get(key string) (string, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	v := s.c.Cookies(key)
	if v == "" {
		return "", false
	}
	if key == identity.SessionIDKey && s.cfg.SessionTTL > 0 {
		s.Set(key, v, identity.Session)
	}
	return v, true
}

func (s *cookieStore) Set(key, value string, scope identity.Scope) {
	s.values[key] = value
	cookie := &fiber.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	switch {
	case scope == identity.Persistent:
		cookie.Expires = time.Now().Add(clientCookieMaxAge)
	case s.cfg.SessionTTL > 0:
		cookie.Expires = time.Now().Add(s.cfg.SessionTTL)
	default:
		cookie.SessionOnly = true
	}
	s.c.Cookie(cookie)
}
