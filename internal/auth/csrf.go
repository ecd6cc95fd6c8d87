package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names carried by the browser. The CSRF cookie is a session cookie;
// the session cookie expires with the token it holds.
const (
	CSRFCookieName    = "csrf-token"
	SessionCookieName = "token"
)

const csrfTokenBytes = 32

// GenerateCSRFToken returns a hex-encoded random anti-forgery token.
// A failing random source is fatal for the request and surfaces as an error.
func GenerateCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CSRFCookie builds the cookie the token travels back in: http-only,
// same-site lax, whole-site scope, no explicit expiry.
func CSRFCookie(token string, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:        CSRFCookieName,
		Value:       token,
		Path:        "/",
		HTTPOnly:    true,
		Secure:      secure,
		SameSite:    fiber.CookieSameSiteLaxMode,
		SessionOnly: true,
	}
}

// SessionCookie builds the http-only cookie holding the signed session token.
func SessionCookie(token string, ttl time.Duration, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}
