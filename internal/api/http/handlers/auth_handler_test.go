package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	authService := service.NewAuthService(config.AuthConfig{
		AdminUsername:     "admin",
		AdminPassword:     "s3cret",
		JWTSecret:         testSecret,
		SessionTTLSeconds: 3600,
	})
	handler := handlers.NewAuthHandler(authService, zap.NewNop())

	app := fiber.New()
	app.Get("/api/csrf-token", handler.CSRFToken)
	app.Post("/api/auth", handler.Login)
	return app
}

func issueCSRF(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.CSRFToken)

	cookie := findCookie(t, resp, auth.CSRFCookieName)
	require.Equal(t, body.CSRFToken, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)

	return body.CSRFToken
}

func postLogin(t *testing.T, app *fiber.App, payload map[string]string, csrfCookie string) *http.Response {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if csrfCookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: csrfCookie})
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestLoginSuccess(t *testing.T) {
	app := newAuthApp(t)
	csrf := issueCSRF(t, app)

	resp := postLogin(t, app, map[string]string{
		"username":  "admin",
		"password":  "s3cret",
		"csrfToken": csrf,
	}, csrf)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "Login successful", body.Message)
	require.NotEmpty(t, body.Token)

	cookie := findCookie(t, resp, auth.SessionCookieName)
	require.Equal(t, body.Token, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, 3600, cookie.MaxAge)
	require.Equal(t, "/", cookie.Path)
}

func TestLoginWrongPassword(t *testing.T) {
	app := newAuthApp(t)
	csrf := issueCSRF(t, app)

	resp := postLogin(t, app, map[string]string{
		"username":  "admin",
		"password":  "wrong",
		"csrfToken": csrf,
	}, csrf)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "Invalid credentials", body.Error)
}

func TestLoginGarbageCSRFWithoutIssuance(t *testing.T) {
	app := newAuthApp(t)

	resp := postLogin(t, app, map[string]string{
		"username":  "admin",
		"password":  "s3cret",
		"csrfToken": "garbage",
	}, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "Invalid CSRF token", body.Error)
}

func TestLoginCSRFMismatchBeatsCredentialCheck(t *testing.T) {
	app := newAuthApp(t)
	csrf := issueCSRF(t, app)

	// correct credentials but a submitted token differing from the cookie
	resp := postLogin(t, app, map[string]string{
		"username":  "admin",
		"password":  "s3cret",
		"csrfToken": "other",
	}, csrf)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCSRFTokenReissuedPerRequest(t *testing.T) {
	app := newAuthApp(t)

	first := issueCSRF(t, app)
	second := issueCSRF(t, app)
	require.NotEqual(t, first, second)
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set; got %v", name, resp.Header.Values("Set-Cookie"))
	return nil
}
