package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/blog-service/internal/api/http"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/observability"
)

func newAdminAPIApp(t *testing.T) (*fiber.App, *auth.TokenManager) {
	t.Helper()

	tm := auth.NewTokenManager(testSecret, time.Hour)
	guard := auth.NewRouteGuard(tm, zap.NewNop(), observability.NewMetrics())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Post("/api/posts", guard.RequireAdmin, func(c *fiber.Ctx) error {
		claims, _ := auth.ClaimsFromContext(c)
		return c.SendString("created by " + claims.Username)
	})
	return app, tm
}

func TestRequireAdminRejectsMissingToken(t *testing.T) {
	app, _ := newAdminAPIApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/posts", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestRequireAdminRejectsInvalidToken(t *testing.T) {
	app, _ := newAdminAPIApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "TOKEN_INVALID_OR_EXPIRED", body.Error.Code)
}

func TestRequireAdminAllowsValidToken(t *testing.T) {
	app, tm := newAdminAPIApp(t)

	token, _, err := tm.Sign("admin", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
