package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/observability"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

const claimsKey = "auth_claims"

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/admin/login"

// PathnameHeader carries the resolved path to downstream layout logic on
// public routes.
const PathnameHeader = "x-pathname"

// RouteGuard intercepts every request ahead of its handler and enforces the
// session contract for the admin section. Each request is authorized from
// its cookie alone; there is no server-side session state.
type RouteGuard struct {
	tokens  *TokenManager
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRouteGuard constructs the guard.
func NewRouteGuard(tokens *TokenManager, logger *zap.Logger, metrics *observability.Metrics) *RouteGuard {
	return &RouteGuard{tokens: tokens, logger: logger, metrics: metrics}
}

// Handle classifies the request path and either proceeds or redirects to the
// login page. Terminal outcomes are proceed and redirect; guard failures are
// silent redirects, never error pages.
func (g *RouteGuard) Handle(c *fiber.Ctx) error {
	path := c.Path()

	switch ClassifyPath(path) {
	case RouteClassLogin, RouteClassAPI:
		return c.Next()

	case RouteClassAdmin:
		token := c.Cookies(SessionCookieName)
		if token == "" {
			g.metrics.RecordAuthDenied("missing_token")
			g.logger.Debug("no session token, redirecting to login", zap.String("path", path))
			return c.Redirect(LoginPath, fiber.StatusFound)
		}

		claims := g.tokens.Verify(token)
		if claims == nil {
			g.metrics.RecordAuthDenied("invalid_token")
			g.logger.Debug("invalid session token, redirecting to login", zap.String("path", path))
			return c.Redirect(LoginPath, fiber.StatusFound)
		}

		c.Locals(claimsKey, claims)
		return c.Next()

	default:
		c.Request().Header.Set(PathnameHeader, path)
		return c.Next()
	}
}

// RequireAdmin protects API endpoints that mutate admin-owned data. Unlike
// the page guard it answers with a structured 401 instead of a redirect.
func (g *RouteGuard) RequireAdmin(c *fiber.Ctx) error {
	token := c.Cookies(SessionCookieName)
	if token == "" {
		g.metrics.RecordAuthDenied("missing_token")
		return apperrors.NewUnauthorized("missing session token")
	}

	claims := g.tokens.Verify(token)
	if claims == nil || claims.Role != domain.AdminRole {
		g.metrics.RecordAuthDenied("invalid_token")
		return apperrors.NewTokenInvalid()
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the verified session claims, if any.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
