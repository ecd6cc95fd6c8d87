package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// AuthHandler exposes the CSRF issuance and login endpoints. Both render
// their fixed response shapes directly: auth failures are recovered here,
// never passed to the error envelope middleware.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

// CSRFToken handles GET /api/csrf-token.
func (h *AuthHandler) CSRFToken(c *fiber.Ctx) error {
	token, err := h.auth.IssueCSRFToken()
	if err != nil {
		h.logger.Error("csrf token generation failed", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate CSRF token",
		})
	}

	c.Cookie(auth.CSRFCookie(token, h.auth.SecureCookies()))
	return c.JSON(dto.CSRFTokenResponse{CSRFToken: token})
}

// Login handles POST /api/auth.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(dto.LoginFailureResponse{
			Success: false,
			Error:   "invalid payload",
		})
	}

	cookieCSRF := c.Cookies(auth.CSRFCookieName)
	token, _, err := h.auth.Login(req.Username, req.Password, req.CSRFToken, cookieCSRF)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		message := domainErr.Message
		if domainErr.HTTPStatus >= http.StatusInternalServerError {
			h.logger.Error("login failed upstream", zap.Error(err))
			message = "Server error"
		} else {
			h.logger.Info("login rejected",
				zap.String("code", domainErr.Code),
				zap.String("username", req.Username))
		}
		return c.Status(domainErr.HTTPStatus).JSON(dto.LoginFailureResponse{
			Success: false,
			Error:   message,
		})
	}

	c.Cookie(auth.SessionCookie(token, h.auth.TokenManager().TTL(), h.auth.SecureCookies()))
	h.logger.Info("login successful", zap.String("username", req.Username))
	return c.JSON(dto.LoginSuccessResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
	})
}
