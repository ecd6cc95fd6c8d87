package service

import (
	"time"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// AuthService coordinates the CSRF issuance and login flow.
type AuthService struct {
	verifier *auth.CredentialVerifier
	tokenMgr *auth.TokenManager
	cfg      config.AuthConfig
}

// NewAuthService builds the service around the immutable auth configuration.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	tokenMgr := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL())
	return &AuthService{
		verifier: auth.NewCredentialVerifier(cfg, tokenMgr),
		tokenMgr: tokenMgr,
		cfg:      cfg,
	}
}

// IssueCSRFToken generates a fresh anti-forgery token. A random-source
// failure surfaces as UPSTREAM_FAILURE.
func (s *AuthService) IssueCSRFToken() (string, error) {
	token, err := auth.GenerateCSRFToken()
	if err != nil {
		return "", apperrors.NewUpstreamFailure(err)
	}
	return token, nil
}

// Login verifies the CSRF pair and admin credentials and returns a signed
// session token with its expiry.
func (s *AuthService) Login(username, password, submittedCSRF, cookieCSRF string) (string, time.Time, error) {
	return s.verifier.Verify(username, password, submittedCSRF, cookieCSRF)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (s *AuthService) SecureCookies() bool {
	return s.cfg.SecureCookies
}
