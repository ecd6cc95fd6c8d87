package auth

import (
	"crypto/subtle"
	"time"

	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// CredentialVerifier checks a login submission against the configured admin
// identity and, on success, issues a signed session token. The CSRF check
// runs first: a forged form never reaches the credential comparison.
type CredentialVerifier struct {
	cfg    config.AuthConfig
	tokens *TokenManager
}

// NewCredentialVerifier builds a verifier around immutable process config.
func NewCredentialVerifier(cfg config.AuthConfig, tokens *TokenManager) *CredentialVerifier {
	return &CredentialVerifier{cfg: cfg, tokens: tokens}
}

// Verify validates the CSRF token pair and credentials, returning the signed
// session token and its expiry. Rejections carry CSRF_MISMATCH or
// INVALID_CREDENTIALS codes; signing failures map to UPSTREAM_FAILURE.
func (v *CredentialVerifier) Verify(username, password, submittedCSRF, cookieCSRF string) (string, time.Time, error) {
	if cookieCSRF == "" || subtle.ConstantTimeCompare([]byte(submittedCSRF), []byte(cookieCSRF)) != 1 {
		return "", time.Time{}, apperrors.NewCSRFMismatch()
	}

	if !v.credentialsMatch(username, password) {
		return "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	token, expiresAt, err := v.tokens.Sign(username, domain.AdminRole)
	if err != nil {
		return "", time.Time{}, apperrors.NewUpstreamFailure(err)
	}
	return token, expiresAt, nil
}

// credentialsMatch compares in constant time so a wrong username costs the
// same as a wrong password. Both comparisons always run.
func (v *CredentialVerifier) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.cfg.AdminUsername)) == 1

	var passOK bool
	if v.cfg.AdminPasswordHash != "" {
		passOK = ComparePassword(v.cfg.AdminPasswordHash, password) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(v.cfg.AdminPassword)) == 1
	}

	return userOK && passOK
}
