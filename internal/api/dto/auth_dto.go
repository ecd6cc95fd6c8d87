package dto

// CSRFTokenResponse is the body of GET /api/csrf-token.
type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// LoginRequest is the body of POST /api/auth.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CSRFToken string `json:"csrfToken"`
}

// LoginSuccessResponse is returned on successful login; the token is also
// set as an http-only cookie.
type LoginSuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// LoginFailureResponse is returned for any login rejection.
type LoginFailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
