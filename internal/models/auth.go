package models

// LoginRequest carries the admin credentials posted to /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"` // Not logged
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"` // Format: RFC3339
}
