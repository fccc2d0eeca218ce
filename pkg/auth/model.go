package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a row in authdata.
type User struct {
	ID                    int        `json:"id"`
	Username              string     `json:"username"`
	PasswordHash          string     `json:"-"`
	FullName              string     `json:"full_name"`
	Email                 string     `json:"email"`
	RefreshToken          *string    `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`
}

// Claims carried by access tokens. TokenType distinguishes access tokens
// from anything else signed with the same secret.
type Claims struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	UserID    int    `json:"user_id"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login or refresh. The refresh token
// leaves the server only inside the HttpOnly cookie.
type Session struct {
	UserID           int
	Username         string
	FullName         string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginResponse is the login body; the access token is returned here while
// the refresh token travels in the cookie.
type LoginResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Token     string `json:"token,omitempty"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type RefreshResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	Username    string `json:"username,omitempty"`
	FullName    string `json:"full_name,omitempty"`
}

type TokenValidationResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Message  string `json:"message,omitempty"`
}
