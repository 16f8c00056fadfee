package handlers

import (
	"time"

	"github.com/nfrund/neuralfeed/internal/authflow"
	"github.com/nfrund/neuralfeed/internal/domain"
)

// Sign-in error codes carried in the "error" field of a SignInResult.
const (
	codeCredentialsSignin = "CredentialsSignin"
	codeOAuthSignin       = "OAuthSignin"
	codeOAuthCallback     = "OAuthCallback"
	codeCallbackError     = "CallbackRouteError"
)

// UserResponse is the public view of a user. The password hash is never
// part of it.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse creates a UserResponse DTO from a domain.User.
func NewUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}
}

// SessionResponse is the body of GET /api/auth/session.
type SessionResponse struct {
	User *UserResponse `json:"user"`
}

func signInFailure(status int, code string) authflow.SignInResult {
	return authflow.SignInResult{OK: false, Error: code, Status: status}
}

func signInSuccess(url string) authflow.SignInResult {
	return authflow.SignInResult{OK: true, Status: 200, URL: url}
}
