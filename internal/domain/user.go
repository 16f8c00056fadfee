package domain

import (
	"context"
	"time"
)

// User represents the core user model in the application domain.
// HashedPassword never leaves the server: it is excluded from JSON.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Image          string    `json:"image,omitempty"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	// Create stores a new user and returns it with its ID populated.
	// It returns ErrUserAlreadyExists when the e-mail is taken.
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// ListExcept returns every user other than the one with the given ID,
	// newest first.
	ListExcept(ctx context.Context, id string) ([]*User, error)
}
