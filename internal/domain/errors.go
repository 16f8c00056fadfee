package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrNotFound           = errors.New("requested resource not found")
	ErrMissingFields      = errors.New("missing required fields")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrUnknownProvider    = errors.New("unknown sign-in provider")
	ErrNotMember          = errors.New("user is not a member of this conversation")
	ErrEmptyMessage       = errors.New("message body is empty")
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72
