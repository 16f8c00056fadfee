package authflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Variant selects which form is shown.
type Variant int

const (
	Login Variant = iota
	Register
)

func (v Variant) String() string {
	if v == Register {
		return "REGISTER"
	}
	return "LOGIN"
}

// Toggle returns the other variant.
func (v Variant) Toggle() Variant {
	if v == Register {
		return Login
	}
	return Register
}

// ParseVariant accepts "login" or "register" in any case. Anything else is
// Login.
func ParseVariant(s string) Variant {
	if strings.EqualFold(s, "register") {
		return Register
	}
	return Login
}

// State is the observable form state.
type State struct {
	Variant Variant
	Loading bool
}

// Credentials are the values collected by the form. Name is only used by
// the Register variant.
type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResult mirrors the {ok, error, status, url} reply of the sign-in
// endpoints.
type SignInResult struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Status int    `json:"status,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Succeeded reports ok with no error.
func (r SignInResult) Succeeded() bool {
	return r.OK && r.Error == ""
}

// Account is the created user record returned by CreateAccount.
type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

// Authenticator performs the two sign-in exchanges.
type Authenticator interface {
	// SignInCredentials exchanges email and password for a session.
	SignInCredentials(ctx context.Context, email, password string) (SignInResult, error)
	// SignInFederated starts a provider sign-in without following any
	// redirect; the result carries the provider URL.
	SignInFederated(ctx context.Context, provider string) (SignInResult, error)
}

// AccountCreator registers a new account. A non-2xx reply is returned as a
// *ServerError carrying the response text.
type AccountCreator interface {
	CreateAccount(ctx context.Context, creds Credentials) (*Account, error)
}

// Notifier displays transient messages. Calls must not block for long.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NotifierFuncs adapts two functions to a Notifier.
type NotifierFuncs struct {
	OnSuccess func(msg string)
	OnError   func(msg string)
}

func (n NotifierFuncs) Success(msg string) {
	if n.OnSuccess != nil {
		n.OnSuccess(msg)
	}
}

func (n NotifierFuncs) Error(msg string) {
	if n.OnError != nil {
		n.OnError(msg)
	}
}

// Notification texts.
const (
	MsgLoggedIn           = "Logged in successfully"
	MsgInvalidCredentials = "Invalid credentials"
	MsgAccountCreated     = "Account created successfully"
	MsgGenericFailure     = "Something went wrong"
	MsgSocialFailure      = "Something went wrong with your social login"
)

var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("authflow: a request is already in progress")
	// ErrAuthRejected is returned when a sign-in was refused.
	ErrAuthRejected = errors.New("authflow: sign-in rejected")
)

// ServerError is a non-2xx reply, or a transport failure with StatusCode 0.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error %d", e.StatusCode)
}

// ValidationError lists the fields that failed client-side checks.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Fields, ", "))
}
