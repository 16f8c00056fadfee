package authflow

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validatorInstance caches struct metadata across calls.
var validatorInstance = validator.New()

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

const (
	msgMissingFields   = "Missing fields"
	msgInvalidEmail    = "Invalid email address"
	msgPasswordTooLong = "Password is too long"
)

// maxPasswordBytes matches the bcrypt input limit. validator's max counts
// runes, so the length is checked separately.
const maxPasswordBytes = 72

// validate checks creds for variant. Missing values take precedence over a
// malformed address when both occur.
func validate(v Variant, creds Credentials) error {
	var form any = loginForm{Email: strings.TrimSpace(creds.Email), Password: creds.Password}
	if v == Register {
		form = registerForm{
			Name:     strings.TrimSpace(creds.Name),
			Email:    strings.TrimSpace(creds.Email),
			Password: creds.Password,
		}
	}

	err := validatorInstance.Struct(form)
	if err == nil {
		if len(creds.Password) > maxPasswordBytes {
			return &ValidationError{Fields: []string{"password"}, Message: msgPasswordTooLong}
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Message: msgInvalidEmail}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, strings.ToLower(fe.Field()))
		if fe.Tag() == "required" {
			out.Message = msgMissingFields
		}
	}
	return out
}
