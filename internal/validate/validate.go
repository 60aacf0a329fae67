// Package validate contains the registration input rules. Validation is a
// pure function of its input: no I/O, no side effects, first failure wins.
package validate

import (
	"errors"
	"fmt"
	"regexp"
)

const minPasswordLength = 8

var (
	// ErrPasswordTooShort carries the exact message shown to the user.
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters")

	// ErrPasswordMismatch carries the exact message shown to the user.
	ErrPasswordMismatch = errors.New("Passwords do not match")

	ErrInvalidEmail = errors.New("invalid email address")
)

// MissingFieldError reports an empty required field by its form name.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// basic syntax check only; deliverability is not our concern
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegistrationInput holds the six fields submitted by the registration form.
type RegistrationInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
}

// Registration checks the input against the registration rules, in order:
// required fields, password length, password confirmation, email syntax.
// The first violated rule is returned and the rest are not evaluated.
func Registration(in RegistrationInput) error {
	required := []struct {
		field string
		value string
	}{
		{"username", in.Username},
		{"email", in.Email},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"password", in.Password},
		{"confirm_password", in.ConfirmPassword},
	}
	for _, r := range required {
		if r.value == "" {
			return &MissingFieldError{Field: r.field}
		}
	}

	if len(in.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	if !emailRe.MatchString(in.Email) {
		return ErrInvalidEmail
	}

	return nil
}

// IsValidation reports whether err was produced by Registration, so callers
// can distinguish user input errors from infrastructure failures.
func IsValidation(err error) bool {
	var mf *MissingFieldError
	return errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.As(err, &mf)
}
