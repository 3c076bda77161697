package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"chat-relay/errors"
)

var validate = validator.New()

// RegisterRequest carries a new-account submission.
// Usernames never contain whitespace; the display name is what shows up in
// the relay and has its own looser limit.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=20,excludesall= "`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"required,max=50"`
}

// LoginRequest carries a credential check.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ValidateRegister applies structural rules plus password complexity.
func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

// ValidateLogin applies structural rules to a login submission.
func ValidateLogin(req LoginRequest) error {
	return validate.Struct(req)
}

// isPasswordComplex requires at least one upper-case, one lower-case and
// one digit.
func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	return hasUpper && hasLower && hasNumber
}
