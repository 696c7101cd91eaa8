package http

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/aussiebroadwan/nexus/internal/auth/service"
)

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateRegistration applies the email rules and the password strength
// policy.
func (r CredentialsRequest) ValidateRegistration() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules()...),
		validation.Field(&r.Password, validation.Required, validation.By(passwordStrength)),
	)
}

// ValidateLogin only checks presence. Strength is never reported on login.
func (r CredentialsRequest) ValidateLogin() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules()...),
		validation.Field(&r.Password, validation.Required, validation.Length(1, service.MaxPasswordLength)),
	)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.By(passwordStrength)),
	)
}

// BinanceTokenRequest sets or, with a null or empty token, clears the
// user's Binance API token.
type BinanceTokenRequest struct {
	Token *string `json:"token"`
}

func (r BinanceTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Length(0, MaxBinanceTokenLength)),
	)
}

const MaxBinanceTokenLength = 512

func emailRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(3, service.MaxEmailLength),
		is.Email,
	}
}

func passwordStrength(value interface{}) error {
	s, _ := value.(string)
	if err := service.CheckPasswordStrength(s); err != nil {
		return errors.New("must be 8 to 128 characters with at least one letter and one digit")
	}
	return nil
}
