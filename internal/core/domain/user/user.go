package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound distinguishes a genuine account miss from an
// infrastructure failure while looking one up.
var ErrNotFound = errors.New("user not found")

type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Name          string    `json:"name" db:"name"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest represents the account registration request
type RegisterRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// SendOTPRequest asks for a (re)issue of the email verification code
type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest submits a verification code for an email address.
// The code must be exactly six digits; anything else is rejected before
// the verification service is consulted.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,number"`
}
