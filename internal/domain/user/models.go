package user

import (
	"time"

	"bankapi/internal/shared/apperr"
)

// Domain errors
var (
	ErrMissingFields      = apperr.New(apperr.Validation, "Missing fields")
	ErrInvalidEmail       = apperr.New(apperr.Validation, "Invalid email address")
	ErrPasswordTooLong    = apperr.New(apperr.Validation, "Password must be at most 72 bytes")
	ErrEmailTaken         = apperr.New(apperr.Conflict, "Email already registered")
	ErrUserNotFound       = apperr.New(apperr.NotFound, "User not found")
	ErrInvalidCredentials = apperr.New(apperr.Auth, "Invalid credentials")
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}
