package user

import "context"

// Repository defines the interface for user data access.
//
// Create returns ErrEmailTaken when the email is already registered;
// GetByEmail returns ErrUserNotFound.
type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
