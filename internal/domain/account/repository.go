package account

import (
	"context"

	"bankapi/internal/shared/money"
)

// Repository defines the interface for account data access. Implementations
// are bound to a unit of work; writes become visible when it commits.
type Repository interface {
	// Create returns ErrAccountNumberTaken when the number is already used.
	Create(ctx context.Context, params CreateParams) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	// GetByIDForUpdate loads the account and locks it until the unit of work ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Account, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)
	UpdateBalance(ctx context.Context, id int64, balance money.Cents) error
	// ListAll is used by the reconciliation job.
	ListAll(ctx context.Context) ([]*Account, error)
}
