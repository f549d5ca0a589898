package transaction

import "context"

// Repository defines the interface for transaction log access. The log is
// append-only: there is no update or delete.
type Repository interface {
	Create(ctx context.Context, params CreateTransactionParams) (*Transaction, error)
	// ListByAccountID returns the account's entries ordered by creation
	// time then id, both descending.
	ListByAccountID(ctx context.Context, accountID int64, opts ListOptions) ([]*Transaction, error)
	TotalsByAccountID(ctx context.Context, accountID int64) (Totals, error)
}
