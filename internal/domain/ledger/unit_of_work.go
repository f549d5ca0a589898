package ledger

import (
	"context"
	"errors"
	"fmt"

	"bankapi/internal/domain/account"
	"bankapi/internal/domain/transaction"
)

// UnitOfWork groups the reads and writes of one ledger operation. Nothing
// written through it is visible to other units until Commit succeeds.
// Rollback after Commit is a no-op.
type UnitOfWork interface {
	Accounts() account.Repository
	Transactions() transaction.Repository
	Commit() error
	Rollback() error
}

// UnitOfWorkFactory opens units of work against a store.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Within runs fn in a fresh unit of work, committing when fn returns nil and
// rolling back otherwise.
func Within(ctx context.Context, uows UnitOfWorkFactory, fn func(uow UnitOfWork) error) (err error) {
	uow, err := uows.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() {
		if rbErr := uow.Rollback(); rbErr != nil && err != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}
