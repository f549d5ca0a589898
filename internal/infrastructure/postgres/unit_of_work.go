package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bankapi/internal/domain/account"
	"bankapi/internal/domain/ledger"
	"bankapi/internal/domain/transaction"
)

// UnitOfWorkFactory opens one database transaction per ledger operation.
type UnitOfWorkFactory struct {
	db *DB
}

func NewUnitOfWorkFactory(db *DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// Begin starts a READ COMMITTED transaction. Ledger operations take row locks
// with SELECT ... FOR UPDATE, so the higher isolation levels are not needed.
func (f *UnitOfWorkFactory) Begin(ctx context.Context) (ledger.UnitOfWork, error) {
	tx, err := f.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &unitOfWork{
		tx:           tx,
		accounts:     NewAccountRepository(tx),
		transactions: NewTransactionRepository(tx),
	}, nil
}

type unitOfWork struct {
	tx           *Tx
	accounts     *AccountRepository
	transactions *TransactionRepository
}

func (u *unitOfWork) Accounts() account.Repository {
	return u.accounts
}

func (u *unitOfWork) Transactions() transaction.Repository {
	return u.transactions
}

func (u *unitOfWork) Commit() error {
	return u.tx.Commit()
}

func (u *unitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
