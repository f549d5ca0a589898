package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bankapi/internal/domain/account"
	"bankapi/internal/shared/money"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	q querier
}

// NewAccountRepository creates a repository bound to db or to a transaction.
func NewAccountRepository(q querier) *AccountRepository {
	return &AccountRepository{q: q}
}

const accountColumns = `id, user_id, account_number, account_type, balance, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*account.Account, error) {
	var acc account.Account
	var balance int64
	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.AccountNumber, &acc.AccountType, &balance, &acc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.Balance = money.Cents(balance)
	return &acc, nil
}

// Create inserts a new account with a zero balance. A number collision
// yields no row instead of aborting the surrounding transaction.
func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	query := `
		INSERT INTO accounts (user_id, account_number, account_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_number) DO NOTHING
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.q.QueryRowContext(ctx, query, params.UserID, params.AccountNumber, params.AccountType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNumberTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acc, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves an account and holds its row lock until the
// transaction ends.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (r *AccountRepository) get(ctx context.Context, query string, id int64) (*account.Account, error) {
	acc, err := scanAccount(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// ListByUserID retrieves all accounts for a user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY id`, userID)
}

// ListAll retrieves every account ordered by id.
func (r *AccountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
}

func (r *AccountRepository) list(ctx context.Context, query string, args ...any) ([]*account.Account, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*account.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// UpdateBalance overwrites the stored balance. The balance CHECK constraint
// rejects negative values.
func (r *AccountRepository) UpdateBalance(ctx context.Context, id int64, balance money.Cents) error {
	result, err := r.q.ExecContext(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, int64(balance), id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if n == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}
