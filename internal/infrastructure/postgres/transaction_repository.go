package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bankapi/internal/domain/transaction"
	"bankapi/internal/shared/money"
)

// TransactionRepository implements transaction.Repository for PostgreSQL
type TransactionRepository struct {
	q querier
}

// NewTransactionRepository creates a repository bound to db or to a transaction.
func NewTransactionRepository(q querier) *TransactionRepository {
	return &TransactionRepository{q: q}
}

const transactionColumns = `id, account_id, type, amount, description, transfer_group_id, created_at`

func scanTransaction(row scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	var amount int64
	var group uuid.NullUUID
	if err := row.Scan(
		&tx.ID, &tx.AccountID, &tx.Type, &amount, &tx.Description, &group, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}
	tx.Amount = money.Cents(amount)
	if group.Valid {
		id := group.UUID
		tx.TransferGroupID = &id
	}
	return &tx, nil
}

// Create appends an entry to the account's log.
func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateTransactionParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO transactions (account_id, type, amount, description, transfer_group_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + transactionColumns

	var group uuid.NullUUID
	if params.TransferGroupID != nil {
		group = uuid.NullUUID{UUID: *params.TransferGroupID, Valid: true}
	}

	tx, err := scanTransaction(r.q.QueryRowContext(
		ctx, query,
		params.AccountID, string(params.Type), int64(params.Amount), params.Description, group,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// ListByAccountID returns the account's entries, newest first.
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID int64, opts transaction.ListOptions) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2`
	args := []any{accountID, opts.Offset}
	if opts.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, opts.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*transaction.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// TotalsByAccountID sums the account's credits and debits.
func (r *TransactionRepository) TotalsByAccountID(ctx context.Context, accountID int64) (transaction.Totals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type IN ('deposit', 'transfer_in') THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type IN ('withdraw', 'transfer_out') THEN amount END), 0),
			COUNT(*)
		FROM transactions
		WHERE account_id = $1`

	totals := transaction.Totals{AccountID: accountID}
	var credits, debits int64
	if err := r.q.QueryRowContext(ctx, query, accountID).Scan(&credits, &debits, &totals.Count); err != nil {
		return transaction.Totals{}, fmt.Errorf("failed to total transactions: %w", err)
	}
	totals.Credits = money.Cents(credits)
	totals.Debits = money.Cents(debits)
	return totals, nil
}
