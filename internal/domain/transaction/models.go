package transaction

import (
	"time"

	"github.com/google/uuid"

	"bankapi/internal/shared/money"
)

// Type is the kind of balance-affecting event.
type Type string

const (
	TypeDeposit     Type = "deposit"
	TypeWithdraw    Type = "withdraw"
	TypeTransferIn  Type = "transfer_in"
	TypeTransferOut Type = "transfer_out"
)

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdraw, TypeTransferIn, TypeTransferOut:
		return true
	}
	return false
}

// Credit reports whether the type increases the account balance.
func (t Type) Credit() bool {
	return t == TypeDeposit || t == TypeTransferIn
}

// Transaction is an immutable entry in an account's log. Both legs of a
// transfer carry the same TransferGroupID.
type Transaction struct {
	ID              int64       `json:"id"`
	AccountID       int64       `json:"account_id"`
	Type            Type        `json:"type"`
	Amount          money.Cents `json:"amount"`
	Description     string      `json:"description"`
	TransferGroupID *uuid.UUID  `json:"transfer_group_id,omitempty"`
	CreatedAt       time.Time   `json:"timestamp"`
}

type CreateTransactionParams struct {
	AccountID       int64
	Type            Type
	Amount          money.Cents
	Description     string
	TransferGroupID *uuid.UUID
}

// ListOptions pages through an account's history, newest first.
type ListOptions struct {
	Limit  int // zero means no limit
	Offset int
}

// Totals aggregates an account's log by direction.
type Totals struct {
	AccountID int64
	Credits   money.Cents
	Debits    money.Cents
	Count     int64
}

// Net is the balance implied by the log.
func (t Totals) Net() money.Cents {
	return t.Credits - t.Debits
}
