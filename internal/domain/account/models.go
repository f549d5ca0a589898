package account

import (
	"strings"
	"time"

	"bankapi/internal/shared/apperr"
	"bankapi/internal/shared/money"
)

const (
	// NumberLength is the fixed width of an account number.
	NumberLength = 12
	// MaxTypeLength bounds the free-form account type.
	MaxTypeLength = 20
)

// Domain errors
var (
	ErrAccountTypeRequired = apperr.New(apperr.Validation, "Account type is required")
	ErrAccountTypeTooLong  = apperr.New(apperr.Validation, "Account type must be at most 20 characters")
	ErrAccountNotFound     = apperr.New(apperr.NotFound, "Account not found")
	ErrForbidden           = apperr.New(apperr.Forbidden, "You do not own this account")
	// ErrAccountNumberTaken is returned by Repository.Create when the
	// generated number collides with an existing account.
	ErrAccountNumberTaken = apperr.New(apperr.Conflict, "account number already in use")
)

// Account is a balance owned by a single user. Balance only changes through
// ledger operations and is never negative.
type Account struct {
	ID            int64       `json:"account_id"`
	UserID        int64       `json:"-"`
	AccountNumber string      `json:"account_number"`
	AccountType   string      `json:"account_type"`
	Balance       money.Cents `json:"balance"`
	CreatedAt     time.Time   `json:"-"`
}

// CreateParams contains parameters for creating a new account
type CreateParams struct {
	UserID        int64
	AccountNumber string
	AccountType   string
}

// NormalizeType trims the account type and checks it is present and short
// enough to store.
func NormalizeType(accountType string) (string, error) {
	accountType = strings.TrimSpace(accountType)
	if accountType == "" {
		return "", ErrAccountTypeRequired
	}
	if len([]rune(accountType)) > MaxTypeLength {
		return "", ErrAccountTypeTooLong
	}
	return accountType, nil
}

// OwnedBy reports whether userID owns the account.
func (a *Account) OwnedBy(userID int64) bool {
	return a.UserID == userID
}
