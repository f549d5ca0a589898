package ledger

import "bankapi/internal/shared/apperr"

var (
	ErrDepositNotPositive  = apperr.New(apperr.Validation, "Deposit amount must be a positive number")
	ErrWithdrawNotPositive = apperr.New(apperr.Validation, "Withdraw amount must be positive")
	ErrTransferNotPositive = apperr.New(apperr.Validation, "Transfer amount must be positive")
	ErrAmountTooLarge      = apperr.New(apperr.Validation, "Amount is too large")
	ErrBalanceOverflow     = apperr.New(apperr.Validation, "Resulting balance is too large")
	ErrInvalidPage         = apperr.New(apperr.Validation, "limit must be between 1 and 500 and offset must not be negative")

	ErrInsufficientFunds     = apperr.New(apperr.InsufficientFunds, "Insufficient funds")
	ErrSameAccount           = apperr.New(apperr.InvalidOperation, "Cannot transfer to the same account")
	ErrTransferAccountAbsent = apperr.New(apperr.NotFound, "One or both accounts do not exist")
	ErrNotSenderOwner        = apperr.New(apperr.Forbidden, "You do not own the sender account")

	ErrNumbersExhausted = apperr.New(apperr.Internal, "could not allocate an account number")
)
