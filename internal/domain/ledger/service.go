package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"bankapi/internal/domain/account"
	"bankapi/internal/domain/transaction"
	"bankapi/internal/shared/apperr"
	"bankapi/internal/shared/logger"
	"bankapi/internal/shared/money"
)

const (
	// MaxNumberAttempts bounds retries when a generated account number collides.
	MaxNumberAttempts = 5
	// MaxPageSize is the largest page ListTransactions returns.
	MaxPageSize = 500
)

var (
	ledgerTracer = otel.Tracer("bankapi/ledger")
	ledgerMeter  = otel.Meter("bankapi/ledger")

	ledgerOperations, _ = ledgerMeter.Int64Counter("ledger.operations",
		metric.WithDescription("Ledger operations by operation and outcome"),
	)
	ledgerVolume, _ = ledgerMeter.Int64Counter("ledger.volume",
		metric.WithDescription("Amount moved by successful ledger operations"),
		metric.WithUnit("{cent}"),
	)
)

// Service implements the money-movement operations. Every method runs inside
// the unit of work supplied by the caller and never commits it.
type Service struct {
	numbers account.NumberGenerator
}

func NewService(numbers account.NumberGenerator) *Service {
	if numbers == nil {
		numbers = account.RandomNumbers{}
	}
	return &Service{numbers: numbers}
}

// TransferParams identifies the two legs of a transfer.
type TransferParams struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        money.Cents
}

// TransferResult carries both balances after a transfer.
type TransferResult struct {
	SenderBalance   money.Cents
	ReceiverBalance money.Cents
	GroupID         uuid.UUID
}

// CreateAccount opens a zero-balance account for caller.
func (s *Service) CreateAccount(ctx context.Context, uow UnitOfWork, caller int64, accountType string) (acc *account.Account, err error) {
	ctx, span := startOp(ctx, "create_account", caller)
	defer func() { endOp(ctx, span, "create_account", 0, err) }()

	accountType, err = account.NormalizeType(accountType)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxNumberAttempts; attempt++ {
		number, err := s.numbers.Next()
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, ErrNumbersExhausted.Message, err)
		}

		acc, err = uow.Accounts().Create(ctx, account.CreateParams{
			UserID:        caller,
			AccountNumber: number,
			AccountType:   accountType,
		})
		if errors.Is(err, account.ErrAccountNumberTaken) {
			span.AddEvent("account number collision", trace.WithAttributes(attribute.Int("attempt", attempt)))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}

		span.SetAttributes(attribute.Int64("account.id", acc.ID))
		return acc, nil
	}

	return nil, ErrNumbersExhausted
}

// Deposit credits amount to an account owned by caller and returns the new balance.
func (s *Service) Deposit(ctx context.Context, uow UnitOfWork, caller, accountID int64, amount money.Cents) (balance money.Cents, err error) {
	ctx, span := startOp(ctx, "deposit", caller, attribute.Int64("account.id", accountID))
	defer func() { endOp(ctx, span, "deposit", amount, err) }()

	if err := checkAmount(amount, ErrDepositNotPositive); err != nil {
		return 0, err
	}

	acc, err := lockOwned(ctx, uow, caller, accountID)
	if err != nil {
		return 0, err
	}

	newBalance, ok := money.Add(acc.Balance, amount)
	if !ok {
		return 0, ErrBalanceOverflow
	}

	if err := apply(ctx, uow, acc, newBalance, transaction.CreateTransactionParams{
		Type:        transaction.TypeDeposit,
		Amount:      amount,
		Description: fmt.Sprintf("Deposit to account %s", acc.AccountNumber),
	}); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// Withdraw debits amount from an account owned by caller and returns the new balance.
func (s *Service) Withdraw(ctx context.Context, uow UnitOfWork, caller, accountID int64, amount money.Cents) (balance money.Cents, err error) {
	ctx, span := startOp(ctx, "withdraw", caller, attribute.Int64("account.id", accountID))
	defer func() { endOp(ctx, span, "withdraw", amount, err) }()

	if err := checkAmount(amount, ErrWithdrawNotPositive); err != nil {
		return 0, err
	}

	acc, err := lockOwned(ctx, uow, caller, accountID)
	if err != nil {
		return 0, err
	}

	if acc.Balance < amount {
		return 0, ErrInsufficientFunds
	}
	newBalance := acc.Balance - amount

	if err := apply(ctx, uow, acc, newBalance, transaction.CreateTransactionParams{
		Type:        transaction.TypeWithdraw,
		Amount:      amount,
		Description: fmt.Sprintf("Withdrawal from account %s", acc.AccountNumber),
	}); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// Transfer moves amount between two accounts. Only the sender must belong to
// caller. Both accounts are locked in ascending id order.
func (s *Service) Transfer(ctx context.Context, uow UnitOfWork, caller int64, params TransferParams) (res *TransferResult, err error) {
	ctx, span := startOp(ctx, "transfer", caller,
		attribute.Int64("account.from", params.FromAccountID),
		attribute.Int64("account.to", params.ToAccountID),
	)
	defer func() { endOp(ctx, span, "transfer", params.Amount, err) }()

	if err := checkAmount(params.Amount, ErrTransferNotPositive); err != nil {
		return nil, err
	}

	locked, err := lockInOrder(ctx, uow, params.FromAccountID, params.ToAccountID)
	if err != nil {
		return nil, err
	}
	sender, receiver := locked[params.FromAccountID], locked[params.ToAccountID]

	if !sender.OwnedBy(caller) {
		return nil, ErrNotSenderOwner
	}
	if sender.ID == receiver.ID {
		return nil, ErrSameAccount
	}
	if sender.Balance < params.Amount {
		return nil, ErrInsufficientFunds
	}

	senderBalance := sender.Balance - params.Amount
	receiverBalance, ok := money.Add(receiver.Balance, params.Amount)
	if !ok {
		return nil, ErrBalanceOverflow
	}

	groupID := uuid.New()
	span.SetAttributes(attribute.String("transfer.group_id", groupID.String()))

	if err := apply(ctx, uow, sender, senderBalance, transaction.CreateTransactionParams{
		Type:            transaction.TypeTransferOut,
		Amount:          params.Amount,
		Description:     fmt.Sprintf("Transfer to account %s", receiver.AccountNumber),
		TransferGroupID: &groupID,
	}); err != nil {
		return nil, err
	}
	if err := apply(ctx, uow, receiver, receiverBalance, transaction.CreateTransactionParams{
		Type:            transaction.TypeTransferIn,
		Amount:          params.Amount,
		Description:     fmt.Sprintf("Transfer from account %s", sender.AccountNumber),
		TransferGroupID: &groupID,
	}); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Int64("from", sender.ID).
		Int64("to", receiver.ID).
		Int64("amount_cents", int64(params.Amount)).
		Str("group_id", groupID.String()).
		Msg("transfer applied")

	return &TransferResult{
		SenderBalance:   senderBalance,
		ReceiverBalance: receiverBalance,
		GroupID:         groupID,
	}, nil
}

// GetBalance returns the balance of an account owned by caller.
func (s *Service) GetBalance(ctx context.Context, uow UnitOfWork, caller, accountID int64) (balance money.Cents, err error) {
	ctx, span := startOp(ctx, "get_balance", caller, attribute.Int64("account.id", accountID))
	defer func() { endOp(ctx, span, "get_balance", 0, err) }()

	acc, err := loadOwned(ctx, uow, caller, accountID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// ListTransactions returns the log of an account owned by caller, newest first.
func (s *Service) ListTransactions(ctx context.Context, uow UnitOfWork, caller, accountID int64, opts transaction.ListOptions) (txns []*transaction.Transaction, err error) {
	ctx, span := startOp(ctx, "list_transactions", caller, attribute.Int64("account.id", accountID))
	defer func() { endOp(ctx, span, "list_transactions", 0, err) }()

	if opts.Limit < 0 || opts.Limit > MaxPageSize || opts.Offset < 0 {
		return nil, ErrInvalidPage
	}

	if _, err := loadOwned(ctx, uow, caller, accountID); err != nil {
		return nil, err
	}

	txns, err = uow.Transactions().ListByAccountID(ctx, accountID, opts)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// ListAccounts returns every account owned by caller.
func (s *Service) ListAccounts(ctx context.Context, uow UnitOfWork, caller int64) (accounts []*account.Account, err error) {
	ctx, span := startOp(ctx, "list_accounts", caller)
	defer func() { endOp(ctx, span, "list_accounts", 0, err) }()

	accounts, err = uow.Accounts().ListByUserID(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func checkAmount(amount money.Cents, notPositive error) error {
	if amount <= 0 {
		return notPositive
	}
	if amount > money.MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

func loadOwned(ctx context.Context, uow UnitOfWork, caller, accountID int64) (*account.Account, error) {
	acc, err := uow.Accounts().GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acc.OwnedBy(caller) {
		return nil, account.ErrForbidden
	}
	return acc, nil
}

func lockOwned(ctx context.Context, uow UnitOfWork, caller, accountID int64) (*account.Account, error) {
	acc, err := uow.Accounts().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acc.OwnedBy(caller) {
		return nil, account.ErrForbidden
	}
	return acc, nil
}

// lockInOrder locks the given accounts lowest id first. A missing account
// yields ErrTransferAccountAbsent.
func lockInOrder(ctx context.Context, uow UnitOfWork, a, b int64) (map[int64]*account.Account, error) {
	ids := []int64{a, b}
	if a == b {
		ids = ids[:1]
	} else if b < a {
		ids[0], ids[1] = b, a
	}

	locked := make(map[int64]*account.Account, len(ids))
	for _, id := range ids {
		acc, err := uow.Accounts().GetByIDForUpdate(ctx, id)
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrTransferAccountAbsent
		}
		if err != nil {
			return nil, err
		}
		locked[id] = acc
	}
	return locked, nil
}

// apply stores the new balance and appends the matching log entry.
func apply(ctx context.Context, uow UnitOfWork, acc *account.Account, newBalance money.Cents, entry transaction.CreateTransactionParams) error {
	if err := uow.Accounts().UpdateBalance(ctx, acc.ID, newBalance); err != nil {
		return fmt.Errorf("update balance of account %d: %w", acc.ID, err)
	}
	entry.AccountID = acc.ID
	if _, err := uow.Transactions().Create(ctx, entry); err != nil {
		return fmt.Errorf("append %s entry: %w", entry.Type, err)
	}
	acc.Balance = newBalance
	return nil
}

func startOp(ctx context.Context, op string, caller int64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.Int64("user.id", caller))
	return ledgerTracer.Start(ctx, "ledger."+op, trace.WithAttributes(attrs...))
}

func endOp(ctx context.Context, span trace.Span, op string, amount money.Cents, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.End()

	ledgerOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
	if err == nil && amount > 0 {
		ledgerVolume.Add(ctx, int64(amount), metric.WithAttributes(attribute.String("op", op)))
	}
}
