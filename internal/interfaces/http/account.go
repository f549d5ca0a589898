package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"bankapi/internal/domain/account"
	"bankapi/internal/domain/ledger"
	"bankapi/internal/domain/transaction"
	"bankapi/internal/shared/apperr"
	"bankapi/internal/shared/middleware"
	"bankapi/internal/shared/money"
)

var errUnauthenticated = apperr.New(apperr.Auth, "authentication required")

// AccountHandler serves the account routes. Each request runs in its own
// unit of work, committed only when the ledger operation succeeds.
type AccountHandler struct {
	ledger *ledger.Service
	uows   ledger.UnitOfWorkFactory
}

func NewAccountHandler(ledgerService *ledger.Service, uows ledger.UnitOfWorkFactory) *AccountHandler {
	return &AccountHandler{ledger: ledgerService, uows: uows}
}

// HTTP request/response types (transport layer concerns)
// CreateAccountRequest leaves account_type checks to account.NormalizeType.
type CreateAccountRequest struct {
	AccountType string `json:"account_type"`
}

type CreateAccountResponse struct {
	Message       string `json:"message"`
	AccountID     int64  `json:"account_id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
}

// AmountRequest is the body of deposit and withdraw. Amount is kept raw so
// that both JSON numbers and numeric strings are accepted.
type AmountRequest struct {
	AccountID int64           `json:"account_id" validate:"required,gt=0"`
	Amount    json.RawMessage `json:"amount"`
}

type BalanceChangeResponse struct {
	Message    string      `json:"message"`
	NewBalance money.Cents `json:"new_balance"`
}

type TransferRequest struct {
	FromAccount int64           `json:"from_account" validate:"required,gt=0"`
	ToAccount   int64           `json:"to_account" validate:"required,gt=0"`
	Amount      json.RawMessage `json:"amount"`
}

type TransferResponse struct {
	Message            string      `json:"message"`
	SenderNewBalance   money.Cents `json:"sender_new_balance"`
	ReceiverNewBalance money.Cents `json:"receiver_new_balance"`
	TransferGroupID    uuid.UUID   `json:"transfer_group_id"`
}

type BalanceResponse struct {
	Balance money.Cents `json:"balance"`
}

type TransactionsResponse struct {
	AccountID    int64                      `json:"account_id"`
	Transactions []*transaction.Transaction `json:"transactions"`
}

func callerID(r *http.Request) (int64, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return 0, errUnauthenticated
	}
	return userID, nil
}

// HandleCreateAccount handles POST /account/create
func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var acc *account.Account
	err = ledger.Within(r.Context(), h.uows, func(uow ledger.UnitOfWork) error {
		var err error
		acc, err = h.ledger.CreateAccount(r.Context(), uow, userID, req.AccountType)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateAccountResponse{
		Message:       "Account created successfully",
		AccountID:     acc.ID,
		AccountNumber: acc.AccountNumber,
		AccountType:   acc.AccountType,
	})
}

// HandleDeposit handles POST /account/deposit
func (h *AccountHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleBalanceChange(w, r, "Deposit successful", h.ledger.Deposit)
}

// HandleWithdraw handles POST /account/withdraw
func (h *AccountHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleBalanceChange(w, r, "Withdraw successful", h.ledger.Withdraw)
}

type balanceOp func(ctx context.Context, uow ledger.UnitOfWork, caller, accountID int64, amount money.Cents) (money.Cents, error)

func (h *AccountHandler) handleBalanceChange(w http.ResponseWriter, r *http.Request, message string, op balanceOp) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var balance money.Cents
	err = ledger.Within(r.Context(), h.uows, func(uow ledger.UnitOfWork) error {
		var err error
		balance, err = op(r.Context(), uow, userID, req.AccountID, amount)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceChangeResponse{Message: message, NewBalance: balance})
}

// HandleTransfer handles POST /account/transfer
func (h *AccountHandler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var result *ledger.TransferResult
	err = ledger.Within(r.Context(), h.uows, func(uow ledger.UnitOfWork) error {
		var err error
		result, err = h.ledger.Transfer(r.Context(), uow, userID, ledger.TransferParams{
			FromAccountID: req.FromAccount,
			ToAccountID:   req.ToAccount,
			Amount:        amount,
		})
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TransferResponse{
		Message:            "Transfer successful",
		SenderNewBalance:   result.SenderBalance,
		ReceiverNewBalance: result.ReceiverBalance,
		TransferGroupID:    result.GroupID,
	})
}

// HandleBalance handles GET /account/balance/{id}
func (h *AccountHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var balance money.Cents
	err = ledger.Within(r.Context(), h.uows, func(uow ledger.UnitOfWork) error {
		var err error
		balance, err = h.ledger.GetBalance(r.Context(), uow, userID, accountID)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
}

// HandleListTransactions handles GET /account/transactions/{id}?limit=&offset=
func (h *AccountHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts, err := listOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var txns []*transaction.Transaction
	err = ledger.Within(r.Context(), h.uows, func(uow ledger.UnitOfWork) error {
		var err error
		txns, err = h.ledger.ListTransactions(r.Context(), uow, userID, accountID, opts)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if txns == nil {
		txns = []*transaction.Transaction{}
	}
	writeJSON(w, http.StatusOK, TransactionsResponse{AccountID: accountID, Transactions: txns})
}

// listOptions reads limit and offset. An explicit limit must be 1..MaxPageSize.
func listOptions(r *http.Request) (transaction.ListOptions, error) {
	var opts transaction.ListOptions

	limit, present, err := queryInt(r, "limit")
	if err != nil || (present && (limit < 1 || limit > ledger.MaxPageSize)) {
		return opts, ledger.ErrInvalidPage
	}
	offset, _, err := queryInt(r, "offset")
	if err != nil || offset < 0 {
		return opts, ledger.ErrInvalidPage
	}

	opts.Limit = limit
	opts.Offset = offset
	return opts, nil
}

// HandleListAccounts handles GET /account/list
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var accounts []*account.Account
	err = ledger.Within(r.Context(), h.uows, func(uow ledger.UnitOfWork) error {
		var err error
		accounts, err = h.ledger.ListAccounts(r.Context(), uow, userID)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if accounts == nil {
		accounts = []*account.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}
