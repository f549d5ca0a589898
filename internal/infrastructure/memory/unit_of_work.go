package memory

import (
	"context"
	"fmt"
	"sort"

	"bankapi/internal/domain/account"
	"bankapi/internal/domain/transaction"
	"bankapi/internal/shared/money"
)

// unitOfWork stages writes on top of the committed state. Ids are drawn from
// the store counters immediately, so a rolled back unit leaves gaps.
type unitOfWork struct {
	s    *Store
	done bool

	newAccounts map[int64]*account.Account
	newNumbers  map[string]int64
	balances    map[int64]money.Cents
	newEntries  []*transaction.Transaction
}

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{
		s:           s,
		newAccounts: make(map[int64]*account.Account),
		newNumbers:  make(map[string]int64),
		balances:    make(map[int64]money.Cents),
	}
}

func (u *unitOfWork) Accounts() account.Repository {
	return accountRepository{u: u}
}

func (u *unitOfWork) Transactions() transaction.Repository {
	return transactionRepository{u: u}
}

func (u *unitOfWork) Commit() error {
	if u.done {
		return ErrUnitOfWorkDone
	}
	s := u.s

	for id, acc := range u.newAccounts {
		s.accounts[id] = acc
		s.numbers[acc.AccountNumber] = id
	}
	for id, balance := range u.balances {
		s.accounts[id].Balance = balance
	}
	for _, e := range u.newEntries {
		s.entries[e.AccountID] = append(s.entries[e.AccountID], e)
	}

	u.finish()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.finish()
	return nil
}

func (u *unitOfWork) finish() {
	u.done = true
	<-u.s.ledger
}

// lookup returns a copy of the account as seen by this unit of work.
func (u *unitOfWork) lookup(id int64) (*account.Account, bool) {
	acc, ok := u.newAccounts[id]
	if !ok {
		acc, ok = u.s.accounts[id]
	}
	if !ok {
		return nil, false
	}
	out := *acc
	if balance, staged := u.balances[id]; staged {
		out.Balance = balance
	}
	return &out, true
}

func (u *unitOfWork) visibleAccounts(keep func(*account.Account) bool) []*account.Account {
	var out []*account.Account
	for _, set := range []map[int64]*account.Account{u.s.accounts, u.newAccounts} {
		for id, acc := range set {
			if !keep(acc) {
				continue
			}
			a, _ := u.lookup(id)
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (u *unitOfWork) entriesOf(accountID int64) []*transaction.Transaction {
	committed := u.s.entries[accountID]
	out := make([]*transaction.Transaction, 0, len(committed))
	out = append(out, committed...)
	for _, e := range u.newEntries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

type accountRepository struct {
	u *unitOfWork
}

func (r accountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	if r.u.done {
		return nil, ErrUnitOfWorkDone
	}
	if _, taken := r.u.s.numbers[params.AccountNumber]; taken {
		return nil, account.ErrAccountNumberTaken
	}
	if _, taken := r.u.newNumbers[params.AccountNumber]; taken {
		return nil, account.ErrAccountNumberTaken
	}

	r.u.s.nextAccountID++
	acc := &account.Account{
		ID:            r.u.s.nextAccountID,
		UserID:        params.UserID,
		AccountNumber: params.AccountNumber,
		AccountType:   params.AccountType,
		CreatedAt:     r.u.s.now(),
	}
	r.u.newAccounts[acc.ID] = acc
	r.u.newNumbers[acc.AccountNumber] = acc.ID

	out := *acc
	return &out, nil
}

func (r accountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if r.u.done {
		return nil, ErrUnitOfWorkDone
	}
	acc, ok := r.u.lookup(id)
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return acc, nil
}

// GetByIDForUpdate needs no extra locking: the unit of work already holds
// the whole ledger.
func (r accountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	return r.GetByID(ctx, id)
}

func (r accountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	if r.u.done {
		return nil, ErrUnitOfWorkDone
	}
	return r.u.visibleAccounts(func(a *account.Account) bool { return a.UserID == userID }), nil
}

func (r accountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	if r.u.done {
		return nil, ErrUnitOfWorkDone
	}
	return r.u.visibleAccounts(func(*account.Account) bool { return true }), nil
}

func (r accountRepository) UpdateBalance(ctx context.Context, id int64, balance money.Cents) error {
	if r.u.done {
		return ErrUnitOfWorkDone
	}
	if _, ok := r.u.lookup(id); !ok {
		return account.ErrAccountNotFound
	}
	if balance < 0 {
		return fmt.Errorf("memory: balance of account %d would be negative", id)
	}
	r.u.balances[id] = balance
	return nil
}

type transactionRepository struct {
	u *unitOfWork
}

func (r transactionRepository) Create(ctx context.Context, params transaction.CreateTransactionParams) (*transaction.Transaction, error) {
	if r.u.done {
		return nil, ErrUnitOfWorkDone
	}
	if _, ok := r.u.lookup(params.AccountID); !ok {
		return nil, account.ErrAccountNotFound
	}
	if !params.Type.Valid() {
		return nil, fmt.Errorf("memory: invalid transaction type %q", params.Type)
	}
	if params.Amount <= 0 {
		return nil, fmt.Errorf("memory: transaction amount must be positive, got %d", params.Amount)
	}

	r.u.s.nextEntryID++
	e := &transaction.Transaction{
		ID:              r.u.s.nextEntryID,
		AccountID:       params.AccountID,
		Type:            params.Type,
		Amount:          params.Amount,
		Description:     params.Description,
		TransferGroupID: params.TransferGroupID,
		CreatedAt:       r.u.s.now(),
	}
	r.u.newEntries = append(r.u.newEntries, e)

	out := *e
	return &out, nil
}

func (r transactionRepository) ListByAccountID(ctx context.Context, accountID int64, opts transaction.ListOptions) ([]*transaction.Transaction, error) {
	if r.u.done {
		return nil, ErrUnitOfWorkDone
	}
	entries := r.u.entriesOf(accountID)
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})

	if opts.Offset >= len(entries) {
		return []*transaction.Transaction{}, nil
	}
	entries = entries[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}

	out := make([]*transaction.Transaction, len(entries))
	for i, e := range entries {
		c := *e
		out[i] = &c
	}
	return out, nil
}

func (r transactionRepository) TotalsByAccountID(ctx context.Context, accountID int64) (transaction.Totals, error) {
	if r.u.done {
		return transaction.Totals{}, ErrUnitOfWorkDone
	}
	totals := transaction.Totals{AccountID: accountID}
	for _, e := range r.u.entriesOf(accountID) {
		if e.Type.Credit() {
			totals.Credits += e.Amount
		} else {
			totals.Debits += e.Amount
		}
		totals.Count++
	}
	return totals, nil
}
