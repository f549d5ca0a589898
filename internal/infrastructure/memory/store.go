// Package memory keeps users, accounts and the transaction log in process.
// It backs STORAGE_DRIVER=memory and the test suites.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"bankapi/internal/domain/account"
	"bankapi/internal/domain/ledger"
	"bankapi/internal/domain/transaction"
	"bankapi/internal/domain/user"
)

// ErrUnitOfWorkDone is returned when a committed or rolled back unit of work is used.
var ErrUnitOfWorkDone = errors.New("memory: unit of work already finished")

var _ ledger.UnitOfWorkFactory = (*Store)(nil)

// Store is safe for concurrent use. Units of work are serialized: Begin
// blocks until the previous one commits or rolls back.
type Store struct {
	now func() time.Time

	// ledger is a one-slot semaphore owned by the open unit of work. It
	// guards every field below it.
	ledger        chan struct{}
	accounts      map[int64]*account.Account
	numbers       map[string]int64
	entries       map[int64][]*transaction.Transaction
	nextAccountID int64
	nextEntryID   int64

	usersMu    sync.RWMutex
	users      map[int64]*user.User
	emails     map[string]int64
	nextUserID int64
}

type Option func(*Store)

// WithClock overrides the time source used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:      func() time.Time { return time.Now().UTC() },
		ledger:   make(chan struct{}, 1),
		accounts: make(map[int64]*account.Account),
		numbers:  make(map[string]int64),
		entries:  make(map[int64][]*transaction.Transaction),
		users:    make(map[int64]*user.User),
		emails:   make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin opens a unit of work, waiting for the current one to finish or ctx
// to be cancelled.
func (s *Store) Begin(ctx context.Context) (ledger.UnitOfWork, error) {
	select {
	case s.ledger <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return newUnitOfWork(s), nil
}

// Users returns the user repository backed by this store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}
