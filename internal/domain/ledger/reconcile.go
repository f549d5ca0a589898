package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"bankapi/internal/domain/account"
	"bankapi/internal/shared/logger"
	"bankapi/internal/shared/money"
)

// DefaultWorkerCount is the default number of concurrent reconciliation workers.
const DefaultWorkerCount = 4

// Mismatch is an account whose stored balance disagrees with its log.
type Mismatch struct {
	AccountID     int64
	AccountNumber string
	Stored        money.Cents
	FromLog       money.Cents
	Entries       int64
}

// ReconcileReport summarizes a reconciliation run.
type ReconcileReport struct {
	Checked    int
	Mismatches []Mismatch
}

// OK reports whether every account matched its log.
func (r *ReconcileReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Reconciler recomputes balances from the transaction log.
type Reconciler struct {
	uows    UnitOfWorkFactory
	workers int
}

func NewReconciler(uows UnitOfWorkFactory, workers int) *Reconciler {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	return &Reconciler{uows: uows, workers: workers}
}

// Run checks every account. Each account is read under its own unit of work
// with the row locked, so the balance and the log totals are consistent.
func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	var accounts []*account.Account
	err := Within(ctx, r.uows, func(uow UnitOfWork) error {
		var err error
		accounts, err = uow.Accounts().ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().Int("accounts", len(accounts)).Int("workers", r.workers).Msg("reconciliation started")

	var (
		mu     sync.Mutex
		report = &ReconcileReport{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, acc := range accounts {
		id := acc.ID
		g.Go(func() error {
			m, err := r.checkAccount(gctx, id)
			if err != nil {
				return fmt.Errorf("account %d: %w", id, err)
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checked++
			if m != nil {
				report.Mismatches = append(report.Mismatches, *m)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	sort.Slice(report.Mismatches, func(i, j int) bool {
		return report.Mismatches[i].AccountID < report.Mismatches[j].AccountID
	})

	log.Info().
		Int("checked", report.Checked).
		Int("mismatches", len(report.Mismatches)).
		Msg("reconciliation finished")

	return report, nil
}

func (r *Reconciler) checkAccount(ctx context.Context, accountID int64) (*Mismatch, error) {
	var mismatch *Mismatch
	err := Within(ctx, r.uows, func(uow UnitOfWork) error {
		acc, err := uow.Accounts().GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		totals, err := uow.Transactions().TotalsByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		if totals.Net() != acc.Balance {
			mismatch = &Mismatch{
				AccountID:     acc.ID,
				AccountNumber: acc.AccountNumber,
				Stored:        acc.Balance,
				FromLog:       totals.Net(),
				Entries:       totals.Count,
			}
		}
		return nil
	})
	return mismatch, err
}
