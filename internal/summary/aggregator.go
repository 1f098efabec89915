package summary

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

// ErrOverflow is returned when the totals of a period do not fit in int64.
var ErrOverflow = errors.New("monthly totals overflow")

//go:generate mockgen -source=aggregator.go -destination=repository_mock.go -package=summary
type Repository interface {
	BeginRecompute(ctx context.Context, period ledger.Period) (RecomputeTx, error)
}

// RecomputeTx scopes one recomputation: the scan and the upsert see the same
// storage transaction, and nothing is written unless Commit succeeds.
type RecomputeTx interface {
	ListByPeriod(ctx context.Context, period ledger.Period) ([]*ledger.Transaction, error)
	UpsertSummary(ctx context.Context, summary *ledger.MonthlySummary) error
	Commit() error
	Rollback() error
}

// Aggregator derives monthly summaries by rescanning every transaction of the
// period. It never applies deltas, so concurrent recomputes for the same
// period cannot lose updates: whichever commits last has scanned everything
// committed before it.
type Aggregator struct {
	repo Repository
	now  func() time.Time
}

func NewAggregator(repo Repository) *Aggregator {
	return &Aggregator{repo: repo, now: time.Now}
}

// WithClock replaces the clock used for ComputedAt. Intended for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Recompute rebuilds and stores the summary of period. A period without
// transactions yields an all-zero summary.
func (a *Aggregator) Recompute(ctx context.Context, period ledger.Period) (*ledger.MonthlySummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	rtx, err := a.repo.BeginRecompute(ctx, period)
	if err != nil {
		return nil, &ledger.StorageError{Op: "begin recompute", Err: err}
	}
	defer rtx.Rollback()

	txs, err := rtx.ListByPeriod(ctx, period)
	if err != nil {
		return nil, &ledger.StorageError{Op: "list period transactions", Err: err}
	}

	totals, err := Fold(period, txs)
	if err != nil {
		return nil, err
	}

	summary := &ledger.MonthlySummary{
		Period:     period,
		Totals:     totals,
		ComputedAt: a.now().UTC(),
	}

	if err := rtx.UpsertSummary(ctx, summary); err != nil {
		return nil, &ledger.StorageError{Op: "upsert summary", Err: err}
	}

	if err := rtx.Commit(); err != nil {
		return nil, &ledger.StorageError{Op: "commit summary", Err: err}
	}

	return summary, nil
}

// Fold sums income and expense over the transactions dated inside period.
// Transactions outside the period are ignored. A sum that would leave int64
// fails with ErrOverflow instead of wrapping.
func Fold(period ledger.Period, txs []*ledger.Transaction) (ledger.Totals, error) {
	var totals ledger.Totals

	for _, tx := range txs {
		if !period.Contains(tx.Date) {
			continue
		}

		var sum *int64

		switch tx.Type {
		case ledger.TypeIncome:
			sum = &totals.Income
		case ledger.TypeExpense:
			sum = &totals.Expense
		default:
			continue
		}

		if tx.Amount > math.MaxInt64-*sum {
			return ledger.Totals{}, fmt.Errorf("%w: %s %s", ErrOverflow, period, tx.Type)
		}

		*sum += tx.Amount
	}

	// Both sums are non-negative, so the difference cannot overflow.
	totals.Balance = totals.Income - totals.Expense

	return totals, nil
}
