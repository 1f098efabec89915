package report

import (
	"context"
	"errors"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=report
type Repository interface {
	GetSummary(ctx context.Context, period ledger.Period) (*ledger.MonthlySummary, error)
	ListRecent(ctx context.Context, limit int) ([]*ledger.Transaction, error)
	ListByPeriod(ctx context.Context, period ledger.Period) ([]*ledger.Transaction, error)
}

// Limits bounds the size of the recent transactions list.
type Limits struct {
	Default int
	Max     int
}

// Clamp maps any requested limit onto [1, Max]. Non-positive requests get
// the default.
func (l Limits) Clamp(limit int) int {
	if limit <= 0 {
		limit = l.Default
	}

	return min(max(limit, 1), l.Max)
}

// Service is the read-only side of the ledger. It never recomputes.
type Service struct {
	repo   Repository
	limits Limits
}

func NewService(repo Repository, limits Limits) *Service {
	if limits.Max <= 0 {
		limits.Max = 100
	}

	if limits.Default <= 0 || limits.Default > limits.Max {
		limits.Default = min(10, limits.Max)
	}

	return &Service{repo: repo, limits: limits}
}

// GetMonthlyTotals returns the cached summary of period, or ledger.ErrNotFound
// when it has never been computed.
func (s *Service) GetMonthlyTotals(ctx context.Context, period ledger.Period) (*ledger.MonthlySummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	summary, err := s.repo.GetSummary(ctx, period)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, ledger.ErrNotFound
		}

		return nil, &ledger.StorageError{Op: "get summary", Err: err}
	}

	return summary, nil
}

// GetRecentTransactions returns the newest transactions with their creator
// name resolved, newest first.
func (s *Service) GetRecentTransactions(ctx context.Context, limit int) ([]*ledger.Transaction, error) {
	txs, err := s.repo.ListRecent(ctx, s.limits.Clamp(limit))
	if err != nil {
		return nil, &ledger.StorageError{Op: "list recent transactions", Err: err}
	}

	return txs, nil
}

// ListPeriod returns every transaction of period ordered by date.
func (s *Service) ListPeriod(ctx context.Context, period ledger.Period) ([]*ledger.Transaction, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	txs, err := s.repo.ListByPeriod(ctx, period)
	if err != nil {
		return nil, &ledger.StorageError{Op: "list period transactions", Err: err}
	}

	return txs, nil
}

// Limits returns the effective bounds of the recent list.
func (s *Service) Limits() Limits {
	return s.limits
}
