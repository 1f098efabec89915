package ledger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Append(ctx context.Context, tx *Transaction) error
	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, candidates []Candidate) ([]*Transaction, error)
	AppendBatch(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Recomputer rebuilds the cached summary of a period from its transactions.
type Recomputer interface {
	Recompute(ctx context.Context, period Period) (*MonthlySummary, error)
}

type Service struct {
	repo      Repository
	summaries Recomputer
	now       func() time.Time
}

func NewService(repo Repository, summaries Recomputer) *Service {
	return &Service{
		repo:      repo,
		summaries: summaries,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for CreatedAt. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordTransaction validates and stores a candidate, then refreshes the
// summary of its period. The append happens before the recompute, so a
// summary read after a successful return includes the new transaction.
//
// If only the recompute fails, the stored transaction is returned together
// with an error matching ErrSummaryStale.
func (s *Service) RecordTransaction(ctx context.Context, c Candidate) (*Transaction, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	tx := s.newTransaction(c)
	if err := s.repo.Append(ctx, tx); err != nil {
		return nil, storageErr("append transaction", err)
	}

	if _, err := s.summaries.Recompute(ctx, tx.Period()); err != nil {
		slog.WarnContext(ctx, "summary recompute after append failed",
			"transaction_id", tx.ID, "period", tx.Period().String(), "error", err)

		return tx, fmt.Errorf("%w: %w", ErrSummaryStale, err)
	}

	return tx, nil
}

// RecomputeSummary rebuilds the summary of a period on demand.
func (s *Service) RecomputeSummary(ctx context.Context, period Period) (*MonthlySummary, error) {
	return s.summaries.Recompute(ctx, period)
}

type ImportResult struct {
	Imported  []*Transaction
	New       []Candidate
	Conflicts []Conflict
}

// Conflict pairs an incoming row with the stored transaction it duplicates.
type Conflict struct {
	Incoming Candidate
	Existing *Transaction
}

// ImportBatch records a batch of candidates in one storage transaction.
// Every candidate is validated first; a single invalid row rejects the batch.
// When any candidate duplicates a stored transaction nothing is written and
// the conflicts are returned for review (see RecordBatch).
func (s *Service) ImportBatch(ctx context.Context, candidates []Candidate) (*ImportResult, error) {
	if len(candidates) == 0 {
		return &ImportResult{}, nil
	}

	if err := validateBatch(candidates); err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(candidates)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, storageErr("begin import", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, candidates)
	if err != nil {
		return nil, storageErr("find duplicates", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Type, d.Amount, d.Description)] = d
	}

	var fresh []Candidate

	var conflicts []Conflict

	for _, c := range candidates {
		existing, found := lookup[keyOf(c.Date, c.Type, c.Amount, c.Description)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: c, Existing: existing})
			continue
		}

		fresh = append(fresh, c)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: fresh, Conflicts: conflicts}, nil
	}

	txs, err := s.appendBatch(ctx, itx, fresh)
	if err != nil {
		return nil, err
	}

	return &ImportResult{Imported: txs}, s.recomputeAll(ctx, txs)
}

// RecordBatch stores candidates without duplicate detection, typically after
// the user reviewed the conflicts reported by ImportBatch.
func (s *Service) RecordBatch(ctx context.Context, candidates []Candidate) ([]*Transaction, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	if err := validateBatch(candidates); err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(candidates)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, storageErr("begin import", err)
	}
	defer itx.Rollback()

	txs, err := s.appendBatch(ctx, itx, candidates)
	if err != nil {
		return nil, err
	}

	return txs, s.recomputeAll(ctx, txs)
}

func (s *Service) appendBatch(ctx context.Context, itx ImportTx, candidates []Candidate) ([]*Transaction, error) {
	txs := make([]*Transaction, len(candidates))
	for i, c := range candidates {
		txs[i] = s.newTransaction(c)
	}

	if err := itx.AppendBatch(ctx, txs); err != nil {
		return nil, storageErr("append transactions", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, storageErr("commit import", err)
	}

	return txs, nil
}

// recomputeAll refreshes every period touched by txs, in chronological order.
func (s *Service) recomputeAll(ctx context.Context, txs []*Transaction) error {
	var periods []Period

	for _, tx := range txs {
		p := tx.Period()
		if !slices.Contains(periods, p) {
			periods = append(periods, p)
		}
	}

	slices.SortFunc(periods, func(a, b Period) int {
		return a.Start().Compare(b.Start())
	})

	var errs []error

	for _, p := range periods {
		if _, err := s.summaries.Recompute(ctx, p); err != nil {
			slog.WarnContext(ctx, "summary recompute after import failed", "period", p.String(), "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSummaryStale, errors.Join(errs...))
	}

	return nil
}

func (s *Service) newTransaction(c Candidate) *Transaction {
	method := c.PaymentMethod
	if method == "" {
		method = PaymentCash
	}

	return &Transaction{
		ID:              uuid.New(),
		Date:            DateOnly(c.Date),
		Category:        c.Category,
		Type:            c.Type,
		Amount:          c.Amount,
		Description:     strings.TrimSpace(c.Description),
		DonorName:       strings.TrimSpace(c.DonorName),
		DonorPhone:      strings.TrimSpace(c.DonorPhone),
		PaymentMethod:   method,
		ReferenceNumber: strings.TrimSpace(c.ReferenceNumber),
		Notes:           c.Notes,
		Status:          StatusVerified,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       s.now().UTC(),
	}
}

func validateBatch(candidates []Candidate) error {
	for i, c := range candidates {
		if err := Validate(c); err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				vErr.Row = cmp.Or(c.Row, i+1)
			}

			return err
		}
	}

	return nil
}

type dupKey struct {
	Date        string
	Type        Type
	Amount      int64
	Description string
}

func keyOf(date time.Time, typ Type, amount int64, desc string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Type:        typ,
		Amount:      amount,
		Description: strings.ToLower(strings.TrimSpace(desc)),
	}
}

func dateRange(candidates []Candidate) (time.Time, time.Time) {
	minDate := DateOnly(candidates[0].Date)
	maxDate := minDate

	for _, c := range candidates[1:] {
		d := DateOnly(c.Date)
		if d.Before(minDate) {
			minDate = d
		}

		if d.After(maxDate) {
			maxDate = d
		}
	}

	return minDate, maxDate
}
