package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/MrJamesThe3rd/infaq/internal/database"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/summary"
)

// MaxRecentLimit is the hard ceiling for ListRecent, whatever the caller asks.
const MaxRecentLimit = 500

const defaultTimeout = 5 * time.Second

type Store struct {
	db      *database.DB
	timeout time.Duration
}

func New(db *database.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Store{db: db, timeout: timeout}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *database.DB and *database.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Date(t time.Time) any
	Time(t time.Time) any
	Driver() database.Driver
}

const selectTransactionColumns = `
	t.id, t.transaction_date, t.category, t.type, t.amount, t.description,
	t.donor_name, t.donor_phone, t.payment_method, t.reference_number, t.notes,
	t.status, t.created_by, u.display_name AS creator_name, t.created_at
`

// scanTransaction reads a row selected with selectTransactionColumns.
func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var category, typ, method, status string

	var donorName, donorPhone, reference, notes, createdBy, creatorName sql.NullString

	if err := s.Scan(
		&tx.ID, database.TimeValue{Time: &tx.Date}, &category, &typ, &tx.Amount, &tx.Description,
		&donorName, &donorPhone, &method, &reference, &notes,
		&status, &createdBy, &creatorName, database.TimeValue{Time: &tx.CreatedAt},
	); err != nil {
		return nil, err
	}

	tx.Category = ledger.Category(category)
	tx.Type = ledger.Type(typ)
	tx.PaymentMethod = ledger.PaymentMethod(method)
	tx.Status = ledger.Status(status)
	tx.DonorName = donorName.String
	tx.DonorPhone = donorPhone.String
	tx.ReferenceNumber = reference.String
	tx.Notes = notes.String
	tx.CreatedBy = createdBy.String
	tx.CreatorName = creatorName.String

	return &tx, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const insertTransaction = `
	INSERT INTO transactions (
		id, transaction_date, category, type, amount, description,
		donor_name, donor_phone, payment_method, reference_number, notes,
		status, created_by, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

func insert(ctx context.Context, q queryer, tx *ledger.Transaction) error {
	_, err := q.ExecContext(ctx, insertTransaction,
		tx.ID,
		q.Date(tx.Date),
		tx.Category,
		tx.Type,
		tx.Amount,
		tx.Description,
		nullString(tx.DonorName),
		nullString(tx.DonorPhone),
		tx.PaymentMethod,
		nullString(tx.ReferenceNumber),
		nullString(tx.Notes),
		tx.Status,
		nullString(tx.CreatedBy),
		q.Time(tx.CreatedAt),
	)

	return err
}

func (s *Store) Append(ctx context.Context, tx *ledger.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := insert(ctx, s.db, tx); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func listByPeriod(ctx context.Context, q queryer, period ledger.Period) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		LEFT JOIN users u ON t.created_by = u.id
		WHERE t.transaction_date >= $1 AND t.transaction_date < $2
		ORDER BY t.transaction_date ASC, t.created_at ASC`

	rows, err := q.QueryContext(ctx, query, q.Date(period.Start()), q.Date(period.End()))
	if err != nil {
		return nil, fmt.Errorf("listing period transactions: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]*ledger.Transaction, error) {
	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) ListByPeriod(ctx context.Context, period ledger.Period) ([]*ledger.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return listByPeriod(ctx, s.db, period)
}

// ListRecent returns the newest transactions first. limit is bound as a query
// parameter and clamped to [1, MaxRecentLimit].
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*ledger.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	limit = min(max(limit, 1), MaxRecentLimit)

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		LEFT JOIN users u ON t.created_by = u.id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent transactions: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (s *Store) GetSummary(ctx context.Context, period ledger.Period) (*ledger.MonthlySummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT total_income, total_expense, balance, computed_at
		FROM monthly_summaries
		WHERE year = $1 AND month = $2`

	sum := ledger.MonthlySummary{Period: period}

	err := s.db.QueryRowContext(ctx, query, period.Year, int(period.Month)).Scan(
		&sum.Totals.Income, &sum.Totals.Expense, &sum.Totals.Balance,
		database.TimeValue{Time: &sum.ComputedAt},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting summary: %w", err)
	}

	return &sum, nil
}

func periodLockKey(period ledger.Period) int64 {
	h := fnv.New64a()
	h.Write([]byte("monthly_summary"))
	h.Write([]byte{0})
	h.Write([]byte(period.String()))

	return int64(h.Sum64())
}

type recomputeTx struct {
	tx     *database.Tx
	cancel context.CancelFunc
}

// BeginRecompute opens the transaction a summary recompute runs in. On
// PostgreSQL recomputes of the same period are serialised with an advisory
// transaction lock; SQLite already has a single writer.
func (s *Store) BeginRecompute(ctx context.Context, period ledger.Period) (summary.RecomputeTx, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("beginning recompute tx: %w", err)
	}

	if dbTx.Driver() == database.DriverPostgres {
		if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", periodLockKey(period)); err != nil {
			dbTx.Rollback()
			cancel()

			return nil, fmt.Errorf("acquiring summary lock: %w", err)
		}
	}

	return &recomputeTx{tx: dbTx, cancel: cancel}, nil
}

func (r *recomputeTx) ListByPeriod(ctx context.Context, period ledger.Period) ([]*ledger.Transaction, error) {
	return listByPeriod(ctx, r.tx, period)
}

// UpsertSummary replaces the whole row in a single statement.
func (r *recomputeTx) UpsertSummary(ctx context.Context, sum *ledger.MonthlySummary) error {
	query := `
		INSERT INTO monthly_summaries (year, month, total_income, total_expense, balance, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (year, month) DO UPDATE SET
			total_income = EXCLUDED.total_income,
			total_expense = EXCLUDED.total_expense,
			balance = EXCLUDED.balance,
			computed_at = EXCLUDED.computed_at`

	_, err := r.tx.ExecContext(ctx, query,
		sum.Period.Year,
		int(sum.Period.Month),
		sum.Totals.Income,
		sum.Totals.Expense,
		sum.Totals.Balance,
		r.tx.Time(sum.ComputedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting summary: %w", err)
	}

	return nil
}

func (r *recomputeTx) Commit() error {
	defer r.cancel()
	return r.tx.Commit()
}

func (r *recomputeTx) Rollback() error {
	defer r.cancel()
	return r.tx.Rollback()
}
