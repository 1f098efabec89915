package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/infaq/internal/database"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx     *database.Tx
	cancel context.CancelFunc
	minDay time.Time
	maxDay time.Time
}

// BeginImport opens the transaction a batch import runs in. Concurrent imports
// of the same date range are serialised on PostgreSQL so that duplicate
// detection sees the rows of the import that committed first.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (ledger.ImportTx, error) {
	// A batch may hold many rows; give it a multiple of the single-call budget.
	ctx, cancel := context.WithTimeout(ctx, 4*s.timeout)

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if dbTx.Driver() == database.DriverPostgres {
		if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(minDate, maxDate)); err != nil {
			dbTx.Rollback()
			cancel()

			return nil, fmt.Errorf("acquiring import lock: %w", err)
		}
	}

	return &importTx{
		tx:     dbTx,
		cancel: cancel,
		minDay: ledger.DateOnly(minDate),
		maxDay: ledger.DateOnly(maxDate),
	}, nil
}

func (itx *importTx) Commit() error {
	defer itx.cancel()
	return itx.tx.Commit()
}

func (itx *importTx) Rollback() error {
	defer itx.cancel()
	return itx.tx.Rollback()
}

// FindDuplicates returns stored transactions that share date, type, amount
// and description (case-insensitive) with any of the candidates.
func (itx *importTx) FindDuplicates(ctx context.Context, candidates []ledger.Candidate) ([]*ledger.Transaction, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Type        ledger.Type
		Amount      int64
		Description string
	}

	keySet := make(map[lookupKey]struct{}, len(candidates))

	for _, c := range candidates {
		keySet[lookupKey{
			Date:        c.Date.Format(time.DateOnly),
			Type:        c.Type,
			Amount:      c.Amount,
			Description: strings.ToLower(strings.TrimSpace(c.Description)),
		}] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		LEFT JOIN users u ON t.created_by = u.id
		WHERE t.transaction_date >= $1 AND t.transaction_date <= $2
		ORDER BY t.transaction_date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, itx.tx.Date(itx.minDay), itx.tx.Date(itx.maxDay))
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	stored, err := collect(rows)
	if err != nil {
		return nil, err
	}

	var duplicates []*ledger.Transaction

	for _, tx := range stored {
		k := lookupKey{
			Date:        tx.Date.Format(time.DateOnly),
			Type:        tx.Type,
			Amount:      tx.Amount,
			Description: strings.ToLower(strings.TrimSpace(tx.Description)),
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, tx)
	}

	return duplicates, nil
}

func (itx *importTx) AppendBatch(ctx context.Context, txs []*ledger.Transaction) error {
	for _, tx := range txs {
		if err := insert(ctx, itx.tx, tx); err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}
