package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/infaq/internal/database"
	"github.com/MrJamesThe3rd/infaq/internal/user"
)

type Store struct {
	db  *database.DB
	now func() time.Time
}

func New(db *database.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Upsert(ctx context.Context, u user.User) error {
	query := `
		INSERT INTO users (id, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, u.ID, u.DisplayName, s.db.Time(s.now()))
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT id, display_name FROM users WHERE id = $1`

	var u user.User

	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.DisplayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &u, nil
}
