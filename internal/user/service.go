package user

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("user not found")

// User is an actor that can record ledger transactions.
type User struct {
	ID          string
	DisplayName string
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	Upsert(ctx context.Context, u User) error
	Get(ctx context.Context, id string) (*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register remembers the actor so the ledger can resolve creator names.
// A blank display name falls back to the id.
func (s *Service) Register(ctx context.Context, id, displayName string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = id
	}

	return s.repo.Upsert(ctx, User{ID: id, DisplayName: name})
}

// Get returns the user with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.Get(ctx, id)
}
