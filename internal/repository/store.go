package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store bundles the repositories behind one handle so the service layer can
// run multi-step writes atomically. WithinTx runs fn against a Store whose
// repositories share a single transaction; all writes commit together or not
// at all.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}
