package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/simonesiega/studyWS/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// GetActiveByUserAndHash returns a session only if it is active
	// (not revoked and not expired). This is the sole authorization
	// check for the refresh flow.
	GetActiveByUserAndHash(ctx context.Context, userID int64, tokenHash string) (*domain.Session, error)
	// Revoke marks the session revoked. Returns ErrNotFound when the
	// session does not exist or was already revoked, so a rotation that
	// loses a race against a concurrent revocation can detect it.
	Revoke(ctx context.Context, id uuid.UUID) error
	// RevokeAllForUser idempotently revokes every active session of a user.
	RevokeAllForUser(ctx context.Context, userID int64) error
	// PurgeExpired hard-deletes sessions past their expiry, regardless of
	// revocation state. Storage hygiene only, never needed for correctness.
	PurgeExpired(ctx context.Context) (int64, error)
}
