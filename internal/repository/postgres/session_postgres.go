package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/simonesiega/studyWS/internal/domain"
	"github.com/simonesiega/studyWS/internal/repository"
)

type sessionRepository struct {
	q querier
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, refresh_token_hash, user_agent,
			ip_address, expires_at, created_at
		) VALUES (
			:id, :user_id, :refresh_token_hash, :user_agent,
			:ip_address, :expires_at, :created_at
		)`

	_, err := sqlx.NamedExecContext(ctx, r.q, query, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetActiveByUserAndHash(ctx context.Context, userID int64, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, refresh_token_hash, user_agent,
			   ip_address, expires_at, revoked_at, created_at
		FROM sessions
		WHERE user_id = $1
		  AND refresh_token_hash = $2
		  AND revoked_at IS NULL
		  AND expires_at > $3`

	var session domain.Session
	err := r.q.GetContext(ctx, &session, query, userID, tokenHash, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session by token hash: %w", err)
	}

	return &session, nil
}

// Revoke marks the session revoked. The UPDATE predicate re-checks
// revoked_at against committed state, so of two concurrent callers only one
// sees a row transition; the loser gets ErrNotFound and must treat the
// session as already claimed.
func (r *sessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`

	result, err := r.q.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	query := `UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`

	_, err := r.q.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	return nil
}

func (r *sessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`

	result, err := r.q.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
