package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/simonesiega/studyWS/internal/domain"
	"github.com/simonesiega/studyWS/internal/repository"
)

const pqUniqueViolation = "23505"

type userRepository struct {
	q querier
}

// Create inserts a new user and fills the generated id and timestamps.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	err := r.q.GetContext(ctx, user, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name,
			   created_at, updated_at, last_login_at
		FROM users
		WHERE id = $1`

	var user domain.User
	err := r.q.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name,
			   created_at, updated_at, last_login_at
		FROM users
		WHERE email = $1`

	var user domain.User
	err := r.q.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1`

	_, err := r.q.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
