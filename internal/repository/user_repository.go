package repository

import (
	"context"

	"github.com/simonesiega/studyWS/internal/domain"
)

type UserRepository interface {
	// Create inserts the user and fills in its generated id and timestamps.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// TouchLastLogin updates the last-access timestamp.
	TouchLastLogin(ctx context.Context, id int64) error
}
