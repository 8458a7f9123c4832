// Package memory provides an in-memory repository.Store used as a test
// double. Writes are not transactional: WithinTx serializes callers but does
// not roll back on error, which is sufficient for exercising service logic.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simonesiega/studyWS/internal/domain"
	"github.com/simonesiega/studyWS/internal/repository"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*domain.User
	sessions map[uuid.UUID]*domain.Session
}

func NewStore() *Store {
	return &Store{
		nextID:   1,
		users:    make(map[int64]*domain.User),
		sessions: make(map[uuid.UUID]*domain.Session),
	}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{store: s}
}

func (s *Store) Sessions() repository.SessionRepository {
	return &sessionRepo{store: s}
}

func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

type userRepo struct {
	store *Store
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	user.ID = r.store.nextID
	r.store.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return nil
}

type sessionRepo struct {
	store *Store
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *session
	r.store.sessions[session.ID] = &clone
	return nil
}

func (r *sessionRepo) GetActiveByUserAndHash(ctx context.Context, userID int64, tokenHash string) (*domain.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for _, sess := range r.store.sessions {
		if sess.UserID == userID && sess.RefreshTokenHash == tokenHash && sess.Active(now) {
			clone := *sess
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *sessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sess, ok := r.store.sessions[id]
	if !ok || sess.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	sess.RevokedAt = &now
	return nil
}

func (r *sessionRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for _, sess := range r.store.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			revokedAt := now
			sess.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (r *sessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	var purged int64
	for id, sess := range r.store.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(r.store.sessions, id)
			purged++
		}
	}
	return purged, nil
}
