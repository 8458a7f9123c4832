package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/simonesiega/studyWS/internal/domain"
	"github.com/simonesiega/studyWS/internal/repository"
)

func TestRevokeIsSingleUse(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session := &domain.Session{
		ID:               uuid.New(),
		UserID:           1,
		RefreshTokenHash: "deadbeef",
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	if err := store.Sessions().Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.Sessions().Revoke(ctx, session.ID); err != nil {
		t.Fatalf("first revoke failed: %v", err)
	}

	// Only one caller may transition a session to revoked.
	if err := store.Sessions().Revoke(ctx, session.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second revoke returned %v, want ErrNotFound", err)
	}
}

func TestRevokeUnknownSession(t *testing.T) {
	store := NewStore()

	err := store.Sessions().Revoke(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("revoke of unknown session returned %v, want ErrNotFound", err)
	}
}
