package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one live refresh-token lineage. The raw refresh token is never
// stored; only its SHA-256 hash.
type Session struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           int64      `json:"user_id" db:"user_id"`
	RefreshTokenHash string     `json:"-" db:"refresh_token_hash"`
	UserAgent        string     `json:"user_agent,omitempty" db:"user_agent"`
	IPAddress        string     `json:"ip_address,omitempty" db:"ip_address"`
	ExpiresAt        time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// Active reports whether the session can still authorize a refresh.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
