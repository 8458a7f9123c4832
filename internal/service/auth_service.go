package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/simonesiega/studyWS/internal/apperr"
	"github.com/simonesiega/studyWS/internal/domain"
	"github.com/simonesiega/studyWS/internal/repository"
	"github.com/simonesiega/studyWS/pkg/hash"
	"github.com/simonesiega/studyWS/pkg/jwt"
)

// Client-safe messages. Unknown email and wrong password are deliberately
// indistinguishable, as are the different refresh-token failure modes.
const (
	msgInvalidCredentials = "invalid email or password"
	msgInvalidRefresh     = "invalid or expired refresh token"
	msgSessionNotFound    = "session not found or revoked"
)

// AuthService orchestrates register, login, refresh and logout. Each flow
// runs its writes inside a single store transaction.
type AuthService struct {
	store  repository.Store
	tokens *jwt.TokenService
}

func NewAuthService(store repository.Store, tokens *jwt.TokenService) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ClientMeta is audit metadata tagged onto sessions.
type ClientMeta struct {
	UserAgent string
	IP        string
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User      *domain.User
	Tokens    *domain.TokenPair
	SessionID uuid.UUID
}

// RefreshResult is the outcome of a successful rotation.
type RefreshResult struct {
	Tokens    *domain.TokenPair
	SessionID uuid.UUID
}

// Register creates a user and their first session. The user insert and the
// session insert commit together; a failure after the insert must not leave
// an orphaned user with no session.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, meta ClientMeta) (*AuthResult, error) {
	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, apperr.Validation("password must be at most 72 characters")
		}
		return nil, apperr.Internal(err)
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	var result *AuthResult
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return apperr.Conflict("email already registered")
			}
			return apperr.Internal(err)
		}

		result, err = s.openSession(ctx, tx, user, meta)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Login verifies credentials and opens a new session. The last-access touch
// and the session insert commit together.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, meta ClientMeta) (*AuthResult, error) {
	user, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth(msgInvalidCredentials)
		}
		return nil, apperr.Internal(err)
	}

	if !hash.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, apperr.Auth(msgInvalidCredentials)
	}

	var result *AuthResult
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().TouchLastLogin(ctx, user.ID); err != nil {
			return apperr.Internal(err)
		}

		result, err = s.openSession(ctx, tx, user, meta)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Refresh rotates a refresh token: the presented token's session is revoked
// and a successor session is created in the same transaction, so the old
// token is single-use and partial rotation is impossible.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*RefreshResult, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return nil, apperr.Auth(msgInvalidRefresh)
	}

	if claims.TokenType != domain.TokenTypeRefresh {
		return nil, apperr.Auth(msgInvalidRefresh)
	}

	userID, err := jwt.SubjectUserID(claims)
	if err != nil {
		return nil, apperr.Auth(msgInvalidRefresh)
	}

	tokenHash := hashToken(refreshToken)

	var result *RefreshResult
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		session, err := tx.Sessions().GetActiveByUserAndHash(ctx, userID, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Auth(msgSessionNotFound)
			}
			return apperr.Internal(err)
		}

		// A concurrent rotation of the same token can commit first; the
		// loser's revoke then matches nothing and the token counts as
		// already spent.
		if err := tx.Sessions().Revoke(ctx, session.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Auth(msgSessionNotFound)
			}
			return apperr.Internal(err)
		}

		pair, err := s.tokens.GenerateTokenPair(userID, claims.Email)
		if err != nil {
			return apperr.Internal(err)
		}

		sessionID, err := s.createSession(ctx, tx, userID, pair.RefreshToken, meta)
		if err != nil {
			return err
		}

		result = &RefreshResult{Tokens: pair, SessionID: sessionID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Logout revokes every active session of the user. Sessions are not bound to
// devices at the access-token layer, so logout is global. Repeated calls are
// harmless no-ops.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.store.Sessions().RevokeAllForUser(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// GetUser resolves a user by id for the request authenticator.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth("user no longer exists")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// AccessExpiry exposes the access-token lifetime for the expires_in field.
func (s *AuthService) AccessExpiry() time.Duration {
	return s.tokens.AccessExpiry()
}

// Sweep hard-deletes expired sessions. Storage hygiene only.
func (s *AuthService) Sweep(ctx context.Context) (int64, error) {
	return s.store.Sessions().PurgeExpired(ctx)
}

func (s *AuthService) openSession(ctx context.Context, tx repository.Store, user *domain.User, meta ClientMeta) (*AuthResult, error) {
	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	sessionID, err := s.createSession(ctx, tx, user.ID, pair.RefreshToken, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair, SessionID: sessionID}, nil
}

func (s *AuthService) createSession(ctx context.Context, tx repository.Store, userID int64, refreshToken string, meta ClientMeta) (uuid.UUID, error) {
	session := &domain.Session{
		ID:               uuid.New(),
		UserID:           userID,
		RefreshTokenHash: hashToken(refreshToken),
		UserAgent:        meta.UserAgent,
		IPAddress:        meta.IP,
		ExpiresAt:        time.Now().Add(s.tokens.RefreshExpiry()),
		CreatedAt:        time.Now(),
	}

	if err := tx.Sessions().Create(ctx, session); err != nil {
		return uuid.Nil, apperr.Internal(err)
	}

	return session.ID, nil
}

// hashToken creates the SHA-256 hash under which refresh tokens are stored
// and looked up. The raw token never touches the database.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
