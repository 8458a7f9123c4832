package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/simonesiega/studyWS/internal/apperr"
	"github.com/simonesiega/studyWS/internal/repository"
	"github.com/simonesiega/studyWS/internal/repository/memory"
	"github.com/simonesiega/studyWS/pkg/jwt"
)

const testSecret = "service-test-secret"

var testMeta = ClientMeta{UserAgent: "go-test", IP: "10.0.0.1"}

func newTestAuthService() *AuthService {
	tokens := jwt.NewTokenService(testSecret, 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(memory.NewStore(), tokens)
}

func registerAlice(t *testing.T, svc *AuthService) *AuthResult {
	t.Helper()

	result, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "alice@example.com",
		Password:  "supersecret",
		FirstName: "Alice",
		LastName:  "Liddell",
	}, testMeta)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return result
}

func errKind(t *testing.T, err error) apperr.Kind {
	t.Helper()

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an apperr.Error", err)
	}
	return appErr.Kind
}

func TestRegisterIssuesTokensAndSession(t *testing.T) {
	svc := newTestAuthService()
	result := registerAlice(t, svc)

	if result.User.ID == 0 {
		t.Error("registered user has no id")
	}
	if result.User.PasswordHash == "supersecret" {
		t.Error("password stored in plain text")
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Error("register returned incomplete token pair")
	}

	// The issued refresh token must open a session that refresh accepts.
	if _, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken, testMeta); err != nil {
		t.Errorf("refresh with freshly issued token failed: %v", err)
	}
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	svc := newTestAuthService()

	// bcrypt caps input at 72 bytes; anything longer is a client error.
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "alice@example.com",
		Password:  strings.Repeat("a", 80),
		FirstName: "Alice",
		LastName:  "Liddell",
	}, testMeta)
	if err == nil {
		t.Fatal("registration with 80-byte password succeeded")
	}
	if kind := errKind(t, err); kind != apperr.KindValidation {
		t.Errorf("error kind = %d, want validation", kind)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "alice@example.com",
		Password:  "anothersecret",
		FirstName: "Alice",
		LastName:  "Liddell",
	}, testMeta)
	if err == nil {
		t.Fatal("duplicate registration succeeded")
	}
	if kind := errKind(t, err); kind != apperr.KindConflict {
		t.Errorf("error kind = %d, want conflict", kind)
	}
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	svc := newTestAuthService()
	registerAlice(t, svc)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "supersecret",
	}, testMeta)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if result.User.Email != "alice@example.com" {
		t.Errorf("login returned wrong user %q", result.User.Email)
	}
	if result.Tokens.AccessToken == "" {
		t.Error("login returned no access token")
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLoginFailuresAreUniform(t *testing.T) {
	svc := newTestAuthService()
	registerAlice(t, svc)

	_, errUnknown := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "supersecret",
	}, testMeta)
	_, errWrongPw := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrongpassword",
	}, testMeta)

	if errUnknown == nil || errWrongPw == nil {
		t.Fatal("expected both logins to fail")
	}
	if errKind(t, errUnknown) != apperr.KindAuth || errKind(t, errWrongPw) != apperr.KindAuth {
		t.Error("credential failures are not auth errors")
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("oracle: unknown email %q vs wrong password %q", errUnknown, errWrongPw)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc := newTestAuthService()
	result := registerAlice(t, svc)

	rotated, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken, testMeta)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if rotated.SessionID == result.SessionID {
		t.Error("rotation reused the old session id")
	}
	if rotated.Tokens.RefreshToken == result.Tokens.RefreshToken {
		t.Error("rotation returned the same refresh token")
	}

	// The presented token is single-use: replay must be rejected.
	_, err = svc.Refresh(context.Background(), result.Tokens.RefreshToken, testMeta)
	if err == nil {
		t.Fatal("replayed refresh token accepted")
	}
	if kind := errKind(t, err); kind != apperr.KindAuth {
		t.Errorf("replay error kind = %d, want auth", kind)
	}

	// The successor token works exactly once more.
	if _, err := svc.Refresh(context.Background(), rotated.Tokens.RefreshToken, testMeta); err != nil {
		t.Errorf("successor refresh token rejected: %v", err)
	}
}

// claimedSessionStore simulates losing the rotation race: the session is
// still readable, but by revoke time another rotation has already claimed it.
type claimedSessionStore struct {
	repository.Store
}

func (s *claimedSessionStore) Sessions() repository.SessionRepository {
	return &claimedSessions{s.Store.Sessions()}
}

func (s *claimedSessionStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(&claimedSessionStore{tx})
	})
}

type claimedSessions struct {
	repository.SessionRepository
}

func (s *claimedSessions) Revoke(ctx context.Context, id uuid.UUID) error {
	return repository.ErrNotFound
}

func TestRefreshLosingRotationRaceIsRejected(t *testing.T) {
	tokens := jwt.NewTokenService(testSecret, 15*time.Minute, 7*24*time.Hour)
	svc := NewAuthService(&claimedSessionStore{memory.NewStore()}, tokens)
	result := registerAlice(t, svc)

	_, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken, testMeta)
	if err == nil {
		t.Fatal("rotation of an already-claimed session succeeded")
	}
	if kind := errKind(t, err); kind != apperr.KindAuth {
		t.Errorf("error kind = %d, want auth", kind)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestAuthService()
	result := registerAlice(t, svc)

	_, err := svc.Refresh(context.Background(), result.Tokens.AccessToken, testMeta)
	if err == nil {
		t.Fatal("access token accepted by refresh")
	}
	if kind := errKind(t, err); kind != apperr.KindAuth {
		t.Errorf("error kind = %d, want auth", kind)
	}
}

func TestRefreshRejectsForeignToken(t *testing.T) {
	svc := newTestAuthService()
	registerAlice(t, svc)

	// Validly signed but never issued by this system: no session exists.
	other := jwt.NewTokenService(testSecret, 15*time.Minute, time.Hour)
	pair, err := other.GenerateTokenPair(1, "alice@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Refresh(context.Background(), pair.RefreshToken, testMeta); err == nil {
		t.Error("refresh token without a session accepted")
	}
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	svc := newTestAuthService()
	first := registerAlice(t, svc)

	second, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "supersecret",
	}, testMeta)
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), first.User.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	for name, token := range map[string]string{
		"register session": first.Tokens.RefreshToken,
		"login session":    second.Tokens.RefreshToken,
	} {
		if _, err := svc.Refresh(context.Background(), token, testMeta); err == nil {
			t.Errorf("%s still refreshable after logout", name)
		}
	}

	// Idempotent: a second logout is a harmless no-op.
	if err := svc.Logout(context.Background(), first.User.ID); err != nil {
		t.Errorf("repeated logout failed: %v", err)
	}
}

func TestSweepPurgesExpiredSessions(t *testing.T) {
	// Negative refresh expiry makes every session already expired.
	tokens := jwt.NewTokenService(testSecret, 15*time.Minute, -time.Minute)
	svc := NewAuthService(memory.NewStore(), tokens)

	registerAlice(t, svc)

	count, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if count != 1 {
		t.Errorf("sweep purged %d sessions, want 1", count)
	}
}
