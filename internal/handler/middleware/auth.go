package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/simonesiega/studyWS/internal/apperr"
	"github.com/simonesiega/studyWS/internal/domain"
	"github.com/simonesiega/studyWS/internal/service"
	"github.com/simonesiega/studyWS/pkg/jwt"
)

const identityKey = "auth_identity"

// Identity is the minimal request-scoped view of the authenticated user
// exposed to downstream handlers. It lives only in the request's Locals and
// is never shared across requests.
type Identity struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Authenticate validates a bearer access token and resolves it to a user
// identity. Refresh tokens never authorize API calls, and a token whose
// subject no longer exists is rejected.
func Authenticate(tokens *jwt.TokenService, authService *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperr.Auth("missing or malformed authorization header")
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return apperr.Auth("invalid token")
		}

		if claims.TokenType != domain.TokenTypeAccess {
			return apperr.Auth("invalid token")
		}

		userID, err := jwt.SubjectUserID(claims)
		if err != nil {
			return apperr.Auth("invalid token")
		}

		user, err := authService.GetUser(c.Context(), userID)
		if err != nil {
			return err
		}

		c.Locals(identityKey, &Identity{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		})

		return c.Next()
	}
}

// IdentityFromCtx returns the identity stored by Authenticate.
func IdentityFromCtx(c *fiber.Ctx) (*Identity, bool) {
	identity, ok := c.Locals(identityKey).(*Identity)
	return identity, ok
}

// bearerToken extracts the token from a case-insensitive "Bearer <token>"
// authorization header.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
