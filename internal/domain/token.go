package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"-"`
	TokenType    string    `json:"token_type"`
}

// Claims is the signed claim set carried by both token kinds. Refresh tokens
// additionally set RegisteredClaims.ID (jti) as decorrelating entropy; it is
// not a lookup key.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	TokenType string `json:"type"`
}
