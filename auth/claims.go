package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType tells access tokens and refresh tokens apart
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the JWT claims we sign. Every token carries a unique ID
// so two tokens minted in the same second never collide.
type Claims struct {
	jwt.RegisteredClaims
	Type TokenType `json:"typ"`
}

// UserID returns the subject the token was issued to
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenID returns the jti claim
func (c *Claims) TokenID() string {
	return c.ID
}

// Expires returns the expiration time or the zero time
func (c *Claims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IsAccess reports whether the claims belong to an access token
func (c *Claims) IsAccess() bool {
	return c.Type == TokenTypeAccess
}

// IsRefresh reports whether the claims belong to a refresh token
func (c *Claims) IsRefresh() bool {
	return c.Type == TokenTypeRefresh
}
