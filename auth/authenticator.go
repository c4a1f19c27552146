package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Authenticator resolves access tokens into identities
type Authenticator struct {
	tokens *TokenService
	users  Users
	db     bun.IDB
	logger Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, tokens *TokenService) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  repo.Users(),
		db:     repo.DB(),
		logger: defLogger{},
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Resolve returns the User an access token was issued to. Every
// token or lookup failure is reported as ErrUnauthenticated; only
// storage failures come back as they are.
func (a *Authenticator) Resolve(ctx context.Context, accessToken string) (*User, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := a.tokens.DecodeAs(accessToken, TokenTypeAccess)
	if err != nil {
		a.logger.Debug("access token rejected", "error", err)
		return nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		a.logger.Debug("access token subject is not an identity id", "sub", claims.UserID())
		return nil, ErrUnauthenticated
	}

	user, err := a.users.GetByUserIDTx(ctx, a.db, id)
	if err != nil {
		if goerrors.Is(err, ErrIdentityNotFound) {
			a.logger.Debug("access token subject not found", "sub", claims.UserID())
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}
