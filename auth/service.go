package auth

import (
	"context"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	TokenTypeBearer = "bearer"

	operationTimeout = 10 * time.Second
)

// RegisterUserMessage carries the credentials of a new identity
type RegisterUserMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate checks the email shape and that a password was given.
// Passwords over 72 bytes are rejected by HashPassword.
func (e RegisterUserMessage) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(&e.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
			validation.Field(&e.Password, validation.Required),
		)
	}, "invalid registration payload")
}

// LoginMessage carries the credentials presented at login
type LoginMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e LoginMessage) Type() string { return "user.login" }

// TokenPair is what login and refresh hand back to the client
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Service implements registration, login, refresh and logout
type Service struct {
	repo   RepositoryManager
	tokens *TokenService
	clock  Clock
	logger Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(repo RepositoryManager, tokens *TokenService) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		clock:  SystemClock,
		logger: defLogger{},
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Service) WithClock(clock Clock) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Register creates a new identity
func (s *Service) Register(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during user registration")
	default:
	}

	msg.Email = NormalizeEmail(msg.Email)
	if verr := msg.Validate(); verr != nil {
		return nil, verr.WithCode(goerrors.CodeBadRequest)
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	var user *User
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Users().GetByEmailTx(ctx, tx, msg.Email); err == nil {
			return ErrEmailTaken
		} else if !goerrors.Is(err, ErrIdentityNotFound) {
			return err
		}

		record, err := s.repo.Users().RegisterTx(ctx, tx, &User{
			Email:        msg.Email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		user = record
		return nil
	})

	if err != nil {
		return nil, internalError(err, "failed to register user")
	}

	s.logger.Info("user registered", "user_id", user.ID.String())
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. The new
// refresh token replaces whatever session the identity held before.
func (s *Service) Login(ctx context.Context, msg LoginMessage) (*TokenPair, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during login")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	user, err := s.repo.Users().GetByEmailTx(ctx, s.repo.DB(), msg.Email)
	if err != nil {
		if !goerrors.Is(err, ErrIdentityNotFound) {
			return nil, err
		}
		// keep the response time of unknown emails close to known ones
		VerifyPassword(msg.Password, s.placeholderHash())
		s.logger.Debug("login for unknown identity")
		return nil, ErrUnauthenticated
	}

	if !VerifyPassword(msg.Password, user.PasswordHash) {
		s.logger.Debug("login password mismatch", "user_id", user.ID.String())
		return nil, ErrUnauthenticated
	}

	var pair *TokenPair
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		issued, err := s.issuePair(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		pair = issued
		return nil
	})

	if err != nil {
		return nil, internalError(err, "failed to login")
	}

	return pair, nil
}

// Refresh consumes a refresh token and issues a new pair. The presented
// token is deleted even when it turns out to be unusable, so a token
// can only ever be redeemed once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during token refresh")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	var (
		pair     *TokenPair
		rejected error
	)

	sessions := s.repo.Sessions()
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		subject, err := sessions.Consume(ctx, tx, refreshToken)
		if err != nil {
			if goerrors.Is(err, ErrSessionNotFound) {
				rejected = err
				return nil
			}
			return err
		}

		deleted, err := sessions.Delete(ctx, tx, refreshToken)
		if err != nil {
			return err
		}
		if !deleted {
			// redeemed concurrently
			rejected = ErrSessionNotFound
			return nil
		}

		claims, err := s.tokens.DecodeAs(refreshToken, TokenTypeRefresh)
		if err != nil {
			// commit the deletion, report after
			rejected = err
			return nil
		}

		if claims.UserID() != subject.String() {
			rejected = ErrTokenMalformed
			return nil
		}

		issued, err := s.issuePair(ctx, tx, subject)
		if err != nil {
			return err
		}
		pair = issued
		return nil
	})

	if err != nil {
		return nil, internalError(err, "failed to refresh token")
	}

	if rejected != nil {
		s.logger.Debug("refresh token rejected", "error", rejected)
		return nil, ErrUnauthenticated
	}

	return pair, nil
}

// Logout revokes the refresh session of user
func (s *Service) Logout(ctx context.Context, user *User) error {
	if user == nil {
		return ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if err := s.repo.Sessions().Revoke(ctx, s.repo.DB(), user.ID); err != nil {
		return err
	}

	s.logger.Debug("user logged out", "user_id", user.ID.String())
	return nil
}

// PurgeExpiredSessions removes refresh sessions that expired by now
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.Sessions().Purge(ctx, s.repo.DB(), s.clock.Now())
}

func (s *Service) issuePair(ctx context.Context, tx bun.IDB, subject uuid.UUID) (*TokenPair, error) {
	now := s.clock.Now()

	access, accessExp, err := s.tokens.IssueAccess(subject.String(), now)
	if err != nil {
		return nil, err
	}

	refresh, refreshExp, err := s.tokens.IssueRefresh(subject.String(), now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Sessions().IssueSession(ctx, tx, subject, refresh, refreshExp); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        TokenTypeBearer,
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash = RandomPasswordHash()
	})
	return s.dummyHash
}
