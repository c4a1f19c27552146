package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lending/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Register(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	user := env.register(t, "  Reader@Example.COM ", "correct-horse")

	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, auth.IdentityID("reader@example.com"), user.ID)
	assert.True(t, auth.VerifyPassword("correct-horse", user.PasswordHash))

	stored, err := env.repo.Users().GetByEmailTx(context.Background(), env.db, "READER@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestService_Register_ShortPasswords(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	tests := []struct {
		email    string
		password string
	}{
		{email: "a@x.com", password: "p"},
		{email: " B@X.com", password: "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			user := env.register(t, tt.email, tt.password)
			assert.Equal(t, auth.NormalizeEmail(tt.email), user.Email)

			pair := env.login(t, tt.email, tt.password)
			assert.NotEmpty(t, pair.AccessToken)
			assert.NotEmpty(t, pair.RefreshToken)
		})
	}
}

func TestService_Register_UsesClock(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	user := env.register(t, "reader@example.com", "correct-horse")
	require.NotNil(t, user.CreatedAt)
	assert.True(t, epoch.Equal(*user.CreatedAt))

	env.clock.Advance(time.Hour)

	hash, err := auth.HashPassword("battery-staple")
	require.NoError(t, err)
	require.NoError(t, env.repo.Users().UpdatePasswordTx(context.Background(), env.db, user.ID, hash))

	stored, err := env.repo.Users().GetByEmailTx(context.Background(), env.db, "reader@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.UpdatedAt)
	assert.True(t, epoch.Add(time.Hour).Equal(stored.UpdatedAt.UTC()))
	require.NotNil(t, stored.CreatedAt)
	assert.True(t, epoch.Equal(stored.CreatedAt.UTC()))
}

func TestService_Register_Duplicate(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	env.register(t, "reader@example.com", "correct-horse")

	_, err := env.service.Register(context.Background(), auth.RegisterUserMessage{
		Email:    "READER@example.com",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestService_Register_Validation(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	tests := []struct {
		name  string
		msg   auth.RegisterUserMessage
		field string
	}{
		{name: "missing email", msg: auth.RegisterUserMessage{Password: "correct-horse"}, field: "email"},
		{name: "malformed email", msg: auth.RegisterUserMessage{Email: "not-an-email", Password: "correct-horse"}, field: "email"},
		{name: "blank email", msg: auth.RegisterUserMessage{Email: "   ", Password: "correct-horse"}, field: "email"},
		{name: "empty password", msg: auth.RegisterUserMessage{Email: "a@example.com", Password: ""}, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.Register(context.Background(), tt.msg)
			require.Error(t, err)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
			assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)
			assert.Contains(t, richErr.ValidationMap(), tt.field)
		})
	}
}

func TestService_Login(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	user := env.register(t, "reader@example.com", "correct-horse")
	pair := env.login(t, "Reader@example.com", "correct-horse")

	assert.Equal(t, auth.TokenTypeBearer, pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.Equal(epoch.Add(15*time.Minute)))
	assert.True(t, pair.RefreshExpiresAt.Equal(epoch.Add(24*time.Hour)))

	session, err := env.repo.Sessions().Get(context.Background(), env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, session.Token)
}

func TestService_Login_Rejections(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	env.register(t, "reader@example.com", "correct-horse")

	tests := []struct {
		name string
		msg  auth.LoginMessage
	}{
		{name: "wrong password", msg: auth.LoginMessage{Email: "reader@example.com", Password: "wrong-horse"}},
		{name: "unknown email", msg: auth.LoginMessage{Email: "nobody@example.com", Password: "correct-horse"}},
		{name: "empty", msg: auth.LoginMessage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := env.service.Login(context.Background(), tt.msg)
			assert.Nil(t, pair)
			assert.ErrorIs(t, err, auth.ErrUnauthenticated)
		})
	}
}

func TestService_Refresh_RotatesAndRejectsReplay(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.register(t, "reader@example.com", "correct-horse")
	first := env.login(t, "reader@example.com", "correct-horse")

	env.clock.Advance(time.Minute)
	second, err := env.service.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	_, err = env.service.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	third, err := env.service.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, third.AccessToken)
}

func TestService_Refresh_SecondLoginEvictsFirstSession(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.register(t, "reader@example.com", "correct-horse")

	first := env.login(t, "reader@example.com", "correct-horse")
	second := env.login(t, "reader@example.com", "correct-horse")

	_, err := env.service.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = env.service.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestService_Refresh_Expired(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	user := env.register(t, "reader@example.com", "correct-horse")
	pair := env.login(t, "reader@example.com", "correct-horse")

	env.clock.Advance(24 * time.Hour)
	_, err := env.service.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = env.repo.Sessions().Get(ctx, env.db, user.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestService_Refresh_UndecodableSessionIsStillConsumed(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	user := env.register(t, "reader@example.com", "correct-horse")

	require.NoError(t, env.repo.Sessions().IssueSession(ctx, env.db, user.ID, "garbage-token", epoch.Add(time.Hour)))

	_, err := env.service.Refresh(ctx, "garbage-token")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = env.repo.Sessions().Get(ctx, env.db, user.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestService_Refresh_AccessTokenIsNotARefreshToken(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	env.register(t, "reader@example.com", "correct-horse")
	pair := env.login(t, "reader@example.com", "correct-horse")

	_, err := env.service.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = env.service.Refresh(context.Background(), pair.RefreshToken)
	assert.NoError(t, err)
}

func TestService_Refresh_ConcurrentReplay(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	env.register(t, "reader@example.com", "correct-horse")
	pair := env.login(t, "reader@example.com", "correct-horse")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Refresh(context.Background(), pair.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if goerrors.Is(err, auth.ErrUnauthenticated) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)
}

func TestService_Logout(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	user := env.register(t, "reader@example.com", "correct-horse")
	pair := env.login(t, "reader@example.com", "correct-horse")

	require.NoError(t, env.service.Logout(ctx, user))

	_, err := env.service.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	assert.ErrorIs(t, env.service.Logout(ctx, nil), auth.ErrUnauthenticated)
}

func TestService_PurgeExpiredSessions(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	env.register(t, "a@example.com", "correct-horse")
	env.register(t, "b@example.com", "correct-horse")
	env.login(t, "a@example.com", "correct-horse")
	env.login(t, "b@example.com", "correct-horse")

	purged, err := env.service.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)

	env.clock.Advance(24 * time.Hour)
	purged, err = env.service.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}

func TestService_CancelledContext(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.service.Login(ctx, auth.LoginMessage{Email: "a@example.com", Password: "x"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = env.service.Refresh(ctx, "whatever")
	assert.ErrorIs(t, err, context.Canceled)
}
