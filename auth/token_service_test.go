package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-lending/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T, clock auth.Clock, mutate ...func(*auth.TokenConfig)) *auth.TokenService {
	t.Helper()

	cfg := auth.TokenConfig{
		SigningKey: testSigningKey,
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		Issuer:     "go-lending-test",
		Audience:   []string{"lending"},
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	ts, err := auth.NewTokenService(cfg, clock, nil)
	require.NoError(t, err)
	return ts
}

func TestNewTokenService_Config(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auth.TokenConfig
		wantErr bool
	}{
		{name: "defaults", cfg: auth.TokenConfig{SigningKey: testSigningKey}},
		{name: "hs512", cfg: auth.TokenConfig{SigningKey: testSigningKey, SigningMethod: "HS512"}},
		{name: "empty key", cfg: auth.TokenConfig{}, wantErr: true},
		{name: "asymmetric method", cfg: auth.TokenConfig{SigningKey: testSigningKey, SigningMethod: "RS256"}, wantErr: true},
		{name: "unknown method", cfg: auth.TokenConfig{SigningKey: testSigningKey, SigningMethod: "XX999"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := auth.NewTokenService(tt.cfg, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, ts)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, auth.DefaultAccessTTL, ts.AccessTTL())
			assert.Equal(t, auth.DefaultRefreshTTL, ts.RefreshTTL())
		})
	}
}

func TestTokenService_AccessTokenLifetime(t *testing.T) {
	clock := newFakeClock(epoch)
	ts := newTokenService(t, clock)

	token, exp, err := ts.IssueAccess("subject-1", epoch)
	require.NoError(t, err)
	assert.True(t, epoch.Add(30*time.Minute).Equal(exp))

	clock.Advance(30*time.Minute - time.Second)
	claims, err := ts.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", claims.UserID())
	assert.True(t, claims.IsAccess())
	assert.False(t, claims.IsRefresh())
	assert.True(t, exp.Equal(claims.Expires()))
	assert.NotEmpty(t, claims.TokenID())

	clock.Advance(time.Second)
	_, err = ts.Decode(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenService_RefreshTokenLifetime(t *testing.T) {
	clock := newFakeClock(epoch)
	ts := newTokenService(t, clock)

	token, exp, err := ts.IssueRefresh("subject-1", epoch)
	require.NoError(t, err)
	assert.True(t, epoch.Add(30*24*time.Hour).Equal(exp))

	claims, err := ts.DecodeAs(token, auth.TokenTypeRefresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefresh())

	clock.Advance(30 * 24 * time.Hour)
	_, err = ts.DecodeAs(token, auth.TokenTypeRefresh)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestTokenService_TokensAreUnique(t *testing.T) {
	ts := newTokenService(t, newFakeClock(epoch))

	first, _, err := ts.IssueRefresh("subject-1", epoch)
	require.NoError(t, err)
	second, _, err := ts.IssueRefresh("subject-1", epoch)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenService_DecodeAs_WrongType(t *testing.T) {
	ts := newTokenService(t, newFakeClock(epoch))

	access, _, err := ts.IssueAccess("subject-1", epoch)
	require.NoError(t, err)
	refresh, _, err := ts.IssueRefresh("subject-1", epoch)
	require.NoError(t, err)

	_, err = ts.DecodeAs(access, auth.TokenTypeRefresh)
	assert.ErrorIs(t, err, auth.ErrTokenWrongType)

	_, err = ts.DecodeAs(refresh, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, auth.ErrTokenWrongType)
}

func TestTokenService_DecodeRejections(t *testing.T) {
	clock := newFakeClock(epoch)
	ts := newTokenService(t, clock)

	otherKey := newTokenService(t, clock, func(c *auth.TokenConfig) {
		c.SigningKey = []byte("another-signing-key-entirely")
	})
	otherMethod := newTokenService(t, clock, func(c *auth.TokenConfig) {
		c.SigningMethod = "HS512"
	})
	otherIssuer := newTokenService(t, clock, func(c *auth.TokenConfig) {
		c.Issuer = "someone-else"
	})

	foreign, _, err := otherKey.IssueAccess("subject-1", epoch)
	require.NoError(t, err)

	hs512, _, err := otherMethod.IssueAccess("subject-1", epoch)
	require.NoError(t, err)

	wrongIssuer, _, err := otherIssuer.IssueAccess("subject-1", epoch)
	require.NoError(t, err)

	valid, _, err := ts.IssueAccess("subject-1", epoch)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "subject-1",
		ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "foreign key", token: foreign, want: auth.ErrTokenInvalidSignature},
		{name: "other algorithm", token: hs512, want: auth.ErrTokenInvalidSignature},
		{name: "tampered signature", token: tampered, want: auth.ErrTokenInvalidSignature},
		{name: "alg none", token: unsigned, want: auth.ErrTokenInvalidSignature},
		{name: "wrong issuer", token: wrongIssuer, want: auth.ErrTokenMalformed},
		{name: "garbage", token: "not.a.token", want: auth.ErrTokenMalformed},
		{name: "empty", token: "", want: auth.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ts.Decode(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
