package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// TokenConfig holds what is needed to sign and verify tokens
type TokenConfig struct {
	SigningKey    []byte
	SigningMethod string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      []string
}

// TokenService mints and decodes access and refresh tokens.
// It never touches storage.
type TokenService struct {
	signingKey []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	clock      Clock
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg TokenConfig, clock Clock, logger Logger) (*TokenService, error) {
	if logger == nil {
		logger = defLogger{}
	}

	if clock == nil {
		clock = SystemClock
	}

	if len(cfg.SigningKey) == 0 {
		return nil, goerrors.New("token signing key must not be empty", goerrors.CategoryValidation).
			WithTextCode("SIGNING_KEY_REQUIRED")
	}

	name := cfg.SigningMethod
	if name == "" {
		name = jwt.SigningMethodHS256.Alg()
	}

	method, ok := jwt.GetSigningMethod(name).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, goerrors.New(fmt.Sprintf("unsupported signing method %q", name), goerrors.CategoryValidation).
			WithTextCode("SIGNING_METHOD_UNSUPPORTED")
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}

	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	var aud jwt.ClaimStrings
	if len(cfg.Audience) > 0 {
		aud = make(jwt.ClaimStrings, len(cfg.Audience))
		copy(aud, cfg.Audience)
	}

	return &TokenService{
		signingKey: cfg.SigningKey,
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     cfg.Issuer,
		audience:   aud,
		clock:      clock,
		logger:     logger,
	}, nil
}

func (ts *TokenService) AccessTTL() time.Duration {
	return ts.accessTTL
}

func (ts *TokenService) RefreshTTL() time.Duration {
	return ts.refreshTTL
}

// IssueAccess mints an access token for subject that expires
// AccessTTL after now.
func (ts *TokenService) IssueAccess(subject string, now time.Time) (string, time.Time, error) {
	return ts.issue(subject, TokenTypeAccess, now, ts.accessTTL)
}

// IssueRefresh mints a refresh token for subject that expires
// RefreshTTL after now.
func (ts *TokenService) IssueRefresh(subject string, now time.Time) (string, time.Time, error) {
	return ts.issue(subject, TokenTypeRefresh, now, ts.refreshTTL)
}

func (ts *TokenService) issue(subject string, typ TokenType, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, goerrors.New("token subject must not be empty", goerrors.CategoryInternal)
	}

	now = now.UTC()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subject,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Type: typ,
	}

	token := jwt.NewWithClaims(ts.method, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	// exp is stored with second precision
	return signed, claims.ExpiresAt.Time, nil
}

// Decode verifies signature, algorithm and expiry of a token and
// returns its claims. Expiry is checked against the service clock.
func (ts *TokenService) Decode(tokenString string) (*Claims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{ts.method.Alg()}),
		jwt.WithTimeFunc(ts.clock.Now),
		jwt.WithExpirationRequired(),
	}

	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Debug("token service decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case goerrors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case goerrors.Is(err, jwt.ErrTokenSignatureInvalid), goerrors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrTokenInvalidSignature
		default:
			ts.logger.Debug("token service decode failed", "error", err)
			return nil, ErrTokenMalformed
		}
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// DecodeAs decodes a token and requires it to be of the given type
func (ts *TokenService) DecodeAs(tokenString string, typ TokenType) (*Claims, error) {
	claims, err := ts.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != typ {
		return nil, ErrTokenWrongType
	}

	return claims, nil
}
