package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeUnauthenticated       = "UNAUTHENTICATED"
	TextCodeTokenInvalidSignature = "TOKEN_INVALID_SIGNATURE"
	TextCodeTokenWrongType        = "TOKEN_WRONG_TYPE"
	TextCodeEmailTaken            = "EMAIL_TAKEN"
	TextCodeIdentityNotFound      = "IDENTITY_NOT_FOUND"
)

// ErrUnauthenticated is the only authentication failure callers ever see.
// Token, session and credential failures are all reported with it.
var ErrUnauthenticated = goerrors.New("could not validate credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired the token exp claim is not after the current time
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(goerrors.TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed the token could not be parsed or lacks required claims
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(goerrors.TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalidSignature the token was not signed with our key and method
var ErrTokenInvalidSignature = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalidSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenWrongType an access token was presented as refresh or vice versa
var ErrTokenWrongType = goerrors.New("token type is not accepted here", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenWrongType).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionNotFound no live refresh session holds the presented token
var ErrSessionNotFound = goerrors.New("refresh session not found", goerrors.CategoryNotFound).
	WithTextCode(goerrors.TextCodeSessionNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailTaken an identity with the same normalized email exists
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrMismatchedHashAndPassword password and hash do not match
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode(goerrors.TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString empty passwords are never hashed
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(goerrors.TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return goerrors.Is(err, ErrTokenExpired)
}

// IsMalformedError will check for tokens we could not parse
func IsMalformedError(err error) bool {
	return goerrors.Is(err, ErrTokenMalformed)
}

func internalError(err error, message string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(goerrors.CodeInternal)
}
