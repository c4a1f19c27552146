package auth

import (
	"sync/atomic"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var passwordCost atomic.Int64

// SetPasswordCost overrides the bcrypt cost used by HashPassword.
// Values outside bcrypt's range restore the default.
func SetPasswordCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 0
	}
	passwordCost.Store(int64(cost))
}

func currentPasswordCost() int {
	if cost := passwordCost.Load(); cost > 0 {
		return int(cost)
	}
	return passwordHashCost()
}

// HashPassword will generate a salted password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), currentPasswordCost())
	if err != nil {
		if goerrors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", goerrors.Wrap(err, goerrors.CategoryValidation, "password is too long").
				WithCode(goerrors.CodeBadRequest)
		}
		return "", internalError(err, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if goerrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// VerifyPassword reports whether password matches hash. Malformed
// hashes never match.
func VerifyPassword(password, hash string) bool {
	return ComparePasswordAndHash(password, hash) == nil
}

// RandomPasswordHash is a hash nobody knows the password for
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
