package auth

import "context"

type ctxKey int

const identityKey ctxKey = iota

// WithContext returns a copy of ctx carrying the authenticated identity
func WithContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, identityKey, user)
}

// FromContext returns the identity stored by WithContext. A nil
// identity counts as absent.
func FromContext(ctx context.Context) (*User, bool) {
	user, _ := ctx.Value(identityKey).(*User)
	return user, user != nil
}
