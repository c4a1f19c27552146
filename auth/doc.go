// Package auth implements identity and session handling for the lending
// service: password hashing, signed access and refresh tokens, the single
// slot refresh session registry and the authenticator that turns a bearer
// token back into a User.
//
// A subject holds at most one live refresh token. Logging in again or
// refreshing replaces it, and a refresh token is consumed on use, so a
// replayed token is always rejected.
package auth
