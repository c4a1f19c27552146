// Package httpapi exposes the auth and lending services over HTTP with
// fiber. It is the only package that turns domain errors into status
// codes.
package httpapi
