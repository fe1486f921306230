// Package service holds the account and run operations behind the web handlers.
package service

import "errors"

var (
	// ErrForbidden is returned when the identity may not act on a record.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned when an operation needs an identity and has none.
	ErrUnauthenticated = errors.New("authentication required")
)
