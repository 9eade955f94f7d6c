package domain

import "errors"

// Errors shared between the service and handler layers. Handlers map
// these to HTTP status codes and stable error codes; nothing below
// ever carries token material.
var (
	// ErrMissingParameters is returned when an OAuth callback lacks
	// the code or state query parameter.
	ErrMissingParameters = errors.New("missing required parameters")

	// ErrInvalidState is returned when the callback state does not
	// match the stored one-time value (CSRF defense).
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrOAuthDenied is returned when the provider redirects back
	// with an error instead of an authorization code.
	ErrOAuthDenied = errors.New("oauth authorization denied")

	// ErrAuthExpired is returned when the access token is expired and
	// the refresh grant failed; the member must re-authenticate.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrNotFound is returned when an entity does not exist or is not
	// owned by the requesting account.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed input to a core operation.
	ErrValidation = errors.New("validation failed")
)
