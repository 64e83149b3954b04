package auth

import "errors"

// Errors for authentication failures. All of them collapse to
// "unauthenticated" at the API layer; authorization denial is expressed as a
// Decision value, never as an error.
var (
	// ErrMissingCredential indicates no credential was provided.
	ErrMissingCredential = errors.New("auth: missing credential")
	// ErrInvalidCredential indicates the credential failed validation.
	ErrInvalidCredential = errors.New("auth: invalid credential")
	// ErrMissingClaim indicates a verified JWT lacks a required claim.
	// Wrapped with the claim name at the point of failure.
	ErrMissingClaim = errors.New("auth: missing claim")
)
