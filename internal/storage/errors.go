package storage

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is soft-deleted.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a uniqueness constraint is violated,
	// most importantly on api_tokens.token_hash.
	ErrDuplicate = errors.New("record already exists")
)
