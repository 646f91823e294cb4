package store

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no body is stored under a fingerprint.
	ErrNotFound = errors.New("store: entry not found")

	// ErrInvalidSnapshot is returned when a snapshot file cannot be parsed.
	ErrInvalidSnapshot = errors.New("store: invalid snapshot")

	ErrEmptyConnectionURL = errors.New("store: empty redis connection URL")
	ErrFailedToParseURL   = errors.New("store: failed to parse redis connection URL")
	ErrConnectionFailed   = errors.New("store: failed to establish redis connection")
)
