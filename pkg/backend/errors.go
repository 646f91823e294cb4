package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCached is returned by Replay for fingerprints missing from its snapshot.
	ErrNotCached = errors.New("backend: response not in snapshot")

	ErrStatus            = errors.New("backend: unexpected status")
	ErrBodyTooLarge      = errors.New("backend: response body too large")
	ErrTransport         = errors.New("backend: transport failure")
	ErrTimeout           = errors.New("backend: request timed out")
	ErrUnsupportedScheme = errors.New("backend: unsupported URL scheme")
	ErrNoContentLoader   = errors.New("backend: content loader not configured")
	ErrPersist           = errors.New("backend: failed to persist raw response")
	ErrInvalidUTF8       = errors.New("backend: response body is not valid UTF-8")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: unexpected status %s", e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}
