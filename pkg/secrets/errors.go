package secrets

import "errors"

// ErrMissingSecret is returned when a referenced secret is not set in the environment.
var ErrMissingSecret = errors.New("secrets: missing secret")

// MissingError names the secret that could not be resolved.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return "secrets: missing secret " + e.Name
}

func (e *MissingError) Unwrap() error {
	return ErrMissingSecret
}
