package preflight

import (
	"errors"
	"fmt"
)

var (
	// ErrCheckFailed is returned when one or more checks fail.
	ErrCheckFailed = errors.New("preflight: check failed")

	// ErrCheckTimeout is returned when a check exceeds its timeout.
	ErrCheckTimeout = errors.New("preflight: check timeout")
)

// CheckError is the failure of a single named check.
type CheckError struct {
	Name string
	Err  error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("preflight: %s: %v", e.Name, e.Err)
}

func (e *CheckError) Unwrap() []error {
	return []error{ErrCheckFailed, e.Err}
}
