package internal

import "errors"

var (
	ErrInvalidConfig = errors.New("kiln: invalid configuration")
	ErrNoPages       = errors.New("kiln: no pages registered")
	ErrPreflight     = errors.New("kiln: preflight failed")
	ErrPublish       = errors.New("kiln: publish failed")
)
