package request

import "errors"

// Sentinel errors; the typed errors below unwrap to them.
var (
	ErrMissingResponse = errors.New("request: missing response")
	ErrDecode          = errors.New("request: unexpected response")
	ErrAbort           = errors.New("request: aborted")
	ErrUninitialized   = errors.New("request: uninitialized request")
)

// MissingResponseError reports a call the source could not answer.
// Request is the masked summary of the call, safe to log.
type MissingResponseError struct {
	Request     string
	Fingerprint string
	Err         error
}

func (e *MissingResponseError) Error() string {
	msg := "request: missing response for " + e.Request
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMissingResponse}
	}
	return []error{ErrMissingResponse, e.Err}
}

// DecodeError reports a response that could not be decoded.
// Err is usually a *decode.Error carrying the JSON path.
type DecodeError struct {
	Request string
	Err     error
}

func (e *DecodeError) Error() string {
	return "request: decode response of " + e.Request + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// AbortError is returned by requests built with Fail.
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string {
	return "request: aborted: " + e.Message
}

func (e *AbortError) Unwrap() error {
	return ErrAbort
}
