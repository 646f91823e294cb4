package decode

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for decoding.
var (
	// ErrInvalidJSON is returned when the input is not a valid JSON document.
	ErrInvalidJSON = errors.New("decode: invalid JSON")

	// ErrMismatch is returned when the document shape does not match the decoder.
	// Every *Error unwraps to it.
	ErrMismatch = errors.New("decode: shape mismatch")

	// ErrMinimizeInvariant is returned when a minimized document can no longer be
	// decoded by the decoder that produced it. This is a bug in the decoder
	// combinators, never a property of the input.
	ErrMinimizeInvariant = errors.New("decode: minimized document no longer decodes")
)

// Error describes a decoding failure at a specific JSON path.
type Error struct {
	// Path is the location of the failure, e.g. "$.license.url" or "$.items[0]".
	Path string

	// Expected names the shape the decoder wanted ("string", "field \"url\"").
	Expected string

	// Actual names the shape found in the document, empty when not applicable.
	Actual string

	// Message is a free-form description used by Fail and OneOf.
	Message string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("decode: at ")
	b.WriteString(e.Path)
	b.WriteString(": ")
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Actual != "":
		fmt.Fprintf(&b, "expected %s, got %s", e.Expected, e.Actual)
	default:
		fmt.Fprintf(&b, "expected %s", e.Expected)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return ErrMismatch
}

func mismatch(at path, expected string, n *Node) *Error {
	return &Error{Path: at.String(), Expected: expected, Actual: n.Kind().String()}
}
