package request

import (
	"github.com/dmitrymomot/kiln/pkg/decode"
)

// AppType selects how responses are retained.
type AppType uint8

const (
	// CLI is build-time resolution: JSON responses are minimized.
	CLI AppType = iota
	// Browser is hydration-time resolution against an existing snapshot:
	// responses are kept verbatim.
	Browser
)

func (t AppType) String() string {
	if t == Browser {
		return "browser"
	}
	return "cli"
}

// Expect turns a response body into a T and decides what of the body is retained.
type Expect[T any] struct {
	run func(body string, app AppType) (T, Retained, error)
}

// ExpectJSON decodes a JSON response with d.
// In CLI resolution the retained body is minimized to what d read.
func ExpectJSON[T any](d decode.Decoder[T]) Expect[T] {
	return Expect[T]{run: func(body string, app AppType) (T, Retained, error) {
		if app == Browser {
			v, err := decode.Decode(d, body)
			return v, verbatim(body), err
		}
		v, _, keep, err := decode.DecodeStrip(d, body)
		if err != nil {
			return v, Retained{}, err
		}
		return v, Retained{source: body, keep: keep, set: true}, nil
	}}
}

// ExpectRawJSON decodes a JSON response with d and retains it verbatim.
// Use it for responses that are already minimal, such as GraphQL results.
func ExpectRawJSON[T any](d decode.Decoder[T]) Expect[T] {
	return Expect[T]{run: func(body string, _ AppType) (T, Retained, error) {
		v, err := decode.Decode(d, body)
		return v, verbatim(body), err
	}}
}

// ExpectString decodes an arbitrary text response with fn and retains it verbatim.
func ExpectString[T any](fn func(body string) (T, error)) Expect[T] {
	return Expect[T]{run: func(body string, _ AppType) (T, Retained, error) {
		v, err := fn(body)
		return v, verbatim(body), err
	}}
}

// Retained is what a resolved response contributes to the snapshot.
type Retained struct {
	source   string
	keep     *decode.Keep
	verbatim bool
	set      bool
}

func verbatim(body string) Retained {
	return Retained{source: body, verbatim: true, set: true}
}

// Verbatim reports whether the body is stored as received.
func (r Retained) Verbatim() bool {
	return r.verbatim
}

// Body returns the snapshot body: the source as received for verbatim
// responses, the minimized JSON otherwise.
func (r Retained) Body() (string, error) {
	if r.verbatim {
		return r.source, nil
	}
	return decode.Minimize(r.source, r.keep)
}

// merge unions two retentions of the same fingerprint.
// Verbatim wins; otherwise the retained paths are merged so the body satisfies
// the decoders of both.
func (r Retained) merge(o Retained) Retained {
	switch {
	case !r.set:
		return o
	case !o.set:
		return r
	case r.verbatim || o.verbatim:
		return verbatim(r.source)
	}
	return Retained{source: r.source, keep: decode.Merge(r.keep, o.keep), set: true}
}
