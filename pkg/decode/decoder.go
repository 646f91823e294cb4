package decode

import (
	"encoding/json"
	"math"
	"strconv"
)

// Decoder turns a JSON node into a T and reports which parts of the node it read.
//
// Decoders are immutable values; the same decoder may be run concurrently.
type Decoder[T any] struct {
	run func(n *Node, at path) (T, *Keep, error)
}

// Decode parses data and runs d against it.
func Decode[T any](d Decoder[T], data string) (T, error) {
	var zero T
	doc, err := Parse(data)
	if err != nil {
		return zero, err
	}
	v, _, err := d.run(doc, nil)
	return v, err
}

// Run runs d against an already parsed document and returns the provenance.
// The returned Keep is meaningful on failure too: it covers everything visited
// up to and including the node that failed.
func Run[T any](d Decoder[T], doc *Node) (T, *Keep, error) {
	return d.run(doc, nil)
}

// String decodes a JSON string.
func String() Decoder[string] {
	return Decoder[string]{run: func(n *Node, at path) (string, *Keep, error) {
		if n.kind != KindString {
			return "", whole, mismatch(at, "string", n)
		}
		return n.str, whole, nil
	}}
}

// Float decodes any JSON number.
func Float() Decoder[float64] {
	return Decoder[float64]{run: func(n *Node, at path) (float64, *Keep, error) {
		if n.kind != KindNumber {
			return 0, whole, mismatch(at, "number", n)
		}
		f, err := strconv.ParseFloat(n.raw, 64)
		if err != nil {
			return 0, whole, &Error{Path: at.String(), Expected: "number", Message: err.Error()}
		}
		return f, whole, nil
	}}
}

// Int decodes a JSON number with no fractional part.
// Integral values written in exponent or decimal form (1e3, 2.0) are accepted.
func Int() Decoder[int] {
	return Decoder[int]{run: func(n *Node, at path) (int, *Keep, error) {
		if n.kind != KindNumber {
			return 0, whole, mismatch(at, "integer", n)
		}
		if i, err := strconv.ParseInt(n.raw, 10, strconv.IntSize); err == nil {
			return int(i), whole, nil
		}
		// float64(math.MaxInt) rounds up to a power of two, so it is excluded.
		f, err := strconv.ParseFloat(n.raw, 64)
		if err != nil || f != math.Trunc(f) || f >= math.MaxInt || f < math.MinInt {
			return 0, whole, &Error{Path: at.String(), Expected: "integer", Actual: n.raw}
		}
		return int(f), whole, nil
	}}
}

// Bool decodes true or false.
func Bool() Decoder[bool] {
	return Decoder[bool]{run: func(n *Node, at path) (bool, *Keep, error) {
		if n.kind != KindBool {
			return false, whole, mismatch(at, "boolean", n)
		}
		return n.raw == "true", whole, nil
	}}
}

// Null decodes a JSON null to v.
func Null[T any](v T) Decoder[T] {
	return Decoder[T]{run: func(n *Node, at path) (T, *Keep, error) {
		if n.kind != KindNull {
			var zero T
			return zero, whole, mismatch(at, "null", n)
		}
		return v, whole, nil
	}}
}

// Raw returns the compact serialization of the whole value and retains all of it.
func Raw() Decoder[json.RawMessage] {
	return Decoder[json.RawMessage]{run: func(n *Node, _ path) (json.RawMessage, *Keep, error) {
		return json.RawMessage(n.String()), whole, nil
	}}
}

// Succeed ignores the input and returns v. It retains nothing.
func Succeed[T any](v T) Decoder[T] {
	return Decoder[T]{run: func(*Node, path) (T, *Keep, error) {
		return v, nil, nil
	}}
}

// Fail always fails with msg.
func Fail[T any](msg string) Decoder[T] {
	return Decoder[T]{run: func(_ *Node, at path) (T, *Keep, error) {
		var zero T
		return zero, nil, &Error{Path: at.String(), Message: msg}
	}}
}

// Lazy defers building a decoder until it runs, for recursive structures.
func Lazy[T any](fn func() Decoder[T]) Decoder[T] {
	return Decoder[T]{run: func(n *Node, at path) (T, *Keep, error) {
		return fn().run(n, at)
	}}
}
