package request

import (
	"slices"

	"github.com/dmitrymomot/kiln/pkg/secrets"
)

// Responses answers calls by fingerprint during resolution.
type Responses interface {
	Lookup(fingerprint string) (string, bool)
}

// AppContext is passed to every continuation.
type AppContext struct {
	Type AppType
	Env  secrets.Env
}

// Continuation computes the next step of a pending request once its calls have
// responses. It returns the responses it consumed and the next request.
type Continuation[T any] func(ac AppContext, rs Responses) (Delta, Request[T], error)

// Request is either a resolved value or pending calls plus a continuation.
// The zero Request is neither and fails resolution with ErrUninitialized.
type Request[T any] struct {
	value   T
	pending []secrets.Value[Details]
	next    Continuation[T]
	done    bool
}

// Done is a request that is already resolved to v.
func Done[T any](v T) Request[T] {
	return Request[T]{value: v, done: true}
}

// Pending is a request that needs responses for calls before next can run.
// calls must include every call next looks up.
func Pending[T any](calls []secrets.Value[Details], next Continuation[T]) Request[T] {
	return Request[T]{pending: calls, next: next}
}

// IsDone reports whether the request is resolved.
func (r Request[T]) IsDone() bool {
	return r.done
}

// IsZero reports whether r is the zero Request.
func (r Request[T]) IsZero() bool {
	return !r.done && r.next == nil
}

// Calls lists the calls this step is waiting on.
func (r Request[T]) Calls() []secrets.Value[Details] {
	return slices.Clone(r.pending)
}

func (r Request[T]) step(ac AppContext, rs Responses) (Delta, Request[T], error) {
	switch {
	case r.done:
		return nil, r, nil
	case r.next == nil:
		return nil, Request[T]{}, ErrUninitialized
	}
	return r.next(ac, rs)
}

// advance runs one step of r and records the consumed responses in delta.
// Resolved requests are returned unchanged.
func (r Request[T]) advance(ac AppContext, rs Responses, delta Delta) (Request[T], error) {
	if r.done {
		return r, nil
	}
	d, next, err := r.step(ac, rs)
	if err != nil {
		return Request[T]{}, err
	}
	delta.Merge(d)
	return next, nil
}

// Succeed is a request resolved to v.
func Succeed[T any](v T) Request[T] {
	return Done(v)
}

// Fail is a request that aborts resolution with an *AbortError.
// Pages use it to exclude a route, for example when its parameters are invalid.
func Fail[T any](msg string) Request[T] {
	return Pending(nil, func(AppContext, Responses) (Delta, Request[T], error) {
		return nil, Request[T]{}, &AbortError{Message: msg}
	})
}

// Map transforms the resolved value of r.
func Map[A, B any](r Request[A], f func(A) B) Request[B] {
	if r.done {
		return Done(f(r.value))
	}
	return Pending(r.pending, func(ac AppContext, rs Responses) (Delta, Request[B], error) {
		d, next, err := r.step(ac, rs)
		if err != nil {
			return nil, Request[B]{}, err
		}
		return d, Map(next, f), nil
	})
}

// Map2 resolves two independent requests and combines their values.
// The calls of both are batched into a single step.
func Map2[A, B, C any](ra Request[A], rb Request[B], f func(A, B) C) Request[C] {
	if ra.done && rb.done {
		return Done(f(ra.value, rb.value))
	}
	calls := slices.Concat(ra.pending, rb.pending)
	return Pending(calls, func(ac AppContext, rs Responses) (Delta, Request[C], error) {
		delta := Delta{}
		na, err := ra.advance(ac, rs, delta)
		if err != nil {
			return nil, Request[C]{}, err
		}
		nb, err := rb.advance(ac, rs, delta)
		if err != nil {
			return nil, Request[C]{}, err
		}
		return delta, Map2(na, nb, f), nil
	})
}

// Map3 resolves three independent requests and combines their values.
func Map3[A, B, C, D any](ra Request[A], rb Request[B], rc Request[C], f func(A, B, C) D) Request[D] {
	ab := Map2(ra, rb, func(a A, b B) pair[A, B] { return pair[A, B]{a, b} })
	return Map2(ab, rc, func(p pair[A, B], c C) D { return f(p.a, p.b, c) })
}

type pair[A, B any] struct {
	a A
	b B
}

// Combine resolves a list of independent requests into a list of values,
// preserving order.
func Combine[T any](rs []Request[T]) Request[[]T] {
	var calls []secrets.Value[Details]
	for _, r := range rs {
		if !r.done {
			calls = append(calls, r.pending...)
		}
	}
	if allDone(rs) {
		out := make([]T, len(rs))
		for i, r := range rs {
			out[i] = r.value
		}
		return Done(out)
	}
	return Pending(calls, func(ac AppContext, resp Responses) (Delta, Request[[]T], error) {
		delta := Delta{}
		next := make([]Request[T], len(rs))
		for i, r := range rs {
			n, err := r.advance(ac, resp, delta)
			if err != nil {
				return nil, Request[[]T]{}, err
			}
			next[i] = n
		}
		return delta, Combine(next), nil
	})
}

func allDone[T any](rs []Request[T]) bool {
	for _, r := range rs {
		if !r.done {
			return false
		}
	}
	return true
}

// AndThen resolves r and uses its value to build the next request.
func AndThen[A, B any](r Request[A], f func(A) Request[B]) Request[B] {
	if r.done {
		return f(r.value)
	}
	return Pending(r.pending, func(ac AppContext, rs Responses) (Delta, Request[B], error) {
		d, next, err := r.step(ac, rs)
		if err != nil {
			return nil, Request[B]{}, err
		}
		return d, AndThen(next, f), nil
	})
}
