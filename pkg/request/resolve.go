package request

import (
	"context"
	"errors"

	"github.com/dmitrymomot/kiln/pkg/secrets"
)

// Call is a single revealed call handed to a Source.
type Call struct {
	Fingerprint string
	Details     Details // revealed, never log
	Masked      Details // safe to log

	value secrets.Value[Details]
	env   secrets.Env
}

// Redact replaces revealed secrets in s with their placeholders.
func (c Call) Redact(s string) string {
	if c.env == nil {
		return s
	}
	return c.value.Redact(c.env, s)
}

// NewCall reveals details against env.
func NewCall(details secrets.Value[Details], env secrets.Env) (Call, error) {
	revealed, err := details.Reveal(env)
	if err != nil {
		return Call{}, err
	}
	return Call{
		Fingerprint: Fingerprint(revealed),
		Details:     revealed,
		Masked:      details.Masked(),
		value:       details,
		env:         env,
	}, nil
}

// Source produces raw response bodies.
type Source interface {
	Fetch(ctx context.Context, call Call) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, call Call) (string, error)

func (f SourceFunc) Fetch(ctx context.Context, call Call) (string, error) {
	return f(ctx, call)
}

type fetched map[string]string

func (f fetched) Lookup(fp string) (string, bool) {
	body, ok := f[fp]
	return body, ok
}

// Resolve drives r to completion.
//
// Each step fetches the calls of the pending node in declared order, skipping
// fingerprints already fetched during this resolution, then runs the
// continuation. Steps are executed in a loop, so dependent chains of any length
// run in constant stack depth.
//
// The returned delta holds every response consumed along the way. On failure
// it holds those consumed before the failing step, so an aborted resolution
// can be replayed to the same abort.
func Resolve[T any](ctx context.Context, ac AppContext, src Source, r Request[T]) (T, Delta, error) {
	var zero T
	if ac.Env == nil {
		ac.Env = secrets.Static{}
	}

	seen := fetched{}
	delta := Delta{}
	for !r.done {
		if err := ctx.Err(); err != nil {
			return zero, delta, err
		}
		if r.next == nil {
			return zero, delta, ErrUninitialized
		}

		for _, details := range r.pending {
			call, err := NewCall(details, ac.Env)
			if err != nil {
				return zero, delta, err
			}
			if _, ok := seen[call.Fingerprint]; ok {
				continue
			}
			body, err := src.Fetch(ctx, call)
			if err != nil {
				return zero, delta, &MissingResponseError{
					Request:     call.Masked.String(),
					Fingerprint: call.Fingerprint,
					Err:         err,
				}
			}
			seen[call.Fingerprint] = body
		}

		d, next, err := r.next(ac, seen)
		if err != nil {
			return zero, delta, err
		}
		delta.Merge(d)
		r = next
	}
	return r.value, delta, nil
}

// CheckSecrets reports every secret that r's initial calls reference but env
// lacks, each once. Calls discovered by later steps can only be checked during
// resolution.
func CheckSecrets[T any](env secrets.Env, r Request[T]) error {
	var (
		errs []error
		seen = map[string]bool{}
	)
	for _, details := range r.pending {
		for _, name := range details.Names() {
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, ok := env.Lookup(name); !ok {
				errs = append(errs, &secrets.MissingError{Name: name})
			}
		}
	}
	return errors.Join(errs...)
}

// IsAbort reports whether err is an explicit abort from Fail.
func IsAbort(err error) bool {
	return errors.Is(err, ErrAbort)
}
