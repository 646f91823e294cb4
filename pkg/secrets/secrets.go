package secrets

import (
	"errors"
	"slices"
	"strings"
)

const (
	tokenPrefix = "<SECRET:"
	tokenSuffix = ">"
)

// Get returns the value of a named secret.
type Get func(name string) string

// Value is a T built from secrets that are looked up only when needed.
// The zero Value reveals and masks to the zero T.
type Value[T any] struct {
	build func(get Get) T
}

// With wraps a builder that reads its secrets through get.
// The builder must be pure: it is run once per Reveal, Masked or Names call.
func With[T any](build func(get Get) T) Value[T] {
	return Value[T]{build: build}
}

// Plain wraps a value that contains no secrets.
func Plain[T any](v T) Value[T] {
	return Value[T]{build: func(Get) T { return v }}
}

// Map transforms the built value without revealing anything.
func Map[A, B any](v Value[A], f func(A) B) Value[B] {
	return Value[B]{build: func(get Get) B {
		return f(v.run(get))
	}}
}

// Token is the placeholder that stands in for a secret in masked output.
func Token(name string) string {
	return tokenPrefix + name + tokenSuffix
}

// HasToken reports whether s contains a secret placeholder.
func HasToken(s string) bool {
	return strings.Contains(s, tokenPrefix)
}

// Reveal builds the value with real secrets from env.
// Every missing secret is reported, each as a *MissingError.
func (v Value[T]) Reveal(env Env) (T, error) {
	var missing []string
	out := v.run(func(name string) string {
		s, ok := env.Lookup(name)
		if !ok {
			if !slices.Contains(missing, name) {
				missing = append(missing, name)
			}
			return Token(name)
		}
		return s
	})
	if len(missing) > 0 {
		errs := make([]error, len(missing))
		for i, name := range missing {
			errs[i] = &MissingError{Name: name}
		}
		var zero T
		return zero, errors.Join(errs...)
	}
	return out, nil
}

// Masked builds the value with every secret replaced by its Token.
func (v Value[T]) Masked() T {
	return v.run(Token)
}

// Names lists the secrets the builder reads, in first-use order.
func (v Value[T]) Names() []string {
	var names []string
	v.run(func(name string) string {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
		return Token(name)
	})
	return names
}

// Redact replaces every revealed secret value found in s with its Token.
// Use it on text that may echo a revealed value back, such as transport errors.
func (v Value[T]) Redact(env Env, s string) string {
	for _, name := range v.Names() {
		if secret, ok := env.Lookup(name); ok && secret != "" {
			s = strings.ReplaceAll(s, secret, Token(name))
		}
	}
	return s
}

func (v Value[T]) run(get Get) T {
	if v.build == nil {
		var zero T
		return zero
	}
	return v.build(get)
}
