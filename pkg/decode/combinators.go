package decode

import (
	"fmt"
	"strings"
)

// Map transforms the result of a decoder.
func Map[A, B any](d Decoder[A], f func(A) B) Decoder[B] {
	return Decoder[B]{run: func(n *Node, at path) (B, *Keep, error) {
		a, k, err := d.run(n, at)
		if err != nil {
			var zero B
			return zero, k, err
		}
		return f(a), k, nil
	}}
}

// Map2 runs two decoders against the same value and combines their results.
func Map2[A, B, C any](da Decoder[A], db Decoder[B], f func(A, B) C) Decoder[C] {
	return Decoder[C]{run: func(n *Node, at path) (C, *Keep, error) {
		var zero C
		a, ka, err := da.run(n, at)
		if err != nil {
			return zero, ka, err
		}
		b, kb, err := db.run(n, at)
		keep := Merge(ka, kb)
		if err != nil {
			return zero, keep, err
		}
		return f(a, b), keep, nil
	}}
}

// Map3 runs three decoders against the same value and combines their results.
func Map3[A, B, C, D any](da Decoder[A], db Decoder[B], dc Decoder[C], f func(A, B, C) D) Decoder[D] {
	return Map2(Map2(da, db, both[A, B]), dc, func(p tuple[A, B], c C) D {
		return f(p.a, p.b, c)
	})
}

// Map4 runs four decoders against the same value and combines their results.
func Map4[A, B, C, D, E any](da Decoder[A], db Decoder[B], dc Decoder[C], dd Decoder[D], f func(A, B, C, D) E) Decoder[E] {
	return Map2(Map2(da, db, both[A, B]), Map2(dc, dd, both[C, D]), func(p tuple[A, B], q tuple[C, D]) E {
		return f(p.a, p.b, q.a, q.b)
	})
}

type tuple[A, B any] struct {
	a A
	b B
}

func both[A, B any](a A, b B) tuple[A, B] {
	return tuple[A, B]{a: a, b: b}
}

// AndThen decodes a value and uses it to choose the decoder for the same node.
func AndThen[A, B any](d Decoder[A], f func(A) Decoder[B]) Decoder[B] {
	return Decoder[B]{run: func(n *Node, at path) (B, *Keep, error) {
		a, ka, err := d.run(n, at)
		if err != nil {
			var zero B
			return zero, ka, err
		}
		b, kb, err := f(a).run(n, at)
		return b, Merge(ka, kb), err
	}}
}

// Nullable decodes null to nil and anything else with d.
func Nullable[T any](d Decoder[T]) Decoder[*T] {
	return Decoder[*T]{run: func(n *Node, at path) (*T, *Keep, error) {
		if n.kind == KindNull {
			return nil, whole, nil
		}
		v, k, err := d.run(n, at)
		if err != nil {
			return nil, k, err
		}
		return &v, k, nil
	}}
}

// OneOf tries each decoder in order and returns the first success.
//
// Paths visited by alternatives that failed are retained alongside the winner,
// so a minimized document makes the same alternatives fail again.
func OneOf[T any](ds ...Decoder[T]) Decoder[T] {
	return Decoder[T]{run: func(n *Node, at path) (T, *Keep, error) {
		var (
			zero   T
			keep   *Keep
			causes []string
		)
		for _, d := range ds {
			v, k, err := d.run(n, at)
			keep = Merge(keep, k)
			if err == nil {
				return v, keep, nil
			}
			causes = append(causes, err.Error())
		}
		return zero, keep, &Error{
			Path:    at.String(),
			Message: fmt.Sprintf("none of %d alternatives matched: %s", len(ds), strings.Join(causes, "; ")),
		}
	}}
}
