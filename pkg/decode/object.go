package decode

import "fmt"

// Field decodes the value of a required object field.
func Field[T any](name string, d Decoder[T]) Decoder[T] {
	return Decoder[T]{run: func(n *Node, at path) (T, *Keep, error) {
		var zero T
		if n.kind != KindObject {
			return zero, visited(), mismatch(at, "object", n)
		}
		child, ok := n.fields[name]
		if !ok {
			return zero, visited(), &Error{Path: at.String(), Expected: fmt.Sprintf("field %q", name), Message: fmt.Sprintf("missing field %q", name)}
		}
		v, k, err := d.run(child, at.field(name))
		return v, keepField(name, k), err
	}}
}

// At decodes a value nested under a sequence of required fields.
func At[T any](names []string, d Decoder[T]) Decoder[T] {
	for i := len(names) - 1; i >= 0; i-- {
		d = Field(names[i], d)
	}
	return d
}

// MaybeField decodes an optional object field.
// A missing field yields nil; a present field must decode successfully.
func MaybeField[T any](name string, d Decoder[T]) Decoder[*T] {
	return Decoder[*T]{run: func(n *Node, at path) (*T, *Keep, error) {
		if n.kind != KindObject {
			return nil, visited(), mismatch(at, "object", n)
		}
		child, ok := n.fields[name]
		if !ok {
			return nil, visited(), nil
		}
		v, k, err := d.run(child, at.field(name))
		if err != nil {
			return nil, keepField(name, k), err
		}
		return &v, keepField(name, k), nil
	}}
}

// Dict decodes every field of an object with d.
func Dict[T any](d Decoder[T]) Decoder[map[string]T] {
	return Decoder[map[string]T]{run: func(n *Node, at path) (map[string]T, *Keep, error) {
		if n.kind != KindObject {
			return nil, visited(), mismatch(at, "object", n)
		}
		out := make(map[string]T, len(n.keys))
		keep := &Keep{fields: make(map[string]*Keep, len(n.keys))}
		for _, m := range n.keys {
			v, k, err := d.run(n.fields[m.name], at.field(m.name))
			if k == nil {
				k = visited()
			}
			keep.fields[m.name] = k
			if err != nil {
				return nil, keep, err
			}
			out[m.name] = v
		}
		return out, keep, nil
	}}
}
