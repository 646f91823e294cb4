package decode

import "fmt"

// Index decodes the item at position i of an array.
// Only that item is retained, which makes "first element of a list" cheap to store.
func Index[T any](i int, d Decoder[T]) Decoder[T] {
	return Decoder[T]{run: func(n *Node, at path) (T, *Keep, error) {
		var zero T
		if n.kind != KindArray {
			return zero, visited(), mismatch(at, "array", n)
		}
		if i < 0 || i >= len(n.items) {
			return zero, visited(), &Error{
				Path:     at.String(),
				Expected: fmt.Sprintf("array with at least %d items", i+1),
				Actual:   fmt.Sprintf("array with %d items", len(n.items)),
			}
		}
		v, k, err := d.run(n.items[i], at.index(i))
		return v, keepItem(i, k), err
	}}
}

// List decodes every item of an array with d.
func List[T any](d Decoder[T]) Decoder[[]T] {
	return Decoder[[]T]{run: func(n *Node, at path) ([]T, *Keep, error) {
		if n.kind != KindArray {
			return nil, visited(), mismatch(at, "array", n)
		}
		out := make([]T, 0, len(n.items))
		keep := &Keep{items: make(map[int]*Keep, len(n.items))}
		for i, item := range n.items {
			v, k, err := d.run(item, at.index(i))
			if k == nil {
				k = visited()
			}
			keep.items[i] = k
			if err != nil {
				return nil, keep, err
			}
			out = append(out, v)
		}
		return out, keep, nil
	}}
}
