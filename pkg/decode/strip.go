package decode

import (
	"fmt"
	"strings"
)

// Strip serializes only the parts of doc retained by k.
//
// Objects keep retained keys in document order. Arrays keep their retained
// positions: unretained items before the highest retained index become null so
// indices stay stable, unretained trailing items are dropped. A nil k yields
// "null".
func Strip(doc *Node, k *Keep) string {
	if k == nil {
		return "null"
	}
	var b strings.Builder
	writeNode(&b, doc, k)
	return b.String()
}

// Minimize parses data and strips it down to k.
func Minimize(data string, k *Keep) (string, error) {
	doc, err := Parse(data)
	if err != nil {
		return "", err
	}
	return Strip(doc, k), nil
}

// DecodeStrip decodes data and returns the value together with the minimized
// document and its provenance.
//
// The minimized document is decoded again before returning. If that second
// decode fails, ErrMinimizeInvariant is returned with the failure attached.
func DecodeStrip[T any](d Decoder[T], data string) (T, string, *Keep, error) {
	var zero T

	doc, err := Parse(data)
	if err != nil {
		return zero, "", nil, err
	}

	v, k, err := d.run(doc, nil)
	if err != nil {
		return zero, "", k, err
	}

	minimized := Strip(doc, k)
	if err := Verify(d, minimized); err != nil {
		return zero, "", k, err
	}

	return v, minimized, k, nil
}

// Verify checks that a minimized document still decodes with d.
// It does not compare the decoded value with the original one; use
// VerifyEqual for that.
func Verify[T any](d Decoder[T], minimized string) error {
	_, err := verify(d, minimized)
	return err
}

// VerifyEqual checks that a minimized document decodes with d to a value
// equal to want.
func VerifyEqual[T any](d Decoder[T], minimized string, want T, equal func(a, b T) bool) error {
	got, err := verify(d, minimized)
	if err != nil {
		return err
	}
	if !equal(got, want) {
		return fmt.Errorf("%w: decoded value differs from the original", ErrMinimizeInvariant)
	}
	return nil
}

func verify[T any](d Decoder[T], minimized string) (T, error) {
	var zero T
	doc, err := Parse(minimized)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMinimizeInvariant, err)
	}
	v, _, err := d.run(doc, nil)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMinimizeInvariant, err)
	}
	return v, nil
}

func writeNode(b *strings.Builder, n *Node, k *Keep) {
	switch n.kind {
	case KindObject:
		b.WriteByte('{')
		first := true
		for _, m := range n.keys {
			child := k
			if !k.all {
				child = k.fields[m.name]
				if child == nil {
					continue
				}
			}
			if !first {
				b.WriteByte(',')
			}
			first = false
			b.WriteString(m.raw)
			b.WriteByte(':')
			writeNode(b, n.fields[m.name], child)
		}
		b.WriteByte('}')
	case KindArray:
		b.WriteByte('[')
		last := len(n.items) - 1
		if !k.all {
			last = -1
			for i := range k.items {
				if i > last && i < len(n.items) {
					last = i
				}
			}
		}
		for i := 0; i <= last; i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			child := k
			if !k.all {
				child = k.items[i]
			}
			if child == nil {
				b.WriteString("null")
				continue
			}
			writeNode(b, n.items[i], child)
		}
		b.WriteByte(']')
	default:
		b.WriteString(n.raw)
	}
}
