package decode

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the JSON type of a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Node is a parsed JSON value.
// Scalars keep their literal text so re-serialization is byte-exact for every
// value a decoder retained. Object keys keep document order.
type Node struct {
	fields map[string]*Node
	raw    string // literal for scalars
	str    string // unescaped value for strings
	keys   []member
	items  []*Node
	kind   Kind
}

// member is an object key in document order together with its literal form.
type member struct {
	name string
	raw  string
}

// Parse parses a JSON document.
// Duplicate object keys resolve to the last occurrence, matching encoding/json.
func Parse(data string) (*Node, error) {
	if !gjson.Valid(data) {
		return nil, ErrInvalidJSON
	}
	return build(gjson.Parse(data)), nil
}

func build(r gjson.Result) *Node {
	switch r.Type {
	case gjson.False, gjson.True:
		return &Node{kind: KindBool, raw: r.Raw}
	case gjson.Number:
		return &Node{kind: KindNumber, raw: r.Raw}
	case gjson.String:
		return &Node{kind: KindString, raw: r.Raw, str: r.Str}
	case gjson.JSON:
		if r.IsArray() {
			n := &Node{kind: KindArray}
			r.ForEach(func(_, v gjson.Result) bool {
				n.items = append(n.items, build(v))
				return true
			})
			return n
		}
		n := &Node{kind: KindObject, fields: make(map[string]*Node)}
		r.ForEach(func(k, v gjson.Result) bool {
			if _, seen := n.fields[k.Str]; !seen {
				n.keys = append(n.keys, member{name: k.Str, raw: k.Raw})
			}
			n.fields[k.Str] = build(v)
			return true
		})
		return n
	default:
		return &Node{kind: KindNull, raw: "null"}
	}
}

// Kind reports the JSON type of the node.
func (n *Node) Kind() Kind {
	return n.kind
}

// Len returns the number of array items or object keys.
func (n *Node) Len() int {
	switch n.kind {
	case KindArray:
		return len(n.items)
	case KindObject:
		return len(n.keys)
	default:
		return 0
	}
}

// String returns the compact serialization of the whole node.
func (n *Node) String() string {
	var b strings.Builder
	writeNode(&b, n, whole)
	return b.String()
}
