package decode

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Keep is the provenance of a decode: the set of JSON paths a decoder visited.
//
// A nil *Keep means nothing was visited. A Keep with no children on a container
// means the container's shape was inspected (type, presence, length bound) but
// none of its members were read.
type Keep struct {
	fields map[string]*Keep
	items  map[int]*Keep
	all    bool
}

// whole retains a value and everything below it.
var whole = &Keep{all: true}

// Whole reports whether the entire subtree is retained.
func (k *Keep) Whole() bool {
	return k != nil && k.all
}

// Merge returns the union of two provenance trees. Neither input is modified.
func Merge(a, b *Keep) *Keep {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.all || b.all:
		return whole
	}

	out := &Keep{}
	if len(a.fields) > 0 || len(b.fields) > 0 {
		out.fields = make(map[string]*Keep, len(a.fields)+len(b.fields))
		maps.Copy(out.fields, a.fields)
		for name, child := range b.fields {
			out.fields[name] = Merge(out.fields[name], child)
		}
	}
	if len(a.items) > 0 || len(b.items) > 0 {
		out.items = make(map[int]*Keep, len(a.items)+len(b.items))
		maps.Copy(out.items, a.items)
		for i, child := range b.items {
			out.items[i] = Merge(out.items[i], child)
		}
	}
	return out
}

// Paths lists the retained leaf paths in sorted order.
// Intended for diagnostics and tests.
func (k *Keep) Paths() []string {
	var out []string
	k.collect("$", &out)
	slices.Sort(out)
	return out
}

func (k *Keep) collect(prefix string, out *[]string) {
	if k == nil {
		return
	}
	if k.all || (len(k.fields) == 0 && len(k.items) == 0) {
		*out = append(*out, prefix)
		return
	}
	for name, child := range k.fields {
		child.collect(prefix+fieldSegment(name), out)
	}
	for i, child := range k.items {
		child.collect(prefix+"["+strconv.Itoa(i)+"]", out)
	}
}

func visited() *Keep {
	return &Keep{}
}

func keepField(name string, child *Keep) *Keep {
	if child == nil {
		child = visited()
	}
	return &Keep{fields: map[string]*Keep{name: child}}
}

func keepItem(i int, child *Keep) *Keep {
	if child == nil {
		child = visited()
	}
	return &Keep{items: map[int]*Keep{i: child}}
}

// path is the location of the node being decoded.
type path []string

func (p path) field(name string) path {
	return append(p[:len(p):len(p)], fieldSegment(name))
}

func (p path) index(i int) path {
	return append(p[:len(p):len(p)], "["+strconv.Itoa(i)+"]")
}

func (p path) String() string {
	return "$" + strings.Join(p, "")
}

func fieldSegment(name string) string {
	if isIdent(name) {
		return "." + name
	}
	return "[" + strconv.Quote(name) + "]"
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
