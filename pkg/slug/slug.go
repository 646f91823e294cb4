package slug

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type options struct {
	separator string
	lowercase bool
	maxLength int
	strip     string
	replace   map[string]string
}

// Option configures Make.
type Option func(*options)

// Separator sets the string placed between words. Default: "-".
func Separator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// Lowercase controls case folding. Default: true.
func Lowercase(v bool) Option {
	return func(o *options) {
		o.lowercase = v
	}
}

// MaxLength truncates the slug to n runes. Zero means unlimited.
func MaxLength(n int) Option {
	return func(o *options) {
		o.maxLength = max(n, 0)
	}
}

// StripChars removes the given characters before slugifying.
func StripChars(chars string) Option {
	return func(o *options) {
		o.strip += chars
	}
}

// CustomReplace applies replacements before slugifying. Longer keys are
// replaced first.
func CustomReplace(m map[string]string) Option {
	return func(o *options) {
		if o.replace == nil {
			o.replace = make(map[string]string, len(m))
		}
		for k, v := range m {
			o.replace[k] = v
		}
	}
}

// Letters without a canonical decomposition.
var fold = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ø': "o", 'Ø': "O",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'þ': "th", 'Þ': "TH",
	'ı': "i",
}

// Make returns the slug of s.
func Make(s string, opts ...Option) string {
	o := &options{separator: "-", lowercase: true}
	for _, opt := range opts {
		opt(o)
	}

	s = o.applyReplacements(s)
	if o.strip != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(o.strip, r) {
				return -1
			}
			return r
		}, s)
	}
	s = ascii(s)

	var (
		b       strings.Builder
		pending bool
	)
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteString(o.separator)
			pending = false
		}
		if o.lowercase {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	out := b.String()
	if o.maxLength > 0 {
		if rs := []rune(out); len(rs) > o.maxLength {
			out = string(rs[:o.maxLength])
		}
	}
	if o.separator != "" {
		for strings.HasSuffix(out, o.separator) {
			out = strings.TrimSuffix(out, o.separator)
		}
	}
	return out
}

func (o *options) applyReplacements(s string) string {
	if len(o.replace) == 0 {
		return s
	}
	keys := make([]string, 0, len(o.replace))
	for k := range o.replace {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), strings.Compare(a, b))
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		// Spaces keep replaced words apart from their neighbours.
		pairs = append(pairs, k, " "+o.replace[k]+" ")
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// ascii strips combining marks and folds the remaining special letters.
func ascii(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	var b strings.Builder
	b.Grow(len(out))
	for _, r := range out {
		if f, ok := fold[r]; ok {
			b.WriteString(f)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
