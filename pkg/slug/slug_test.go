package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/kiln/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "simple text", input: "Hello World", expected: "hello-world"},
		{name: "punctuation", input: "Hello, World!", expected: "hello-world"},
		{name: "numbers", input: "Product 123", expected: "product-123"},
		{name: "spaces", input: "  Too    Many   Spaces  ", expected: "too-many-spaces"},
		{name: "special characters", input: "Price: $99.99", expected: "price-99-99"},
		{name: "empty", input: "", expected: ""},
		{name: "only symbols", input: "!@#$%^&*()", expected: ""},
		{name: "diacritics", input: "Café résumé naïve", expected: "cafe-resume-naive"},
		{name: "german", input: "Über Größe", expected: "uber-grosse"},
		{name: "polish", input: "Zażółć gęślą jaźń", expected: "zazolc-gesla-jazn"},
		{name: "apostrophe", input: "Côte d'Ivoire 2024", expected: "cote-d-ivoire-2024"},
		{name: "url", input: "https://example.com", expected: "https-example-com"},
		{name: "emoji", input: "Hello 😀 World 🌍", expected: "hello-world"},
		{name: "cyrillic", input: "Привет world", expected: "world"},
		{name: "whitespace", input: "Line1\nLine2\tTabbed", expected: "line1-line2-tabbed"},
		{
			name:     "keep case",
			input:    "Hello World",
			opts:     []slug.Option{slug.Lowercase(false)},
			expected: "Hello-World",
		},
		{
			name:     "custom separator",
			input:    "Multi Sep Test",
			opts:     []slug.Option{slug.Separator("---")},
			expected: "multi---sep---test",
		},
		{
			name:     "no separator",
			input:    "No Separator",
			opts:     []slug.Option{slug.Separator("")},
			expected: "noseparator",
		},
		{
			name:     "max length trims separator",
			input:    "This is a very long title that should be truncated",
			opts:     []slug.Option{slug.MaxLength(20)},
			expected: "this-is-a-very-long",
		},
		{
			name:     "max length zero",
			input:    "Should not truncate",
			opts:     []slug.Option{slug.MaxLength(0)},
			expected: "should-not-truncate",
		},
		{
			name:     "strip chars",
			input:    "Remove (these) [chars]",
			opts:     []slug.Option{slug.StripChars("()[]")},
			expected: "remove-these-chars",
		},
		{
			name:     "strip joins words",
			input:    "don't",
			opts:     []slug.Option{slug.StripChars("'")},
			expected: "dont",
		},
		{
			name:     "replacements",
			input:    "Fish & Chips @ Home",
			opts:     []slug.Option{slug.CustomReplace(map[string]string{"&": "and", "@": "at"})},
			expected: "fish-and-chips-at-home",
		},
		{
			name:  "combined",
			input: "COMPLEX & Test @ 2024!!!",
			opts: []slug.Option{
				slug.CustomReplace(map[string]string{"&": "AND"}),
				slug.Separator("_"),
				slug.Lowercase(false),
				slug.MaxLength(15),
			},
			expected: "COMPLEX_AND_Tes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestMake_Deterministic(t *testing.T) {
	t.Parallel()

	in := "Ñoño español año château façade über größe"
	first := slug.Make(in)
	assert.Equal(t, "nono-espanol-ano-chateau-facade-uber-grosse", first)
	for range 10 {
		assert.Equal(t, first, slug.Make(in))
	}
}
