package secrets_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kiln/pkg/secrets"
)

func apiURL() secrets.Value[string] {
	return secrets.With(func(get secrets.Get) string {
		return "https://api.example.com/v1?key=" + get("API_KEY") + "&org=" + get("ORG")
	})
}

func TestReveal(t *testing.T) {
	t.Parallel()

	t.Run("substitutes values", func(t *testing.T) {
		t.Parallel()
		v, err := apiURL().Reveal(secrets.Static{"API_KEY": "k3y", "ORG": "acme"})
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/v1?key=k3y&org=acme", v)
	})

	t.Run("reports every missing secret", func(t *testing.T) {
		t.Parallel()
		v, err := apiURL().Reveal(secrets.Static{})
		require.ErrorIs(t, err, secrets.ErrMissingSecret)
		assert.Empty(t, v)

		var names []string
		for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
			var missing *secrets.MissingError
			require.True(t, errors.As(e, &missing))
			names = append(names, missing.Name)
		}
		assert.Equal(t, []string{"API_KEY", "ORG"}, names)
	})

	t.Run("empty value is not missing", func(t *testing.T) {
		t.Parallel()
		_, err := apiURL().Reveal(secrets.Static{"API_KEY": "", "ORG": ""})
		require.NoError(t, err)
	})

	t.Run("env func", func(t *testing.T) {
		t.Parallel()
		env := secrets.EnvFunc(func(name string) (string, bool) { return name + "!", true })
		v, err := apiURL().Reveal(env)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/v1?key=API_KEY!&org=ORG!", v)
	})
}

func TestMasked(t *testing.T) {
	t.Parallel()

	masked := apiURL().Masked()
	assert.Equal(t, "https://api.example.com/v1?key=<SECRET:API_KEY>&org=<SECRET:ORG>", masked)
	assert.True(t, secrets.HasToken(masked))
	assert.False(t, secrets.HasToken("https://example.com"))
}

func TestNames(t *testing.T) {
	t.Parallel()

	twice := secrets.With(func(get secrets.Get) []string {
		return []string{get("B"), get("A"), get("B")}
	})
	assert.Equal(t, []string{"B", "A"}, twice.Names())
	assert.Empty(t, secrets.Plain("x").Names())
}

func TestMap(t *testing.T) {
	t.Parallel()

	length := secrets.Map(apiURL(), func(s string) int { return len(s) })
	n, err := length.Reveal(secrets.Static{"API_KEY": "k", "ORG": "o"})
	require.NoError(t, err)
	assert.Equal(t, len("https://api.example.com/v1?key=k&org=o"), n)
	assert.Equal(t, len(apiURL().Masked()), length.Masked())
}

func TestRedact(t *testing.T) {
	t.Parallel()

	env := secrets.Static{"API_KEY": "k3y-secret", "ORG": "acme"}
	msg := `Get "https://api.example.com/v1?key=k3y-secret&org=acme": dial tcp: timeout`
	assert.Equal(t,
		`Get "https://api.example.com/v1?key=<SECRET:API_KEY>&org=<SECRET:ORG>": dial tcp: timeout`,
		apiURL().Redact(env, msg))
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var v secrets.Value[string]
	got, err := v.Reveal(secrets.Static{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, v.Masked())
	assert.Empty(t, v.Names())
}
