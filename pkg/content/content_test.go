package content_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kiln/pkg/content"
	"github.com/dmitrymomot/kiln/pkg/decode"
	"github.com/dmitrymomot/kiln/pkg/request"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"blog/hello.md":    {Data: []byte("---\ntitle: Hello\ndate: 2024-03-01\ntags: [go, ssg]\n---\n# Hello\n\nSome *text*.\n\n<script>alert(1)</script>\n")},
		"blog/world.md":    {Data: []byte("# World\n")},
		"blog/data.json":   {Data: []byte(`{"a":1}`)},
		"blog/drafts/x.md": {Data: []byte("x")},
		"about.md":         {Data: []byte("---\n---\nAbout")},
		"broken.md":        {Data: []byte("---\ntitle: [\n---\nx")},
		"unclosed.md":      {Data: []byte("---\ntitle: x\n")},
	}
}

func TestLoaderMarkdown(t *testing.T) {
	t.Parallel()

	l := content.NewLoader(testFS())
	body, err := l.Load("blog/hello.md")
	require.NoError(t, err)

	title, err := decode.Decode(content.Frontmatter(decode.Field("title", decode.String())), body)
	require.NoError(t, err)
	assert.Equal(t, "Hello", title)

	date, err := decode.Decode(content.Frontmatter(decode.Field("date", decode.String())), body)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", date)

	tags, err := decode.Decode(content.Frontmatter(decode.Field("tags", decode.List(decode.String()))), body)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "ssg"}, tags)

	html, err := decode.Decode(content.HTML(), body)
	require.NoError(t, err)
	assert.Contains(t, html, `<h1 id="hello">Hello</h1>`)
	assert.Contains(t, html, "<em>text</em>")
	assert.NotContains(t, html, "<script>")

	md, err := decode.Decode(content.Body(), body)
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n\nSome *text*.\n\n<script>alert(1)</script>\n", md)

	path, err := decode.Decode(decode.Field("path", decode.String()), body)
	require.NoError(t, err)
	assert.Equal(t, "blog/hello.md", path)
}

func TestLoaderMarkdownWithoutFrontmatter(t *testing.T) {
	t.Parallel()

	l := content.NewLoader(testFS())
	for _, name := range []string{"blog/world.md", "about.md"} {
		body, err := l.Load(name)
		require.NoError(t, err, name)

		fm, err := decode.Decode(content.Frontmatter(decode.Dict(decode.Raw())), body)
		require.NoError(t, err, name)
		assert.Empty(t, fm, name)
	}
}

func TestLoaderErrors(t *testing.T) {
	t.Parallel()

	l := content.NewLoader(testFS())

	_, err := l.Load("missing.md")
	require.ErrorIs(t, err, content.ErrNotFound)

	_, err = l.Load("../etc/passwd")
	require.ErrorIs(t, err, content.ErrInvalidPath)

	_, err = l.Load("broken.md")
	require.ErrorIs(t, err, content.ErrInvalidFrontmatter)

	_, err = l.Load("unclosed.md")
	require.ErrorIs(t, err, content.ErrInvalidFrontmatter)

	_, err = l.Load("nope/")
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestLoaderRawAndList(t *testing.T) {
	t.Parallel()

	l := content.NewLoader(testFS())

	raw, err := l.Load("blog/data.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, raw)

	list, err := l.Load("blog/")
	require.NoError(t, err)
	assert.Equal(t, `["blog/data.json","blog/hello.md","blog/world.md"]`, list)

	root, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, `["about.md","broken.md","unclosed.md"]`, root)
}

func TestURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "content://blog/hello.md", content.URL("/blog/hello.md"))

	p, ok := content.Path("content://blog/hello.md")
	assert.True(t, ok)
	assert.Equal(t, "blog/hello.md", p)

	_, ok = content.Path("https://example.com")
	assert.False(t, ok)
}

func TestRequests(t *testing.T) {
	t.Parallel()

	l := content.NewLoader(testFS())
	src := request.SourceFunc(func(_ context.Context, c request.Call) (string, error) {
		p, ok := content.Path(c.Details.URL)
		require.True(t, ok)
		return l.Load(p)
	})

	posts := request.AndThen(content.List("/blog/"), func(files []string) request.Request[[]string] {
		var titles []request.Request[string]
		for _, f := range files {
			if content.IsMarkdown(f) {
				titles = append(titles, content.Get(f, content.HTML()))
			}
		}
		return request.Combine(titles)
	})

	ac := request.AppContext{Type: request.CLI}
	got, delta, err := request.Resolve(context.Background(), ac, src, posts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "World")

	bodies, err := delta.Bodies()
	require.NoError(t, err)
	hello := bodies[request.Fingerprint(request.Details{URL: content.URL("blog/hello.md")})]
	assert.NotContains(t, hello, "frontmatter")
	assert.Contains(t, hello, `"html":`)

	text, _, err := request.Resolve(context.Background(), ac, src, content.Text("blog/data.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
}
