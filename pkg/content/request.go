package content

import (
	"path"
	"strings"

	"github.com/dmitrymomot/kiln/pkg/decode"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/secrets"
)

// Scheme is the URL scheme of content requests.
const Scheme = "content"

const prefix = Scheme + "://"

// URL returns the request URL of a content path.
func URL(name string) string {
	return prefix + strings.TrimPrefix(name, "/")
}

// Path extracts the content path from a content URL.
func Path(url string) (string, bool) {
	return strings.CutPrefix(url, prefix)
}

// Details is the call that loads name.
func Details(name string) secrets.Value[request.Details] {
	return secrets.Plain(request.Details{URL: URL(name)})
}

// Get loads a content file and decodes it with d.
// Markdown files decode as a Document; see Frontmatter, Body and HTML.
func Get[T any](name string, d decode.Decoder[T]) request.Request[T] {
	return request.Send(Details(name), d)
}

// Text loads a file verbatim.
func Text(name string) request.Request[string] {
	return request.SendUnoptimized(Details(name), request.ExpectString(func(body string) (string, error) {
		return body, nil
	}))
}

// List returns the sorted paths of the regular files in dir.
func List(dir string) request.Request[[]string] {
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if dir != "" {
		dir += "/"
	}
	return request.SendUnoptimized(Details(dir), request.ExpectRawJSON(decode.List(decode.String())))
}

// Frontmatter decodes the frontmatter of a Document with d.
func Frontmatter[T any](d decode.Decoder[T]) decode.Decoder[T] {
	return decode.Field("frontmatter", d)
}

// Body decodes the markdown source of a Document.
func Body() decode.Decoder[string] {
	return decode.Field("body", decode.String())
}

// HTML decodes the rendered HTML of a Document.
func HTML() decode.Decoder[string] {
	return decode.Field("html", decode.String())
}
