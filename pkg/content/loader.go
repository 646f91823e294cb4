package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Document is the JSON form of a markdown file.
type Document struct {
	Path        string         `json:"path"`
	Frontmatter map[string]any `json:"frontmatter"`
	Body        string         `json:"body"`
	HTML        string         `json:"html"`
}

// Loader reads content files from a file system.
type Loader struct {
	fsys   fs.FS
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option configures a Loader.
type Option func(*Loader)

// WithMarkdown replaces the markdown processor.
// Default: GitHub flavored markdown with generated heading ids.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(l *Loader) {
		if md != nil {
			l.md = md
		}
	}
}

// WithPolicy replaces the policy rendered HTML is sanitized with.
// Default: bluemonday.UGCPolicy. A nil policy disables sanitizing.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(l *Loader) {
		l.policy = p
	}
}

// NewLoader returns a Loader reading from fsys.
func NewLoader(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{
		fsys: fsys,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: defaultPolicy(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// defaultPolicy is the UGC policy plus the heading ids goldmark generates.
func defaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	return p
}

// Load returns the served body of a content path.
// Markdown files become a JSON Document, directories a JSON array of file
// paths, anything else is returned verbatim.
func (l *Loader) Load(name string) (string, error) {
	if name == "" || strings.HasSuffix(name, "/") {
		return l.list(strings.TrimSuffix(name, "/"))
	}
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", err
	}

	if !IsMarkdown(name) {
		return string(data), nil
	}
	doc, err := l.render(name, data)
	if err != nil {
		return "", err
	}
	return encode(doc)
}

func (l *Loader) render(name string, data []byte) (*Document, error) {
	p, err := parseFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var out bytes.Buffer
	if err := l.md.Convert([]byte(p.Body), &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}
	rendered := out.String()
	if l.policy != nil {
		rendered = l.policy.Sanitize(rendered)
	}

	return &Document{
		Path:        name,
		Frontmatter: p.Metadata,
		Body:        p.Body,
		HTML:        rendered,
	}, nil
}

func (l *Loader) list(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if !fs.ValidPath(dir) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, dir)
	}

	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s/", ErrNotFound, dir)
		}
		return "", err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return encode(files)
}

// IsMarkdown reports whether name has a markdown extension.
func IsMarkdown(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
