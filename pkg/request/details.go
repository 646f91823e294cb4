package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Header is a single request header. Headers are kept as an ordered list.
type Header struct {
	Name  string
	Value string
}

// Body is a request body with its content type.
type Body struct {
	mime    string
	content string
}

// EmptyBody is a request without a body.
func EmptyBody() Body {
	return Body{}
}

// StringBody sends content with the given content type.
func StringBody(mime, content string) Body {
	return Body{mime: mime, content: content}
}

// JSONBody marshals v and sends it as application/json.
// It panics if v cannot be marshaled.
func JSONBody(v any) Body {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("request: json body: %v", err))
	}
	return Body{mime: "application/json", content: string(b)}
}

// MIME returns the body content type, empty for an empty body.
func (b Body) MIME() string { return b.mime }

// Content returns the raw body.
func (b Body) Content() string { return b.content }

// IsEmpty reports whether the body carries no content type and no content.
func (b Body) IsEmpty() bool { return b.mime == "" && b.content == "" }

// Details describes a single call.
type Details struct {
	URL     string
	Method  string // defaults to GET
	Headers []Header
	Body    Body
}

// Verb returns the upper-cased method, GET when unset.
func (d Details) Verb() string {
	if d.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(d.Method)
}

// String summarizes the call for logs and error messages.
func (d Details) String() string {
	s := d.Verb() + " " + d.URL
	if d.Body.mime != "" {
		s += " (" + d.Body.mime + ")"
	}
	return s
}
