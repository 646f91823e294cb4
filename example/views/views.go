package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/kiln/example/requests"
)

func page(title string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body>", templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// Home renders the repository summary and the post index.
func Home(repo requests.Repo, posts []requests.Post) templ.Component {
	return page(repo.Name, func(w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<h1>%s</h1><p>%s</p><p>%d stars</p>",
			templ.EscapeString(repo.Name), templ.EscapeString(repo.Description), repo.Stars)
		if len(repo.Contributors) > 0 {
			fmt.Fprintf(&b, "<p>Contributors: %s</p>", templ.EscapeString(strings.Join(repo.Contributors, ", ")))
		}
		b.WriteString("<ul>")
		for _, p := range posts {
			if p.Draft {
				continue
			}
			fmt.Fprintf(&b, "<li><a href=\"/blog/%s/\">%s</a> <time>%s</time></li>",
				templ.EscapeString(p.Slug), templ.EscapeString(p.Title), formatDate(p.Date))
		}
		b.WriteString("</ul>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Post renders a single post. The post HTML is already sanitized.
func Post(p requests.Post) templ.Component {
	return page(p.Title, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "<article><h1>%s</h1><time>%s</time>%s</article>",
			templ.EscapeString(p.Title), formatDate(p.Date), p.HTML)
		return err
	})
}

// formatDate formats an ISO date for display.
func formatDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return templ.EscapeString(date)
	}
	return t.Format("Jan 2, 2006")
}
