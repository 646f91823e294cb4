// Command example builds a small site from the GitHub API and local markdown.
//
//	GITHUB_TOKEN=... go run ./example build --mode live
//	go run ./example build --mode replay
//	go run ./example preview
package main

import (
	"embed"
	"io/fs"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/kiln"
	"github.com/dmitrymomot/kiln/example/requests"
	"github.com/dmitrymomot/kiln/example/views"
	"github.com/dmitrymomot/kiln/pkg/request"
)

//go:embed content
var files embed.FS

type home struct {
	repo  requests.Repo
	posts []requests.Post
}

func main() {
	contentFS, err := fs.Sub(files, "content")
	if err != nil {
		panic(err)
	}

	pages := []kiln.Module{
		kiln.Page[home]{
			Name:    "home",
			Pattern: "/",
			Data: func(kiln.Params) kiln.Request[home] {
				return request.Map2(requests.GetRepo(), requests.PostTitles(), func(r requests.Repo, p []requests.Post) home {
					return home{repo: r, posts: p}
				})
			},
			View: func(_ kiln.Params, h home) templ.Component {
				return views.Home(h.repo, h.posts)
			},
		},
		kiln.Page[requests.Post]{
			Name:    "post",
			Pattern: "/blog/:slug",
			Routes:  requests.PostRoutes(),
			Data:    requests.GetPost,
			View: func(_ kiln.Params, p requests.Post) templ.Component {
				return views.Post(p)
			},
		},
	}

	kiln.Main(pages, kiln.WithContent(contentFS))
}
