package requests

import (
	"path"
	"strings"

	"github.com/dmitrymomot/kiln"
	"github.com/dmitrymomot/kiln/pkg/content"
	"github.com/dmitrymomot/kiln/pkg/decode"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/slug"
)

// Post is a blog post read from content/posts.
type Post struct {
	Slug  string
	Title string
	Date  string
	Draft bool
	HTML  string
}

var postDecoder = decode.Map4(
	content.Frontmatter(decode.Field("title", decode.String())),
	content.Frontmatter(decode.OneOf(decode.Field("date", decode.String()), decode.Succeed(""))),
	content.Frontmatter(decode.OneOf(decode.Field("draft", decode.Bool()), decode.Succeed(false))),
	content.HTML(),
	func(title, date string, draft bool, html string) Post {
		return Post{Title: title, Date: date, Draft: draft, HTML: html}
	},
)

// PostRoutes lists one route per post file. The "file" parameter is the
// content path of the post.
func PostRoutes() kiln.Request[[]kiln.Params] {
	return kiln.Each(content.List("posts"), func(name string) kiln.Params {
		return kiln.Params{
			"slug": PostSlug(name),
			"file": name,
		}
	})
}

// PostSlug is the route slug of a post file.
func PostSlug(name string) string {
	return slug.Make(strings.TrimSuffix(path.Base(name), path.Ext(name)))
}

// GetPost loads the post behind a route. Drafts are skipped.
func GetPost(p kiln.Params) kiln.Request[Post] {
	post := content.Get(p["file"], postDecoder)
	return request.AndThen(post, func(v Post) kiln.Request[Post] {
		if v.Draft {
			return request.Fail[Post]("draft")
		}
		return request.Succeed(v)
	})
}

// PostTitles lists every post for the index page.
func PostTitles() kiln.Request[[]Post] {
	return request.AndThen(content.List("posts"), func(names []string) kiln.Request[[]Post] {
		posts := make([]kiln.Request[Post], 0, len(names))
		for _, name := range names {
			posts = append(posts, request.Map(content.Get(name, postDecoder), func(p Post) Post {
				p.Slug = PostSlug(name)
				return p
			}))
		}
		return request.Combine(posts)
	})
}
