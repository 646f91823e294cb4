// Package site builds every route of a site from its page modules.
//
// A page declares its routes and per-route data as requests and renders the
// resolved data with a templ component:
//
//	posts := site.Page[Post]{
//		Name:    "post",
//		Pattern: "/blog/:slug",
//		Routes:  site.Each(content.List("posts"), postParams),
//		Data: func(p site.Params) request.Request[Post] {
//			return content.Get("posts/"+p["slug"]+".md", postDecoder)
//		},
//		View: func(p site.Params, post Post) templ.Component { return PostView(post) },
//	}
//
//	res, err := site.NewBuilder(backend.NewLive()).Build(ctx, posts)
//
// All routes share one response cache, so a call made by several routes is
// performed once per build. Route failures are collected: Build renders every
// route it can and returns a *BuildError listing the rest. Routes whose request
// aborts with request.Fail are skipped.
//
// Write stores the result: index.html and content.json per route, the merged
// snapshot.json and manifest.json.
package site
