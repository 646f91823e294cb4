// Package kiln builds static sites from declarative data requests.
//
// A page declares the data it needs as a [Request]: HTTP calls and content
// files paired with decoders. kiln resolves every request of every route,
// renders the route with its view and keeps only the parts of each response
// the decoders read. The result is written with a snapshot that replays the
// build without network access.
//
// # Quick Start
//
//	repo := request.Get(
//	    kiln.Plain("https://api.github.com/repos/dmitrymomot/kiln"),
//	    decode.Field("stargazers_count", decode.Int()),
//	)
//
//	home := kiln.Page[int]{
//	    Name:    "home",
//	    Pattern: "/",
//	    Data:    func(kiln.Params) kiln.Request[int] { return repo },
//	    View:    func(_ kiln.Params, stars int) templ.Component { return views.Home(stars) },
//	}
//
//	func main() {
//	    kiln.Main([]kiln.Module{home})
//	}
//
// # Routes
//
// Patterns may contain ":name" segments. The route list of such a page is a
// request too, so routes can depend on fetched data:
//
//	slugs := content.List("posts")
//
//	posts := kiln.Page[Post]{
//	    Name:    "post",
//	    Pattern: "/blog/:slug",
//	    Routes: kiln.Each(slugs, func(name string) kiln.Params {
//	        return kiln.Params{"slug": slug.Make(path.Base(name))}
//	    }),
//	    ...
//	}
//
// # Modes
//
// Live builds fetch from the network and save the minimized snapshot. Replay
// builds answer every call from the snapshot and fail on a missing response:
//
//	kiln build --mode live
//	kiln build --mode replay
//
// # Secrets
//
// Credentials are referenced by name with [WithSecrets] and read from the
// [Env] at build time. They never reach fingerprints, the snapshot, errors or
// logs. A missing secret fails the build before any request is sent.
//
// # Output
//
// Every route is written to <path>/index.html, with the responses it consumed
// in <path>/content.json. The output root also holds snapshot.json and
// manifest.json. See [site.Write].
package kiln
