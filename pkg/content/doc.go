// Package content resolves markdown and data files through the request engine.
//
// Files are addressed by "content://" URLs and fetched by the live backend with
// a [Loader], so they are deduplicated, minimized and snapshotted exactly like
// HTTP responses. Replay builds never touch the file system.
//
// A markdown file with YAML frontmatter is served as a JSON document:
//
//	{"path":"blog/hello.md","frontmatter":{"title":"Hello"},"body":"# Hello\n...","html":"<h1 id=\"hello\">Hello</h1>..."}
//
// Any other file is served as is. A directory URL ("content://blog/") lists the
// regular files in it as a sorted JSON array of paths.
//
//	title := content.Get("blog/hello.md", content.Frontmatter(decode.Field("title", decode.String())))
//	posts := content.List("blog")
package content
