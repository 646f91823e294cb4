// Package decode provides JSON decoder combinators that record provenance.
//
// A [Decoder] produces a typed value and, alongside it, a [Keep]: the set of
// JSON paths it actually read. [Strip] uses that set to re-serialize a document
// with everything else removed.
//
//	type Repo struct {
//	    Name    string
//	    License string
//	}
//
//	repo := decode.Map2(
//	    decode.Field("name", decode.String()),
//	    decode.At([]string{"license", "url"}, decode.String()),
//	    func(name, license string) Repo { return Repo{name, license} },
//	)
//
//	v, minimized, _, err := decode.DecodeStrip(repo, body)
//	// minimized == `{"name":"kiln","license":{"url":"https://..."}}`
//
// # Round-trip guarantee
//
// Running the same decoder against the minimized document yields the same value.
// Minimized snapshots are replayed in later builds and at hydration time, so
// every combinator is written to preserve this:
//
//   - scalars are kept as their original literal text
//   - objects keep visited keys in document order
//   - arrays keep item positions; skipped leading items become null
//   - failed [OneOf] alternatives keep what they visited, so they fail again
//
// [DecodeStrip] checks the guarantee on every call and reports
// [ErrMinimizeInvariant] if it is ever violated.
//
// # Errors
//
// Decoding failures are returned as *[Error] with the JSON path and the expected
// and actual shapes:
//
//	decode: at $.license.url: expected string, got number
package decode
