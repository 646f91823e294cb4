// Package request describes build-time data dependencies and resolves them.
//
// A [Request] is a pure description of data a page needs: either a resolved
// value ([Done]) or a set of pending HTTP-style calls plus a continuation that
// turns their responses into the next step ([Pending]). Requests compose with
// [Map], [Map2], [Combine] and [AndThen]; the latter expresses dependent calls
// where the result of one response decides what to fetch next.
//
//	license := request.Get(secrets.Plain(repoURL),
//	    decode.At([]string{"license", "url"}, decode.String()))
//
//	description := request.AndThen(license, func(url string) request.Request[string] {
//	    return request.Get(secrets.Plain(url), decode.Field("description", decode.String()))
//	})
//
// [Resolve] drives a request to completion against a [Source], fetching each
// fingerprint at most once, and returns the value together with a [Delta]: the
// minimized response bodies the request consumed, keyed by [Fingerprint].
//
// # Failures
//
// Resolution fails with one of:
//
//   - *[MissingResponseError]: the source could not answer a call
//   - *[DecodeError]: a response did not match its decoder
//   - *secrets.MissingError: a referenced secret is unset
//   - *[AbortError]: the page called [Fail] to exclude itself
package request
