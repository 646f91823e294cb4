// Package backend provides the sources request resolution fetches from.
//
// A build uses exactly one of two modes:
//
//   - [Live] performs HTTP calls and reads content files, persisting every raw
//     response to a store.Store.
//   - [Replay] answers from a previously written store.Snapshot and fails on any
//     miss; it never performs I/O.
//
// Either is wrapped in a [Shared] cache for the whole build, so concurrent routes
// asking for the same fingerprint share a single fetch.
//
//	live := backend.NewLive(
//	    backend.WithTimeout(10*time.Second),
//	    backend.WithRateLimit(10, time.Second),
//	    backend.WithContentLoader(content.NewLoader(os.DirFS("content"))),
//	    backend.WithRawStore(raw),
//	)
//	defer live.Close()
//	src := backend.NewShared(live)
package backend
