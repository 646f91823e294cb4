// Package internal provides the core of the kiln site generator.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/kiln" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: runs builds and the preview server for a set of page modules
//   - Config: build configuration loaded from YAML and the environment
//   - Command: the cobra command tree behind the kiln binary
//
// # Builds
//
// A live build resolves every request against the network and the content
// directory, writes the site, and saves the minimized snapshot:
//
//	app := internal.New(
//	    internal.WithConfig(cfg),
//	    internal.WithPages(home, posts),
//	)
//	report, err := app.Build(ctx)
//
// A replay build (mode "replay") answers every request from the saved snapshot
// and fails on any request missing from it, so production builds never touch
// the network.
//
// Before anything is fetched, preflight checks verify the output and snapshot
// locations and the raw response store, and every secret referenced by the
// pages is looked up.
//
// # Preview
//
// Preview serves the output directory with /health/live and /health/ready
// endpoints and shuts down gracefully on SIGINT or SIGTERM.
package internal
