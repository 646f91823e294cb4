// Package store persists response bodies by request fingerprint.
//
// A [Store] is the durable side of the live backend: every raw response fetched
// during a live build is written to it. [Memory], [Redis] and [Blob] (any
// storage.Storage, local directory or S3) implement it.
//
// A [Snapshot] is the build artifact replay builds run from: a mapping from
// fingerprint to minimized body. [Snapshot.Marshal] is deterministic, so the same
// inputs always produce a byte-identical file that diffs cleanly in source control.
package store
