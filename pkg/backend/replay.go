package backend

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/storage"
	"github.com/dmitrymomot/kiln/pkg/store"
)

// Replay answers calls from a snapshot. A miss is always an error.
type Replay struct {
	snap store.Snapshot
}

// NewReplay serves the bodies of snap.
func NewReplay(snap store.Snapshot) *Replay {
	if snap == nil {
		snap = store.Snapshot{}
	}
	return &Replay{snap: snap}
}

// LoadReplay reads the snapshot stored under key and serves it.
func LoadReplay(ctx context.Context, s storage.Storage, key string) (*Replay, error) {
	snap, err := store.LoadSnapshot(ctx, s, key)
	if err != nil {
		return nil, err
	}
	return NewReplay(snap), nil
}

// Fetch returns the snapshot body for the call's fingerprint.
func (r *Replay) Fetch(_ context.Context, call request.Call) (string, error) {
	body, ok := r.snap.Lookup(call.Fingerprint)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotCached, call.Fingerprint)
	}
	return body, nil
}

// Len returns the number of snapshot entries.
func (r *Replay) Len() int {
	return len(r.snap)
}

var _ request.Source = (*Replay)(nil)
