package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/kiln/pkg/storage"
)

// Snapshot maps fingerprints to response bodies.
type Snapshot map[string]string

// Lookup returns the body stored under fp.
func (s Snapshot) Lookup(fp string) (string, bool) {
	body, ok := s[fp]
	return body, ok
}

// Marshal encodes the snapshot as indented JSON with sorted keys and a trailing
// newline. HTML characters are not escaped, so bodies stay readable in diffs.
func (s Snapshot) Marshal() ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// encoding/json writes map keys in sorted order.
	if err := enc.Encode(map[string]string(s)); err != nil {
		return nil, fmt.Errorf("store: encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseSnapshot decodes a snapshot produced by Marshal.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}

// LoadSnapshot reads the snapshot stored under key.
// A missing snapshot is returned as ErrNotFound.
func LoadSnapshot(ctx context.Context, s storage.Storage, key string) (Snapshot, error) {
	data, err := storage.ReadAll(ctx, s, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, key)
		}
		return nil, err
	}
	return ParseSnapshot(data)
}

// SaveSnapshot writes snap under key.
func SaveSnapshot(ctx context.Context, s storage.Storage, key string, snap Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return err
	}
	_, err = storage.PutBytes(ctx, s, key, data, storage.WithContentType("application/json"))
	return err
}
