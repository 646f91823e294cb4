package site

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/dmitrymomot/kiln/pkg/storage"
	"github.com/dmitrymomot/kiln/pkg/store"
)

// Output file names.
const (
	IndexFile    = "index.html"
	ContentFile  = "content.json"
	SnapshotFile = "snapshot.json"
	ManifestFile = "manifest.json"
)

// Manifest describes a written build.
type Manifest struct {
	BuildID   string          `json:"build_id"`
	Mode      string          `json:"mode,omitempty"`
	App       string          `json:"app"`
	StartedAt time.Time       `json:"started_at"`
	Duration  string          `json:"duration"`
	Fetches   int64           `json:"fetches"`
	Responses int             `json:"responses"`
	Routes    []ManifestRoute `json:"routes"`
	Skipped   []Skipped       `json:"skipped"`
}

// ManifestRoute is a written route.
type ManifestRoute struct {
	Page      string `json:"page"`
	Path      string `json:"path"`
	Responses int    `json:"responses"`
}

type writeOptions struct {
	mode         string
	cacheControl string
}

// WriteOption configures Write.
type WriteOption func(*writeOptions)

// WithMode records the backend mode (live or replay) in the manifest.
func WithMode(mode string) WriteOption {
	return func(o *writeOptions) {
		o.mode = mode
	}
}

// WithHTMLCacheControl sets Cache-Control on route HTML.
func WithHTMLCacheControl(cc string) WriteOption {
	return func(o *writeOptions) {
		o.cacheControl = cc
	}
}

// Write stores res in dst and returns the written manifest.
func Write(ctx context.Context, dst storage.Storage, res *Result, opts ...WriteOption) (*Manifest, error) {
	o := &writeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	m := &Manifest{
		BuildID:   res.BuildID,
		Mode:      o.mode,
		App:       res.App.String(),
		StartedAt: res.Started.UTC(),
		Duration:  res.Duration.Round(time.Millisecond).String(),
		Fetches:   res.Fetches,
		Responses: len(res.Delta),
		Routes:    make([]ManifestRoute, 0, len(res.Routes)),
		Skipped:   res.Skipped,
	}
	if m.Skipped == nil {
		m.Skipped = []Skipped{}
	}

	var htmlOpts []storage.Option
	if o.cacheControl != "" {
		htmlOpts = append(htmlOpts, storage.WithCacheControl(o.cacheControl))
	}

	for _, r := range res.Routes {
		dir := outputDir(r.Path)
		if _, err := storage.PutBytes(ctx, dst, path.Join(dir, IndexFile), r.HTML, htmlOpts...); err != nil {
			return nil, fmt.Errorf("site: write %s: %w", r.Path, err)
		}

		bodies, err := r.Delta.Bodies()
		if err != nil {
			return nil, fmt.Errorf("site: route %s data: %w", r.Path, err)
		}
		if err := store.SaveSnapshot(ctx, dst, path.Join(dir, ContentFile), store.Snapshot(bodies)); err != nil {
			return nil, fmt.Errorf("site: write %s data: %w", r.Path, err)
		}
		m.Routes = append(m.Routes, ManifestRoute{Page: r.Page, Path: r.Path, Responses: len(bodies)})
	}

	snap, err := res.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("site: snapshot: %w", err)
	}
	if err := store.SaveSnapshot(ctx, dst, SnapshotFile, snap); err != nil {
		return nil, fmt.Errorf("site: write snapshot: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("site: encode manifest: %w", err)
	}
	if _, err := storage.PutBytes(ctx, dst, ManifestFile, append(data, '\n')); err != nil {
		return nil, fmt.Errorf("site: write manifest: %w", err)
	}
	return m, nil
}
