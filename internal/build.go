package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrymomot/kiln/pkg/backend"
	"github.com/dmitrymomot/kiln/pkg/content"
	"github.com/dmitrymomot/kiln/pkg/preflight"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/site"
	"github.com/dmitrymomot/kiln/pkg/storage"
	"github.com/dmitrymomot/kiln/pkg/store"
)

const (
	redisAttempts = 3
	redisInterval = time.Second
)

// BuildReport summarizes a finished build.
type BuildReport struct {
	Manifest *site.Manifest
	// Snapshot is the snapshot file written, empty for replay builds.
	Snapshot string
	// Published is the number of files uploaded, zero unless publishing.
	Published int
}

// Build runs a full build: preflight, resolve and render, write the output,
// save the snapshot (live mode) and publish.
//
// If routes fail, the successful routes are still written and the returned
// error is a *site.BuildError. The snapshot is only saved and the site only
// published when every route succeeded.
func (a *App) Build(ctx context.Context) (*BuildReport, error) {
	if len(a.pages) == 0 {
		return nil, ErrNoPages
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	app, _ := a.cfg.AppType()

	snapDir, snapKey := splitSnapshot(a.cfg.Snapshot)
	snapStore, err := storage.NewLocal(snapDir)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot location: %v", ErrPreflight, err)
	}

	raw, closeRaw, rawErr := a.openRawStore(ctx)
	defer closeRaw()

	var publisher storage.Storage
	var publishErr error
	if a.cfg.Publish.Enabled {
		publisher, publishErr = a.openPublisher()
	}

	checks := a.checks(snapStore, snapDir, snapKey, raw, rawErr, publishErr)
	if _, err := preflight.Run(ctx, checks, preflight.WithLogger(a.logger)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPreflight, err)
	}

	src, closeSrc, err := a.source(ctx, snapStore, snapKey, raw)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	builder := site.NewBuilder(src,
		site.WithAppType(app),
		site.WithEnv(a.env),
		site.WithWorkers(a.cfg.Workers),
		site.WithLogger(a.logger),
		site.WithBuildID(a.newBuildID),
	)
	res, buildErr := builder.Build(ctx, a.pages...)
	if res == nil {
		return nil, buildErr
	}

	if err := resetOutput(a.cfg.OutputDir); err != nil {
		return nil, err
	}
	out, err := storage.NewLocal(a.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	manifest, err := site.Write(ctx, out, res, site.WithMode(a.cfg.Mode))
	if err != nil {
		return nil, errors.Join(err, buildErr)
	}
	report := &BuildReport{Manifest: manifest}

	log := a.logger.With(slog.String("build_id", res.BuildID))
	log.InfoContext(ctx, "site written",
		slog.String("output", a.cfg.OutputDir),
		slog.Int("routes", len(manifest.Routes)),
		slog.Int("skipped", len(manifest.Skipped)),
	)
	if buildErr != nil {
		return report, buildErr
	}

	if a.cfg.Mode == ModeLive {
		snap, err := res.Snapshot()
		if err != nil {
			return report, err
		}
		if err := store.SaveSnapshot(ctx, snapStore, snapKey, snap); err != nil {
			return report, fmt.Errorf("save snapshot: %w", err)
		}
		report.Snapshot = a.cfg.Snapshot
		log.InfoContext(ctx, "snapshot saved", slog.String("path", a.cfg.Snapshot), slog.Int("responses", len(snap)))
	}

	if publisher != nil {
		var opts []storage.Option
		if cc := a.cfg.Publish.CacheControl; cc != "" {
			opts = append(opts, storage.WithCacheControl(cc))
		}
		n, err := storage.Publish(ctx, os.DirFS(a.cfg.OutputDir), publisher, opts...)
		report.Published = n
		if err != nil {
			return report, fmt.Errorf("%w: %w", ErrPublish, err)
		}
		log.InfoContext(ctx, "site published", slog.Int("files", n))
	}
	return report, nil
}

// Check runs the preflight checks and the secret check of every page without
// building.
func (a *App) Check(ctx context.Context) (*preflight.Report, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	snapDir, snapKey := splitSnapshot(a.cfg.Snapshot)
	snapStore, err := storage.NewLocal(snapDir)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot location: %v", ErrPreflight, err)
	}
	raw, closeRaw, rawErr := a.openRawStore(ctx)
	defer closeRaw()

	var publishErr error
	if a.cfg.Publish.Enabled {
		_, publishErr = a.openPublisher()
	}
	report, err := preflight.Run(ctx, a.checks(snapStore, snapDir, snapKey, raw, rawErr, publishErr), preflight.WithLogger(a.logger))
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrPreflight, err)
	}
	return report, nil
}

func (a *App) checks(
	snapStore storage.Storage,
	snapDir, snapKey string,
	raw store.Store,
	rawErr, publishErr error,
) preflight.Checks {
	checks := preflight.Checks{
		"output": preflight.Writable(a.cfg.OutputDir),
	}
	if a.cfg.Mode == ModeReplay {
		checks["snapshot"] = preflight.Exists(snapStore, snapKey)
	} else {
		checks["snapshot"] = preflight.Writable(snapDir)
	}
	if a.cfg.ContentDir != "" {
		checks["content"] = preflight.Dir(a.cfg.ContentDir)
	}

	switch {
	case rawErr != nil:
		checks["raw_store"] = preflight.Err(rawErr)
	case a.cfg.RawStore.Kind == RawStoreDir:
		checks["raw_store"] = preflight.Writable(a.cfg.RawStore.Dir)
	case raw != nil:
		if hc, ok := raw.(interface{ Healthcheck(context.Context) error }); ok {
			checks["raw_store"] = hc.Healthcheck
		}
	}
	if publishErr != nil {
		checks["publish"] = preflight.Err(publishErr)
	}
	if err := a.checkSecrets(); err != nil {
		checks["secrets"] = preflight.Err(err)
	}
	return checks
}

// checkSecrets verifies the secrets of every page's route list.
// Secrets of route data are verified by the builder once routes are known.
func (a *App) checkSecrets() error {
	var errs []error
	for _, p := range a.pages {
		if err := site.CheckRoutes(a.env, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) source(ctx context.Context, snapStore storage.Storage, snapKey string, raw store.Store) (request.Source, func(), error) {
	if a.cfg.Mode == ModeReplay {
		replay, err := backend.LoadReplay(ctx, snapStore, snapKey)
		if err != nil {
			return nil, nil, err
		}
		a.logger.InfoContext(ctx, "replaying snapshot", slog.String("path", a.cfg.Snapshot), slog.Int("responses", replay.Len()))
		return replay, func() {}, nil
	}

	opts := []backend.LiveOption{
		backend.WithMaxBodyBytes(a.cfg.HTTP.MaxBodyBytes),
		backend.WithUserAgent(a.cfg.HTTP.UserAgent),
		backend.WithRateLimit(a.cfg.HTTP.RateLimit, a.cfg.HTTP.RateWindow.Duration),
		backend.WithLogger(a.logger),
	}
	if a.httpClient != nil {
		opts = append(opts, backend.WithHTTPClient(a.httpClient))
	} else {
		opts = append(opts, backend.WithTimeout(a.cfg.HTTP.Timeout.Duration))
	}
	if a.content != nil {
		opts = append(opts, backend.WithContentLoader(content.NewLoader(a.content)))
	}
	if raw != nil {
		opts = append(opts, backend.WithRawStore(raw))
	}
	live := backend.NewLive(opts...)
	return live, live.Close, nil
}

// openRawStore opens the configured raw response store. The returned close
// function is always safe to call.
func (a *App) openRawStore(ctx context.Context) (store.Store, func(), error) {
	noop := func() {}
	if a.cfg.Mode != ModeLive {
		return nil, noop, nil
	}

	switch a.cfg.RawStore.Kind {
	case RawStoreDir:
		local, err := storage.NewLocal(a.cfg.RawStore.Dir)
		if err != nil {
			return nil, noop, err
		}
		return store.NewBlob(local, ""), noop, nil
	case RawStoreRedis:
		client, err := store.OpenRedis(ctx, a.cfg.RawStore.URL, redisAttempts, redisInterval)
		if err != nil {
			return nil, noop, err
		}
		r := store.NewRedis(client,
			store.WithPrefix(a.cfg.RawStore.Prefix),
			store.WithTTL(a.cfg.RawStore.TTL.Duration),
		)
		return r, func() { _ = client.Close() }, nil
	}
	return nil, noop, nil
}

func (a *App) openPublisher() (storage.Storage, error) {
	if a.publisher != nil {
		return a.publisher, nil
	}
	return storage.New(a.cfg.Publish.Config)
}

func splitSnapshot(path string) (dir, key string) {
	dir, key = filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	return dir, key
}

// resetOutput removes the output of a previous build. Directories without a
// manifest are left alone.
func resetOutput(dir string) error {
	_, err := os.Stat(filepath.Join(dir, site.ManifestFile))
	switch {
	case err == nil:
		return os.RemoveAll(dir)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return err
	}
}
