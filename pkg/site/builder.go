package site

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/kiln/pkg/backend"
	"github.com/dmitrymomot/kiln/pkg/logger"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/secrets"
	"github.com/dmitrymomot/kiln/pkg/store"
)

// Route is a rendered route.
type Route struct {
	Page   string
	Path   string
	Params Params
	HTML   []byte
	// Delta holds the responses this route's data consumed.
	Delta request.Delta
}

// Skipped is a route that aborted with request.Fail.
type Skipped struct {
	Page   string `json:"page"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of a build. It is returned even when routes failed.
type Result struct {
	BuildID  string
	App      request.AppType
	Routes   []Route
	Skipped  []Skipped
	Started  time.Time
	Duration time.Duration
	// Fetches is the number of distinct calls performed.
	Fetches int64
	// Delta is every response consumed by the build, route lists included.
	Delta request.Delta
}

// Snapshot renders the merged delta.
func (r *Result) Snapshot() (store.Snapshot, error) {
	bodies, err := r.Delta.Bodies()
	if err != nil {
		return nil, err
	}
	return store.Snapshot(bodies), nil
}

// Builder runs builds against a source.
type Builder struct {
	src     request.Source
	app     request.AppType
	env     secrets.Env
	workers int
	logger  *slog.Logger
	newID   func() string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithAppType sets how responses are retained. Default: request.CLI.
func WithAppType(t request.AppType) BuilderOption {
	return func(b *Builder) {
		b.app = t
	}
}

// WithEnv sets where secrets are read from. Default: the process environment.
func WithEnv(env secrets.Env) BuilderOption {
	return func(b *Builder) {
		if env != nil {
			b.env = env
		}
	}
}

// WithWorkers bounds the number of routes resolved concurrently.
// Default: GOMAXPROCS.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithBuildID overrides the build id generator.
func WithBuildID(fn func() string) BuilderOption {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// NewBuilder creates a builder fetching from src.
func NewBuilder(src request.Source, opts ...BuilderOption) *Builder {
	b := &Builder{
		src:     src,
		app:     request.CLI,
		env:     secrets.OS(),
		workers: runtime.GOMAXPROCS(0),
		logger:  logger.NewNope(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type pendingRoute struct {
	module Module
	path   string
	params Params
	job    routeJob
}

// build is the mutable state of a single Build call.
type build struct {
	mu     sync.Mutex
	result *Result
	failed []*RouteError
}

func (s *build) fail(page, path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, &RouteError{Page: page, Path: path, Err: err})
}

func (s *build) skip(page, path string, err error) {
	var abort *request.AbortError
	reason := err.Error()
	if errors.As(err, &abort) {
		reason = abort.Message
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result.Skipped = append(s.result.Skipped, Skipped{Page: page, Path: path, Reason: reason})
}

func (s *build) merge(d request.Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result.Delta.Merge(d)
}

// Build resolves and renders every route of modules.
//
// Secrets referenced by the initial calls of all route lists, then of all
// route data, are checked before the respective phase fetches anything; a
// missing secret fails the build without network I/O. Route failures are
// collected into a *BuildError returned together with the partial result.
func (b *Builder) Build(ctx context.Context, modules ...Module) (*Result, error) {
	shared := backend.NewShared(b.src)
	ac := request.AppContext{Type: b.app, Env: b.env}
	st := &build{result: &Result{
		BuildID: b.newID(),
		App:     b.app,
		Started: time.Now(),
		Delta:   request.Delta{},
	}}
	ctx = logger.WithBuildID(ctx, st.result.BuildID)
	log := b.logger

	log.InfoContext(ctx, "build started", slog.Int("pages", len(modules)), slog.String("app", b.app.String()))

	lists := make([]request.Request[[]Params], len(modules))
	var errs []error
	for i, m := range modules {
		r, err := m.routes()
		if err != nil {
			st.fail(m.PageName(), m.RoutePattern(), err)
			continue
		}
		if err := request.CheckSecrets(b.env, r); err != nil {
			errs = append(errs, &RouteError{Page: m.PageName(), Path: m.RoutePattern(), Err: err})
		}
		lists[i] = r
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	routes, err := b.expand(ctx, ac, shared, st, modules, lists)
	if err != nil {
		return nil, err
	}

	for _, r := range routes {
		if err := r.job.check(b.env); err != nil {
			errs = append(errs, &RouteError{Page: r.module.PageName(), Path: r.path, Err: err})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := b.render(ctx, ac, shared, st, routes); err != nil {
		return nil, err
	}

	res := st.result
	res.Fetches = shared.Fetches()
	res.Duration = time.Since(res.Started)
	slices.SortFunc(res.Routes, func(a, b Route) int { return cmp.Compare(a.Path, b.Path) })
	slices.SortFunc(res.Skipped, func(a, b Skipped) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Page, b.Page))
	})

	log.InfoContext(ctx, "build finished",
		slog.Int("routes", len(res.Routes)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("failed", len(st.failed)),
		slog.Int64("fetches", res.Fetches),
		slog.Duration("duration", res.Duration),
	)

	if len(st.failed) > 0 {
		slices.SortFunc(st.failed, func(a, b *RouteError) int {
			return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Page, b.Page))
		})
		return res, &BuildError{Failed: st.failed}
	}
	return res, nil
}

// expand resolves every route list and expands the patterns.
func (b *Builder) expand(
	ctx context.Context,
	ac request.AppContext,
	src request.Source,
	st *build,
	modules []Module,
	lists []request.Request[[]Params],
) ([]pendingRoute, error) {
	params := make([][]Params, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, m := range modules {
		if lists[i].IsZero() {
			continue
		}
		g.Go(func() error {
			ps, delta, err := request.Resolve(gctx, ac, src, lists[i])
			switch {
			case err == nil:
			case request.IsAbort(err):
				st.merge(delta)
				st.skip(m.PageName(), m.RoutePattern(), err)
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				st.fail(m.PageName(), m.RoutePattern(), err)
				return nil
			}
			st.merge(delta)
			params[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var routes []pendingRoute
	owners := map[string]string{}
	for i, m := range modules {
		for _, p := range params[i] {
			path, err := Expand(m.RoutePattern(), p)
			if err != nil {
				st.fail(m.PageName(), m.RoutePattern(), err)
				continue
			}
			if owner, ok := owners[path]; ok {
				st.fail(m.PageName(), path, fmt.Errorf("%w: also built by %q", ErrDuplicateRoute, owner))
				continue
			}
			owners[path] = m.PageName()
			routes = append(routes, pendingRoute{module: m, path: path, params: p, job: m.route(p)})
		}
	}
	return routes, nil
}

// render resolves and renders routes on the worker pool.
func (b *Builder) render(ctx context.Context, ac request.AppContext, src request.Source, st *build, routes []pendingRoute) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, r := range routes {
		g.Go(func() error {
			rctx := logger.WithRoute(gctx, r.path)
			page := r.module.PageName()

			view, delta, err := r.job.run(rctx, ac, src)
			if err == nil {
				var html []byte
				html, err = renderHTML(rctx, view)
				if err == nil {
					st.merge(delta)
					st.mu.Lock()
					st.result.Routes = append(st.result.Routes, Route{
						Page:   page,
						Path:   r.path,
						Params: r.params,
						HTML:   html,
						Delta:  delta,
					})
					st.mu.Unlock()
					b.logger.DebugContext(rctx, "route rendered", slog.String("page", page), slog.Int("bytes", len(html)))
					return nil
				}
			}

			switch {
			case request.IsAbort(err):
				st.merge(delta)
				st.skip(page, r.path, err)
				b.logger.InfoContext(rctx, "route skipped", slog.String("page", page), slog.String("reason", err.Error()))
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				st.fail(page, r.path, err)
				b.logger.ErrorContext(rctx, "route failed", slog.String("page", page), slog.Any("error", err))
			}
			return nil
		})
	}
	return g.Wait()
}

func renderHTML(ctx context.Context, view templ.Component) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("%w: nil component", ErrRender)
	}
	var buf bytes.Buffer
	if err := view.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}
