package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmitrymomot/kiln/pkg/logger"
	"github.com/dmitrymomot/kiln/pkg/secrets"
	"github.com/dmitrymomot/kiln/pkg/site"
	"github.com/dmitrymomot/kiln/pkg/storage"
)

// App builds and previews a site.
// App is immutable after creation; all configuration is done via New().
type App struct {
	cfg        Config
	pages      []site.Module
	logger     *slog.Logger
	env        secrets.Env
	content    fs.FS
	httpClient *http.Client
	publisher  storage.Storage
	newBuildID func() string
}

// Option configures the application.
type Option func(*App)

// New creates an application with the given options.
//
// Example:
//
//	app := internal.New(
//	    internal.WithConfig(cfg),
//	    internal.WithPages(home, posts),
//	)
func New(opts ...Option) *App {
	a := &App{
		cfg:    Default(),
		logger: logger.NewNope(),
		env:    secrets.OS(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.content == nil && a.cfg.ContentDir != "" {
		a.content = os.DirFS(a.cfg.ContentDir)
	}
	return a
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.cfg = cfg
	}
}

// WithPages registers page modules.
func WithPages(pages ...site.Module) Option {
	return func(a *App) {
		a.pages = append(a.pages, pages...)
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithEnv sets where secrets are read from. Defaults to the process environment.
func WithEnv(env secrets.Env) Option {
	return func(a *App) {
		if env != nil {
			a.env = env
		}
	}
}

// WithContent serves content:// requests from fsys instead of Config.ContentDir.
func WithContent(fsys fs.FS) Option {
	return func(a *App) {
		a.content = fsys
	}
}

// WithHTTPClient sets the client used by live builds.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.httpClient = c
	}
}

// WithPublisher sets the publish target instead of the S3 bucket from Config.
func WithPublisher(s storage.Storage) Option {
	return func(a *App) {
		a.publisher = s
	}
}

// WithBuildID overrides the build id generator.
func WithBuildID(fn func() string) Option {
	return func(a *App) {
		a.newBuildID = fn
	}
}

// Config returns the application configuration.
func (a *App) Config() Config {
	return a.cfg
}

// Pages returns the registered page modules.
func (a *App) Pages() []site.Module {
	return a.pages
}
