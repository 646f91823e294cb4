package kiln

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kiln/internal"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/secrets"
	"github.com/dmitrymomot/kiln/pkg/site"
	"github.com/dmitrymomot/kiln/pkg/storage"
)

// Type aliases - public API
type (
	// App builds and previews a site.
	App = internal.App

	// Option configures the application.
	Option = internal.Option

	// Config is the build configuration.
	Config = internal.Config

	// BuildReport summarizes a finished build.
	BuildReport = internal.BuildReport

	// Module is a page module. Use Page to declare one.
	Module = site.Module

	// Page declares the routes, data and view of a page.
	Page[T any] = site.Page[T]

	// Params are the parameters of a single route.
	Params = site.Params

	// Request describes data to fetch and how to decode it.
	Request[T any] = request.Request[T]

	// Details describes a single HTTP call.
	Details = request.Details

	// Header is a request header.
	Header = request.Header

	// Secret is a value that may reference secrets read at build time.
	Secret[T any] = secrets.Value[T]

	// Env is a source of secret values.
	Env = secrets.Env

	// BuildError reports the routes that failed.
	BuildError = site.BuildError

	// RouteError is the failure of a single route.
	RouteError = site.RouteError
)

// Errors for checking return values.
var (
	ErrInvalidConfig = internal.ErrInvalidConfig
	ErrNoPages       = internal.ErrNoPages
	ErrPreflight     = internal.ErrPreflight
	ErrPublish       = internal.ErrPublish
	ErrBuild         = site.ErrBuild
)

// Constructors

// New creates an application with the given options.
//
// Example:
//
//	app := kiln.New(
//	    kiln.WithConfig(cfg),
//	    kiln.WithPages(home, posts),
//	)
//
//	report, err := app.Build(ctx)
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// LoadConfig reads the YAML file at path, when set, and overlays the environment.
func LoadConfig(path string) (Config, error) {
	return internal.LoadConfig(path)
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return internal.Default()
}

// Command returns the kiln command line for pages.
// Options are applied after the loaded configuration.
func Command(pages []Module, opts ...Option) *cobra.Command {
	return internal.Command(pages, opts...)
}

// Main runs the kiln command line for pages and exits the process.
// SIGINT and SIGTERM cancel the running command.
//
// Example:
//
//	func main() {
//	    kiln.Main([]kiln.Module{pages.Home(), pages.Posts()})
//	}
func Main(pages []Module, opts ...Option) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Command(pages, opts...).ExecuteContext(ctx)
	stop()
	if err == nil {
		os.Exit(0)
	}

	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		for _, f := range buildErr.Failed {
			fmt.Fprintf(os.Stderr, "kiln: %s\n", f)
		}
	} else {
		fmt.Fprintf(os.Stderr, "kiln: %s\n", err)
	}
	os.Exit(1)
}

// App options

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return internal.WithConfig(cfg)
}

// WithPages registers page modules.
func WithPages(pages ...Module) Option {
	return internal.WithPages(pages...)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithEnv sets where secrets are read from.
// Defaults to the process environment.
func WithEnv(env Env) Option {
	return internal.WithEnv(env)
}

// WithContent serves content files from fsys.
//
// Example:
//
//	//go:embed content
//	var files embed.FS
//
//	sub, _ := fs.Sub(files, "content")
//	kiln.New(kiln.WithContent(sub))
func WithContent(fsys fs.FS) Option {
	return internal.WithContent(fsys)
}

// WithHTTPClient sets the client used by live builds.
func WithHTTPClient(c *http.Client) Option {
	return internal.WithHTTPClient(c)
}

// WithPublisher sets the publish target, overriding the configured S3 bucket.
func WithPublisher(s storage.Storage) Option {
	return internal.WithPublisher(s)
}

// Pages

// Static is the route list of a page with a single route.
func Static() Request[[]Params] {
	return site.Static()
}

// Each maps a requested list to route parameters.
//
// Example:
//
//	kiln.Each(slugs, func(s string) kiln.Params {
//	    return kiln.Params{"slug": s}
//	})
func Each[A any](r Request[[]A], f func(A) Params) Request[[]Params] {
	return site.Each(r, f)
}

// Secrets

// OSEnv reads secrets from the process environment.
func OSEnv() Env {
	return secrets.OS()
}

// Plain wraps a value without secrets.
func Plain[T any](v T) Secret[T] {
	return secrets.Plain(v)
}

// WithSecrets builds a value that reads secrets by name at build time.
//
// Example:
//
//	kiln.WithSecrets(func(get secrets.Get) kiln.Details {
//	    return kiln.Details{
//	        URL:     "https://api.github.com/repos/dmitrymomot/kiln",
//	        Headers: []kiln.Header{{Name: "Authorization", Value: "Bearer " + get("GITHUB_TOKEN")}},
//	    }
//	})
func WithSecrets[T any](build func(get secrets.Get) T) Secret[T] {
	return secrets.With(build)
}
