package site

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/secrets"
)

// Module is a page module accepted by Builder.Build. Page is the only
// implementation.
type Module interface {
	PageName() string
	RoutePattern() string

	routes() (request.Request[[]Params], error)
	route(p Params) routeJob
}

// Page is a page module rendering data of type T.
type Page[T any] struct {
	// Name identifies the page in errors, logs and the manifest.
	Name string
	// Pattern is the route path, e.g. "/blog/:slug".
	Pattern string
	// Routes lists the parameters of every route. It may be left unset for
	// patterns without parameters.
	Routes request.Request[[]Params]
	// Data is the request resolved for each route.
	Data func(Params) request.Request[T]
	// View renders a route.
	View func(Params, T) templ.Component
}

func (p Page[T]) PageName() string     { return p.Name }
func (p Page[T]) RoutePattern() string { return p.Pattern }

func (p Page[T]) routes() (request.Request[[]Params], error) {
	if p.Name == "" || p.Data == nil || p.View == nil {
		return request.Request[[]Params]{}, fmt.Errorf("%w: %q needs a name, data and view", ErrInvalidPage, p.Name)
	}
	names, err := paramNames(p.Pattern)
	if err != nil {
		return request.Request[[]Params]{}, err
	}
	if !p.Routes.IsZero() {
		return p.Routes, nil
	}
	if len(names) > 0 {
		return request.Request[[]Params]{}, fmt.Errorf("%w: %s", ErrNoRoutes, p.Pattern)
	}
	return request.Succeed([]Params{{}}), nil
}

func (p Page[T]) route(params Params) routeJob {
	data := p.Data(params)
	return routeJob{
		check: func(env secrets.Env) error {
			return request.CheckSecrets(env, data)
		},
		run: func(ctx context.Context, ac request.AppContext, src request.Source) (templ.Component, request.Delta, error) {
			v, delta, err := request.Resolve(ctx, ac, src, data)
			if err != nil {
				return nil, delta, err
			}
			return p.View(params, v), delta, nil
		},
	}
}

// routeJob is a page route with its type parameter erased.
type routeJob struct {
	check func(secrets.Env) error
	run   func(context.Context, request.AppContext, request.Source) (templ.Component, request.Delta, error)
}

// Static is the route list of a single route without parameters.
func Static() request.Request[[]Params] {
	return request.Succeed([]Params{{}})
}

// Each maps a requested list to route parameters.
func Each[A any](r request.Request[[]A], f func(A) Params) request.Request[[]Params] {
	return request.Map(r, func(items []A) []Params {
		out := make([]Params, 0, len(items))
		for _, it := range items {
			out = append(out, f(it))
		}
		return out
	})
}

// CheckRoutes reports the secrets referenced by the initial calls of m's route
// list that env lacks. Invalid pages are left to Builder.Build to report.
func CheckRoutes(env secrets.Env, m Module) error {
	r, err := m.routes()
	if err != nil {
		return nil
	}
	if err := request.CheckSecrets(env, r); err != nil {
		return &RouteError{Page: m.PageName(), Path: m.RoutePattern(), Err: err}
	}
	return nil
}
