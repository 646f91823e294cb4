package site

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPattern = errors.New("site: invalid route pattern")
	ErrMissingParam   = errors.New("site: missing route parameter")
	ErrInvalidParam   = errors.New("site: invalid route parameter")
	ErrDuplicateRoute = errors.New("site: duplicate route path")
	ErrNoRoutes       = errors.New("site: page with parameters declares no routes")
	ErrInvalidPage    = errors.New("site: invalid page")
	ErrRender         = errors.New("site: render failed")
	ErrBuild          = errors.New("site: build failed")
)

// RouteError is the failure of a single route. Path is the pattern when the
// route list itself failed.
type RouteError struct {
	Page string
	Path string
	Err  error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("site: page %q route %s: %v", e.Page, e.Path, e.Err)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// BuildError collects every failed route of a build.
type BuildError struct {
	Failed []*RouteError
}

func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "site: %d route(s) failed", len(e.Failed))
	for _, f := range e.Failed {
		b.WriteString("\n  ")
		b.WriteString(f.Error())
	}
	return b.String()
}

func (e *BuildError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed)+1)
	errs = append(errs, ErrBuild)
	for _, f := range e.Failed {
		errs = append(errs, f)
	}
	return errs
}
