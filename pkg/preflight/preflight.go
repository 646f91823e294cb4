package preflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/kiln/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Check is a single preflight check.
type Check func(ctx context.Context) error

// Checks is a set of named checks.
type Checks map[string]Check

// Report is the outcome of Run.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks,omitempty"`
}

// Result is the outcome of one check.
type Result struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures Run and the handlers.
type Option func(*config)

// WithTimeout bounds the whole run. Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes checks in parallel. The error joins a *CheckError per failure,
// ordered by name.
func Run(ctx context.Context, checks Checks, opts ...Option) (*Report, error) {
	return run(ctx, checks, newConfig(opts...))
}

func run(ctx context.Context, checks Checks, cfg *config) (*Report, error) {
	report := &Report{Status: StatusHealthy, Checks: make(map[string]Result, len(checks))}
	if len(checks) == 0 {
		return report, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed []*CheckError
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := time.Now()
			err := guard(ctx, check)
			res := Result{Status: StatusHealthy, Duration: time.Since(start).Round(time.Microsecond).String()}
			if err != nil {
				res.Status = StatusUnhealthy
				res.Error = err.Error()
				cfg.logger.WarnContext(ctx, "preflight check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = res
			if err != nil {
				failed = append(failed, &CheckError{Name: name, Err: err})
			}
		}()
	}
	wg.Wait()

	if len(failed) == 0 {
		return report, nil
	}
	report.Status = StatusUnhealthy
	slices.SortFunc(failed, func(a, b *CheckError) int { return strings.Compare(a.Name, b.Name) })
	errs := make([]error, len(failed))
	for i, f := range failed {
		errs[i] = f
	}
	return report, errors.Join(errs...)
}

// guard runs check, reporting a timeout if the context expires first.
// A check that ignores its context is abandoned, not waited for.
func guard(ctx context.Context, check Check) error {
	if check == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	select {
	case err := <-done:
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrCheckTimeout, err)
		}
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCheckTimeout, ctx.Err())
	}
}
