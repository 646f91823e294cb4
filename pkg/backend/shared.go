package backend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/store"
)

// Shared is the build-wide response cache.
//
// Every fingerprint is fetched from the wrapped source at most once. Concurrent
// callers for a fingerprint that is in flight wait for that fetch, and failures
// are remembered so they are not retried within the build. Cancellation is
// not remembered: a caller whose context is still live fetches again.
type Shared struct {
	src   request.Source
	group singleflight.Group

	mu       sync.RWMutex
	bodies   map[string]string
	failures map[string]error

	fetches atomic.Int64
}

// NewShared wraps src.
func NewShared(src request.Source) *Shared {
	return &Shared{
		src:      src,
		bodies:   make(map[string]string),
		failures: make(map[string]error),
	}
}

// Fetch returns the cached body for call, fetching it once if needed.
func (s *Shared) Fetch(ctx context.Context, call request.Call) (string, error) {
	if body, ok, err := s.cached(call.Fingerprint); ok {
		return body, err
	}

	for {
		body, ran, err := s.fetch(ctx, call)
		// A joined fetch ran with another caller's context. Its cancellation
		// is not this caller's failure.
		if !ran && isContextErr(err) && ctx.Err() == nil {
			continue
		}
		return body, err
	}
}

// fetch reports whether this caller performed the fetch itself.
func (s *Shared) fetch(ctx context.Context, call request.Call) (string, bool, error) {
	ran := false
	v, err, _ := s.group.Do(call.Fingerprint, func() (any, error) {
		ran = true
		// A fetch for this fingerprint may have finished between the cache check
		// and joining the group.
		if body, ok, err := s.cached(call.Fingerprint); ok {
			return body, err
		}

		s.fetches.Add(1)
		body, err := s.src.Fetch(ctx, call)

		s.mu.Lock()
		switch {
		case isContextErr(err):
			// Not memoized: another caller may still fetch it.
		case err != nil:
			s.failures[call.Fingerprint] = err
		default:
			s.bodies[call.Fingerprint] = body
		}
		s.mu.Unlock()
		return body, err
	})
	if err != nil {
		return "", ran, err
	}
	return v.(string), ran, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Shared) cached(fp string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if body, ok := s.bodies[fp]; ok {
		return body, true, nil
	}
	if err, ok := s.failures[fp]; ok {
		return "", true, err
	}
	return "", false, nil
}

// Lookup returns a fetched body without fetching.
func (s *Shared) Lookup(fp string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.bodies[fp]
	return body, ok
}

// Len returns the number of cached bodies.
func (s *Shared) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bodies)
}

// Fetches returns how many times the wrapped source was called.
func (s *Shared) Fetches() int64 {
	return s.fetches.Load()
}

// Bodies copies every successfully fetched body.
func (s *Shared) Bodies() store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(store.Snapshot, len(s.bodies))
	for fp, body := range s.bodies {
		out[fp] = body
	}
	return out
}

var _ request.Source = (*Shared)(nil)
