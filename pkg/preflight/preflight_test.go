package preflight_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrymomot/kiln/pkg/preflight"
	"github.com/dmitrymomot/kiln/pkg/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("all pass", func(t *testing.T) {
		t.Parallel()
		report, err := preflight.Run(context.Background(), preflight.Checks{
			"output": preflight.Writable(filepath.Join(t.TempDir(), "dist")),
			"noop":   preflight.Err(nil),
		})
		require.NoError(t, err)
		assert.Equal(t, preflight.StatusHealthy, report.Status)
		assert.Len(t, report.Checks, 2)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		report, err := preflight.Run(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, preflight.StatusHealthy, report.Status)
	})

	t.Run("failures are joined by name", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		report, err := preflight.Run(context.Background(), preflight.Checks{
			"b":  preflight.Err(boom),
			"a":  preflight.Dir(filepath.Join(t.TempDir(), "missing")),
			"ok": preflight.Err(nil),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, preflight.ErrCheckFailed)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, preflight.StatusUnhealthy, report.Status)
		assert.Equal(t, "boom", report.Checks["b"].Error)
		assert.Equal(t, preflight.StatusHealthy, report.Checks["ok"].Status)

		msg := err.Error()
		assert.Less(t, strings.Index(msg, "preflight: a:"), strings.Index(msg, "preflight: b:"))
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		_, err := preflight.Run(context.Background(), preflight.Checks{"slow": slow},
			preflight.WithTimeout(20*time.Millisecond))
		require.ErrorIs(t, err, preflight.ErrCheckTimeout)
	})
}

func TestExists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	_, err = storage.PutBytes(ctx, local, "snapshot.json", []byte("{}"))
	require.NoError(t, err)

	require.NoError(t, preflight.Exists(local, "snapshot.json")(ctx))
	require.ErrorIs(t, preflight.Exists(local, "absent.json")(ctx), storage.ErrNotFound)
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		preflight.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("readiness json", func(t *testing.T) {
		t.Parallel()
		h := preflight.ReadinessHandler(preflight.Checks{"output": preflight.Err(errors.New("gone"))})

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `"error":"gone"`)

		rec = httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, "Service Unavailable", rec.Body.String())
	})
}
