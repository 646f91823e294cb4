package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/kiln/pkg/preflight"
	"github.com/dmitrymomot/kiln/pkg/site"
)

// Preview server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 10 * time.Second
)

// PreviewHandler serves the output directory.
//
// Route paths resolve to their index.html. Build artifacts other than route
// data (the snapshot and the manifest) are served as is.
func (a *App) PreviewHandler() http.Handler {
	dir := a.cfg.OutputDir
	fileServer := http.FileServerFS(os.DirFS(dir))

	r := chi.NewRouter()
	r.Get("/health/live", preflight.LivenessHandler())
	r.Get("/health/ready", preflight.ReadinessHandler(preflight.Checks{
		"output":   preflight.Dir(dir),
		"manifest": fileExists(path.Join(dir, site.ManifestFile)),
	}, preflight.WithLogger(a.logger)))

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if strings.HasSuffix(req.URL.Path, "/"+site.IndexFile) {
			// FileServer redirects index.html to its directory.
			req.URL.Path = strings.TrimSuffix(req.URL.Path, site.IndexFile)
		}
		fileServer.ServeHTTP(w, req)
	})
	return r
}

func fileExists(name string) preflight.Check {
	return func(context.Context) error {
		_, err := os.Stat(name)
		return err
	}
}

// Preview serves the output directory on addr and blocks until ctx is done
// or the process receives SIGINT or SIGTERM. An empty addr uses the
// configured preview address.
func (a *App) Preview(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.Preview.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	log := a.logger
	shutdownTimeout := a.cfg.Preview.ShutdownTimeout.Duration
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	server := &http.Server{
		Handler:           a.PreviewHandler(),
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info("preview server starting",
			slog.String("address", ln.Addr().String()),
			slog.String("dir", a.cfg.OutputDir),
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down preview server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	log.Info("shutdown completed")
	return nil
}
