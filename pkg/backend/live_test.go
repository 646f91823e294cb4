package backend_test

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kiln/pkg/backend"
	"github.com/dmitrymomot/kiln/pkg/content"
	"github.com/dmitrymomot/kiln/pkg/logger"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/secrets"
	"github.com/dmitrymomot/kiln/pkg/store"
)

const payload = `{"name":"kiln","stargazers_count":12}`

func newLive(t *testing.T, opts ...backend.LiveOption) *backend.Live {
	t.Helper()
	live := backend.NewLive(opts...)
	t.Cleanup(live.Close)
	return live
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func revealed(t *testing.T, d secrets.Value[request.Details], env secrets.Env) request.Call {
	t.Helper()
	c, err := request.NewCall(d, env)
	require.NoError(t, err)
	return c
}

func TestLive_Encodings(t *testing.T) {
	t.Parallel()

	encoders := map[string]func(io.Writer) io.WriteCloser{
		"": func(w io.Writer) io.WriteCloser { return nopCloser{w} },
		"gzip": func(w io.Writer) io.WriteCloser {
			return gzip.NewWriter(w)
		},
		"br": func(w io.Writer) io.WriteCloser {
			return brotli.NewWriter(w)
		},
		"deflate": func(w io.Writer) io.WriteCloser {
			fw, _ := flate.NewWriter(w, flate.DefaultCompression)
			return fw
		},
	}

	for encoding, enc := range encoders {
		t.Run("encoding "+encoding, func(t *testing.T) {
			t.Parallel()

			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "gzip, deflate, br", r.Header.Get("Accept-Encoding"))
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				zw := enc(w)
				_, _ = io.WriteString(zw, payload)
				_ = zw.Close()
			})

			body, err := newLive(t).Fetch(context.Background(), call(t, srv.URL+"/repo"))
			require.NoError(t, err)
			assert.Equal(t, payload, body)
		})
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func TestLive_Request(t *testing.T) {
	t.Parallel()

	type seen struct {
		method, contentType, userAgent, body string
		multi                                []string
	}
	var (
		mu  sync.Mutex
		got seen
	)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = seen{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			userAgent:   r.Header.Get("User-Agent"),
			body:        string(data),
			multi:       r.Header.Values("X-Multi"),
		}
		mu.Unlock()
		_, _ = io.WriteString(w, `{"data":{}}`)
	})

	details := secrets.Plain(request.Details{
		URL:    srv.URL + "/graphql",
		Method: "post",
		Headers: []request.Header{
			{Name: "X-Multi", Value: "b"},
			{Name: "X-Multi", Value: "a"},
		},
		Body: request.JSONBody(map[string]string{"query": "{ viewer { login } }"}),
	})

	body, err := newLive(t, backend.WithUserAgent("kiln-test")).Fetch(context.Background(), revealed(t, details, secrets.Static{}))
	require.NoError(t, err)
	assert.Equal(t, `{"data":{}}`, body)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "kiln-test", got.userAgent)
	assert.Equal(t, `{"query":"{ viewer { login } }"}`, got.body)
	assert.Equal(t, []string{"b", "a"}, got.multi)
}

func TestLive_Errors(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		})

		_, err := newLive(t).Fetch(context.Background(), call(t, srv.URL+"/missing"))
		require.ErrorIs(t, err, backend.ErrStatus)

		var serr *backend.StatusError
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, http.StatusNotFound, serr.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, payload)
		})

		_, err := newLive(t, backend.WithMaxBodyBytes(8)).Fetch(context.Background(), call(t, srv.URL))
		require.ErrorIs(t, err, backend.ErrBodyTooLarge)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()
		_, err := newLive(t).Fetch(context.Background(), call(t, "ftp://example.com/file"))
		require.ErrorIs(t, err, backend.ErrUnsupportedScheme)
	})

	t.Run("no content loader", func(t *testing.T) {
		t.Parallel()
		_, err := newLive(t).Fetch(context.Background(), call(t, content.URL("posts/a.md")))
		require.ErrorIs(t, err, backend.ErrNoContentLoader)
	})

	t.Run("persist failure", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, payload)
		})

		_, err := newLive(t, backend.WithRawStore(failingStore{})).Fetch(context.Background(), call(t, srv.URL))
		require.ErrorIs(t, err, backend.ErrPersist)
	})
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", store.ErrNotFound }
func (failingStore) Put(context.Context, string, string) error   { return errors.New("disk full") }

func TestLive_TimeoutDoesNotLeakSecrets(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	env := secrets.Static{"API_TOKEN": "s3cr3t-value"}
	details := secrets.With(func(get secrets.Get) request.Details {
		return request.Details{
			URL:     srv.URL + "/repo?token=" + get("API_TOKEN"),
			Headers: []request.Header{{Name: "Authorization", Value: "Bearer " + get("API_TOKEN")}},
		}
	})

	var logs bytes.Buffer
	live := newLive(t,
		backend.WithTimeout(50*time.Millisecond),
		backend.WithLogger(logger.New(logger.WithOutput(&logs), logger.WithFormat(logger.FormatText))),
	)

	_, err := live.Fetch(context.Background(), revealed(t, details, env))
	require.ErrorIs(t, err, backend.ErrTimeout)
	assert.NotContains(t, err.Error(), "s3cr3t-value")
	assert.NotContains(t, logs.String(), "s3cr3t-value")
	assert.Contains(t, logs.String(), secrets.Token("API_TOKEN"))
}

func TestLive_TimeoutLeavesCallerClient(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	client := &http.Client{Transport: &http.Transport{}}
	live := newLive(t, backend.WithHTTPClient(client), backend.WithTimeout(50*time.Millisecond))

	_, err := live.Fetch(context.Background(), revealed(t, secrets.Plain(request.Details{URL: srv.URL}), secrets.Static{}))
	require.ErrorIs(t, err, backend.ErrTimeout)
	assert.Zero(t, client.Timeout)
}

func TestLive_InvalidUTF8(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("caf\xe9"))
	})
	raw := store.NewMemory()
	live := newLive(t, backend.WithRawStore(raw))

	_, err := live.Fetch(context.Background(), revealed(t, secrets.Plain(request.Details{URL: srv.URL}), secrets.Static{}))
	require.ErrorIs(t, err, backend.ErrInvalidUTF8)
	assert.Zero(t, raw.Len())
}

func TestLive_CanceledContextIsKept(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	live := newLive(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := live.Fetch(ctx, revealed(t, secrets.Plain(request.Details{URL: srv.URL}), secrets.Static{}))
	require.ErrorIs(t, err, backend.ErrTransport)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLive_Content(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"robots.txt":  {Data: []byte("User-agent: *\n")},
		"posts/a.md":  {Data: []byte("---\ntitle: A\n---\n# A\n")},
		"posts/b.md":  {Data: []byte("# B\n")},
		"posts/c.txt": {Data: []byte("c")},
	}
	raw := store.NewMemory()
	live := newLive(t, backend.WithContentLoader(content.NewLoader(fsys)), backend.WithRawStore(raw))

	robots := call(t, content.URL("robots.txt"))
	body, err := live.Fetch(context.Background(), robots)
	require.NoError(t, err)
	assert.Equal(t, "User-agent: *\n", body)

	persisted, err := raw.Get(context.Background(), robots.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, body, persisted)

	ac := request.AppContext{Type: request.CLI}
	files, _, err := request.Resolve(context.Background(), ac, live, content.List("posts"))
	require.NoError(t, err)
	assert.Equal(t, []string{"posts/a.md", "posts/b.md", "posts/c.txt"}, files)

	_, err = live.Fetch(context.Background(), call(t, content.URL("posts/zzz.md")))
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestLive_RateLimit(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.TrimPrefix(r.URL.Path, "/"))
	})
	live := newLive(t, backend.WithRateLimit(1, 100*time.Millisecond))

	start := time.Now()
	for _, p := range []string{"a", "b", "c"} {
		body, err := live.Fetch(context.Background(), call(t, srv.URL+"/"+p))
		require.NoError(t, err)
		assert.Equal(t, p, body)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestLive_SharedResolve(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	hits := map[string]int{}
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		_, _ = io.WriteString(w, payload)
	})

	shared := backend.NewShared(newLive(t))
	ac := request.AppContext{Type: request.CLI}
	name := func() request.Request[string] {
		return request.Get(secrets.Plain(srv.URL+"/repo"), decodeField("name"))
	}

	both := request.Map2(name(), name(), func(a, b string) string { return a + "/" + b })
	v, delta, err := request.Resolve(context.Background(), ac, shared, both)
	require.NoError(t, err)
	assert.Equal(t, "kiln/kiln", v)

	again, _, err := request.Resolve(context.Background(), ac, shared, name())
	require.NoError(t, err)
	assert.Equal(t, "kiln", again)

	mu.Lock()
	assert.Equal(t, 1, hits["/repo"])
	mu.Unlock()

	out, err := delta.Bodies()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		request.Fingerprint(request.Details{URL: srv.URL + "/repo"}): `{"name":"kiln"}`,
	}, out)
}
