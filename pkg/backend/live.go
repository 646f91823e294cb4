package backend

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"

	"github.com/dmitrymomot/kiln/pkg/content"
	"github.com/dmitrymomot/kiln/pkg/logger"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/store"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 10 << 20 // 10MB
	defaultUserAgent    = "kiln"
)

// Live performs calls against the network and the content loader.
// It never retries; a failed call surfaces as an error for that fingerprint.
type Live struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	limiter      *hostLimiter
	loader       *content.Loader
	raw          store.Store
	logger       *slog.Logger
	timeout      time.Duration
}

// LiveOption configures a Live backend.
type LiveOption func(*Live)

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(c *http.Client) LiveOption {
	return func(l *Live) {
		if c != nil {
			l.client = c
		}
	}
}

// WithTimeout sets the overall timeout of a single HTTP call.
// A client passed to WithHTTPClient is copied, never modified.
// Default: 30 seconds.
func WithTimeout(d time.Duration) LiveOption {
	return func(l *Live) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithMaxBodyBytes caps the decoded size of a response body.
// Default: 10MB.
func WithMaxBodyBytes(n int64) LiveOption {
	return func(l *Live) {
		if n > 0 {
			l.maxBodyBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent sent unless a call sets its own.
func WithUserAgent(ua string) LiveOption {
	return func(l *Live) {
		l.userAgent = ua
	}
}

// WithRateLimit allows at most requests calls per window to each host.
// Disabled by default.
func WithRateLimit(requests int, window time.Duration) LiveOption {
	return func(l *Live) {
		l.limiter = newHostLimiter(requests, window)
	}
}

// WithContentLoader serves content:// calls from loader.
func WithContentLoader(loader *content.Loader) LiveOption {
	return func(l *Live) {
		l.loader = loader
	}
}

// WithRawStore persists every raw response body to s.
func WithRawStore(s store.Store) LiveOption {
	return func(l *Live) {
		l.raw = s
	}
}

// WithLogger sets the logger. Calls are only ever logged masked.
func WithLogger(log *slog.Logger) LiveOption {
	return func(l *Live) {
		if log != nil {
			l.logger = log
		}
	}
}

// NewLive creates a Live backend.
func NewLive(opts ...LiveOption) *Live {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	l := &Live{
		client:       &http.Client{Timeout: defaultTimeout, Transport: transport},
		userAgent:    defaultUserAgent,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger.NewNope(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.timeout > 0 && l.client.Timeout != l.timeout {
		c := *l.client
		c.Timeout = l.timeout
		l.client = &c
	}
	return l
}

// Close releases idle connections.
func (l *Live) Close() {
	l.client.CloseIdleConnections()
}

// Fetch performs the call and persists the raw body. Bodies that are not
// valid UTF-8 fail with ErrInvalidUTF8, since the snapshot cannot hold them
// losslessly.
func (l *Live) Fetch(ctx context.Context, call request.Call) (string, error) {
	start := time.Now()

	var (
		body string
		err  error
	)
	if name, ok := content.Path(call.Details.URL); ok {
		body, err = l.load(name)
	} else {
		body, err = l.do(ctx, call)
	}
	if err == nil && !utf8.ValidString(body) {
		err = ErrInvalidUTF8
	}
	if err != nil {
		l.logger.WarnContext(ctx, "fetch failed",
			slog.String("request", call.Masked.String()),
			slog.Any("error", err),
		)
		return "", err
	}

	if l.raw != nil {
		if err := l.raw.Put(ctx, call.Fingerprint, body); err != nil {
			return "", fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}

	l.logger.DebugContext(ctx, "fetched",
		slog.String("request", call.Masked.String()),
		slog.String("fingerprint", call.Fingerprint),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)),
	)
	return body, nil
}

func (l *Live) load(name string) (string, error) {
	if l.loader == nil {
		return "", ErrNoContentLoader
	}
	return l.loader.Load(name)
}

func (l *Live) do(ctx context.Context, call request.Call) (string, error) {
	d := call.Details

	u, err := url.Parse(d.URL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url", ErrTransport)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if err := l.limiter.Wait(ctx, u.Host); err != nil {
		return "", l.transportError(ctx, call, err)
	}

	var reqBody io.Reader
	if !d.Body.IsEmpty() {
		reqBody = strings.NewReader(d.Body.Content())
	}
	req, err := http.NewRequestWithContext(ctx, d.Verb(), d.URL, reqBody)
	if err != nil {
		return "", l.transportError(ctx, call, err)
	}

	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	if mime := d.Body.MIME(); mime != "" {
		req.Header.Set("Content-Type", mime)
	}
	for _, h := range d.Headers {
		if strings.EqualFold(h.Name, "User-Agent") {
			req.Header.Set(h.Name, h.Value)
			continue
		}
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", l.transportError(ctx, call, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	data, err := l.readBody(resp)
	if err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			return "", err
		}
		return "", l.transportError(ctx, call, err)
	}
	return string(data), nil
}

// transportError normalizes err without leaking the revealed URL.
// *url.Error is unwrapped because its message embeds the URL.
// The caller's context error is kept in the chain.
func (l *Live) transportError(ctx context.Context, call request.Call, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}

	sentinel := ErrTransport
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		sentinel = ErrTimeout
	}
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w: %w", sentinel, cerr)
	}
	return fmt.Errorf("%w: %s", sentinel, call.Redact(err.Error()))
}

func (l *Live) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, l.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > l.maxBodyBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, l.maxBodyBytes)
	}
	return body, nil
}

var _ request.Source = (*Live)(nil)
