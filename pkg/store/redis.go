package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by Redis string keys.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOption configures the Redis store.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix. Keys are stored as "{prefix}:{fingerprint}".
// Default: "kiln:responses".
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithTTL sets the expiration of stored bodies. Zero keeps them forever.
// Default: 0.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = max(d, 0)
	}
}

// NewRedis creates a Redis store. The client lifecycle stays with the caller.
//
// Example:
//
//	client, err := store.OpenRedis(ctx, os.Getenv("REDIS_URL"))
//	raw := store.NewRedis(client, store.WithTTL(24*time.Hour))
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: "kiln:responses"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Get(ctx context.Context, fp string) (string, error) {
	body, err := r.client.Get(ctx, r.key(fp)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return body, nil
}

func (r *Redis) Put(ctx context.Context, fp, body string) error {
	return r.client.Set(ctx, r.key(fp), body, r.ttl).Err()
}

// Healthcheck pings the server.
func (r *Redis) Healthcheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) key(fp string) string {
	if r.prefix == "" {
		return fp
	}
	return r.prefix + ":" + fp
}

var _ Store = (*Redis)(nil)

// OpenRedis connects to Redis, retrying with linear backoff.
// Supports both redis:// and rediss:// (TLS) URL schemes.
func OpenRedis(ctx context.Context, url string, attempts int, interval time.Duration) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.DialTimeout = 5 * time.Second

	attempts = max(attempts, 1)
	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		if err := wait(ctx, time.Duration(i+1)*interval); err != nil {
			return nil, errors.Join(ErrConnectionFailed, err)
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
