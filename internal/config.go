package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/kiln/pkg/logger"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/storage"
)

// Build modes.
const (
	ModeLive   = "live"
	ModeReplay = "replay"
)

// Raw store kinds.
const (
	RawStoreNone  = ""
	RawStoreDir   = "dir"
	RawStoreRedis = "redis"
)

// Config is the complete build configuration.
//
// Values are layered: Default, then the YAML file, then environment variables,
// then command line flags.
type Config struct {
	// Mode is ModeLive or ModeReplay.
	Mode string `yaml:"mode" env:"KILN_MODE"`
	// App is "cli" (minimize responses) or "browser" (keep bodies verbatim).
	App string `yaml:"app" env:"KILN_APP"`
	// OutputDir receives the built site.
	OutputDir string `yaml:"output_dir" env:"KILN_OUTPUT_DIR"`
	// Snapshot is the snapshot file written by live builds and read by replay builds.
	Snapshot string `yaml:"snapshot" env:"KILN_SNAPSHOT"`
	// ContentDir is served under the content:// scheme. Empty disables content files.
	ContentDir string `yaml:"content_dir" env:"KILN_CONTENT_DIR"`
	Workers    int    `yaml:"workers" env:"KILN_WORKERS"`

	HTTP     HTTPConfig          `yaml:"http"`
	RawStore RawStoreConfig      `yaml:"raw_store"`
	Log      LogConfig           `yaml:"log"`
	Sentry   logger.SentryConfig `yaml:"sentry"`
	Publish  PublishConfig       `yaml:"publish"`
	Preview  PreviewConfig       `yaml:"preview"`
}

// HTTPConfig configures the live backend.
type HTTPConfig struct {
	Timeout      Duration `yaml:"timeout" env:"KILN_HTTP_TIMEOUT"`
	MaxBodyBytes int64    `yaml:"max_body_bytes" env:"KILN_HTTP_MAX_BODY_BYTES"`
	UserAgent    string   `yaml:"user_agent" env:"KILN_HTTP_USER_AGENT"`
	// RateLimit is the number of calls per RateWindow to one host. Zero disables it.
	RateLimit  int      `yaml:"rate_limit" env:"KILN_HTTP_RATE_LIMIT"`
	RateWindow Duration `yaml:"rate_window" env:"KILN_HTTP_RATE_WINDOW"`
}

// RawStoreConfig configures where live builds keep unminimized responses.
type RawStoreConfig struct {
	Kind   string   `yaml:"kind" env:"KILN_RAW_STORE"`
	Dir    string   `yaml:"dir" env:"KILN_RAW_STORE_DIR"`
	URL    string   `yaml:"url" env:"KILN_RAW_STORE_URL"`
	Prefix string   `yaml:"prefix" env:"KILN_RAW_STORE_PREFIX"`
	TTL    Duration `yaml:"ttl" env:"KILN_RAW_STORE_TTL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"KILN_LOG_LEVEL"`
	Format string `yaml:"format" env:"KILN_LOG_FORMAT"`
}

// PublishConfig uploads the output directory to S3 after a successful build.
type PublishConfig struct {
	Enabled        bool   `yaml:"enabled" env:"KILN_PUBLISH"`
	CacheControl   string `yaml:"cache_control" env:"KILN_PUBLISH_CACHE_CONTROL"`
	storage.Config `yaml:",inline"`
}

type PreviewConfig struct {
	Addr            string   `yaml:"addr" env:"KILN_PREVIEW_ADDR"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" env:"KILN_PREVIEW_SHUTDOWN_TIMEOUT"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Mode:      ModeLive,
		App:       request.CLI.String(),
		OutputDir: "dist",
		Snapshot:  "kiln.snapshot.json",
		Workers:   runtime.GOMAXPROCS(0),
		HTTP: HTTPConfig{
			Timeout:      DurationOf(30 * time.Second),
			MaxBodyBytes: 10 << 20,
			UserAgent:    "kiln",
			RateWindow:   DurationOf(time.Second),
		},
		RawStore: RawStoreConfig{Prefix: "kiln:responses"},
		Log:      LogConfig{Level: "info", Format: string(logger.FormatText)},
		Sentry:   logger.SentryConfig{Environment: "production"},
		Preview: PreviewConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: DurationOf(10 * time.Second),
		},
	}
}

// LoadConfig reads the YAML file at path, when path is not empty, and overlays
// the environment.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		fh, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer fh.Close()
		if err := decodeYAML(fh, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

// LoadConfigFrom decodes YAML from r over the defaults and overlays environ.
// A nil environ reads the process environment.
func LoadConfigFrom(r io.Reader, environ map[string]string) (Config, error) {
	cfg := Default()
	if r != nil {
		if err := decodeYAML(r, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode config: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.App = strings.ToLower(strings.TrimSpace(c.App))
	c.RawStore.Kind = strings.ToLower(strings.TrimSpace(c.RawStore.Kind))
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeLive, ModeReplay:
	default:
		return fmt.Errorf("%w: mode must be %q or %q (got %q)", ErrInvalidConfig, ModeLive, ModeReplay, c.Mode)
	}
	if _, err := c.AppType(); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidConfig)
	}
	if c.Snapshot == "" {
		return fmt.Errorf("%w: snapshot is required", ErrInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be > 0 (got %d)", ErrInvalidConfig, c.Workers)
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("%w: http.rate_limit must be >= 0", ErrInvalidConfig)
	}
	switch c.RawStore.Kind {
	case RawStoreNone:
	case RawStoreDir:
		if c.RawStore.Dir == "" {
			return fmt.Errorf("%w: raw_store.dir is required for kind %q", ErrInvalidConfig, RawStoreDir)
		}
	case RawStoreRedis:
		if c.RawStore.URL == "" {
			return fmt.Errorf("%w: raw_store.url is required for kind %q", ErrInvalidConfig, RawStoreRedis)
		}
	default:
		return fmt.Errorf("%w: unknown raw_store.kind %q", ErrInvalidConfig, c.RawStore.Kind)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := logger.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Publish.Enabled && c.Publish.Bucket == "" {
		return fmt.Errorf("%w: publish.bucket is required when publishing", ErrInvalidConfig)
	}
	return nil
}

// AppType parses App.
func (c Config) AppType() (request.AppType, error) {
	switch c.App {
	case request.CLI.String():
		return request.CLI, nil
	case request.Browser.String():
		return request.Browser, nil
	}
	return request.CLI, fmt.Errorf("%w: app must be %q or %q (got %q)", ErrInvalidConfig, request.CLI, request.Browser, c.App)
}

// Logger builds the logger described by Log and Sentry.
func (c Config) Logger(out io.Writer) *slog.Logger {
	level, _ := logger.ParseLevel(c.Log.Level)
	format, _ := logger.ParseFormat(c.Log.Format)
	return logger.New(
		logger.WithOutput(out),
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithSentry(c.Sentry),
	)
}
