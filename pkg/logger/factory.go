package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type options struct {
	output     io.Writer
	format     Format
	level      slog.Level
	extractors []ContextExtractor
	sentry     *SentryConfig
}

// Option configures New.
type Option func(*options)

// WithOutput sets the destination. Default: stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithFormat sets the output encoding. Default: JSON.
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithLevel sets the minimum level. Default: info.
func WithLevel(l slog.Level) Option {
	return func(o *options) {
		o.level = l
	}
}

// WithExtractors adds context extractors to the defaults (build id, route).
func WithExtractors(ex ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, ex...)
	}
}

// WithSentry also sends warnings and errors to Sentry.
// An empty DSN leaves Sentry disabled.
func WithSentry(cfg SentryConfig) Option {
	return func(o *options) {
		o.sentry = &cfg
	}
}

// New creates a logger.
func New(opts ...Option) *slog.Logger {
	o := &options{
		output:     os.Stdout,
		format:     FormatJSON,
		level:      slog.LevelInfo,
		extractors: []ContextExtractor{BuildID(), Route()},
	}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: o.level}
	var handler slog.Handler
	if o.format == FormatText {
		handler = slog.NewTextHandler(o.output, hopts)
	} else {
		handler = slog.NewJSONHandler(o.output, hopts)
	}

	if o.sentry != nil {
		if sh, err := newSentryHandler(*o.sentry); err != nil {
			// Keep logging locally if Sentry cannot start.
			slog.New(handler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else if sh != nil {
			handler = newMultiHandler(handler, sh)
		}
	}

	return slog.New(NewLogHandlerDecorator(handler, o.extractors...))
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logger: invalid level %q", s)
	}
	return l, nil
}

// ParseFormat parses "json" or "text".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return FormatJSON, fmt.Errorf("logger: invalid format %q", s)
	}
}
