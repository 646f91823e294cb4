package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	var info, errs bytes.Buffer
	h := newMultiHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("page", "blog")

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	log.Info("one")
	log.Error("two")

	require.Contains(t, info.String(), "msg=one")
	assert.Contains(t, info.String(), "msg=two")
	assert.NotContains(t, errs.String(), "msg=one")
	assert.Contains(t, errs.String(), "page=blog")
}
