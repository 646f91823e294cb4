package internal_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kiln/internal"
	"github.com/dmitrymomot/kiln/pkg/site"
)

func run(t *testing.T, apiURL string, opts []internal.Option, args ...string) (string, error) {
	t.Helper()
	cmd := internal.Command(pages(apiURL), opts...)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommand_Build(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "public")
	snapshot := filepath.Join(dir, "snap.json")
	opts := []internal.Option{internal.WithEnv(env), internal.WithContent(contentFS())}
	srv := newAPI(t)

	stdout, err := run(t, srv.URL, opts, "build", "--out", out, "--snapshot", snapshot, "--workers", "1", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "built 3 route(s), skipped 0")
	assert.Contains(t, stdout, "snapshot: "+snapshot)
	assert.FileExists(t, filepath.Join(out, site.ManifestFile))
	assert.FileExists(t, snapshot)
	hits := srv.hits.Load()

	// Replay fingerprints depend on the URL, so the build keeps the same server.
	stdout, err = run(t, srv.URL, []internal.Option{internal.WithEnv(env)},
		"build", "--mode", "replay", "--out", out, "--snapshot", snapshot, "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "built 3 route(s)")
	assert.NotContains(t, stdout, "snapshot:")
	assert.Equal(t, hits, srv.hits.Load())
}

func TestCommand_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "site")
	file := filepath.Join(dir, "kiln.yaml")
	config := "output_dir: " + out + "\nsnapshot: " + filepath.Join(dir, "kiln.snapshot.json") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(file, []byte(config), 0o644))

	_, err := run(t, newAPI(t).URL, []internal.Option{internal.WithEnv(env), internal.WithContent(contentFS())}, "build", "--config", file)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, site.IndexFile))
}

func TestCommand_Check(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stdout, err := run(t, newAPI(t).URL, []internal.Option{internal.WithEnv(env)},
		"check", "--mode", "replay", "--out", filepath.Join(dir, "dist"), "--snapshot", filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, internal.ErrPreflight)
	assert.Contains(t, stdout, "output     healthy")
	assert.Contains(t, stdout, "snapshot   unhealthy")
}

func TestCommand_InvalidFlags(t *testing.T) {
	t.Parallel()

	srv := newAPI(t)

	_, err := run(t, srv.URL, nil, "build", "--mode", "offline", "--out", t.TempDir())
	require.ErrorIs(t, err, internal.ErrInvalidConfig)

	_, err = run(t, srv.URL, nil, "build", "extra")
	require.Error(t, err)
}
