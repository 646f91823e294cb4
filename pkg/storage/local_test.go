package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kiln/pkg/storage"
)

func TestLocal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		s, err := storage.NewLocal(root)
		require.NoError(t, err)

		info, err := storage.PutBytes(ctx, s, "blog/hello/index.html", []byte("<h1>hi</h1>"))
		require.NoError(t, err)
		require.Equal(t, "blog/hello/index.html", info.Key)
		require.Equal(t, "text/html; charset=utf-8", info.ContentType)
		require.EqualValues(t, 11, info.Size)

		data, err := storage.ReadAll(ctx, s, "blog/hello/index.html")
		require.NoError(t, err)
		require.Equal(t, "<h1>hi</h1>", string(data))

		onDisk, err := os.ReadFile(filepath.Join(root, "blog", "hello", "index.html"))
		require.NoError(t, err)
		require.Equal(t, data, onDisk)
	})

	t.Run("overwrite leaves no temp files", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		s, err := storage.NewLocal(root)
		require.NoError(t, err)

		_, err = storage.PutBytes(ctx, s, "snapshot.json", []byte("{}"))
		require.NoError(t, err)
		_, err = storage.PutBytes(ctx, s, "snapshot.json", []byte(`{"a":"b"}`))
		require.NoError(t, err)

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		data, err := storage.ReadAll(ctx, s, "snapshot.json")
		require.NoError(t, err)
		require.Equal(t, `{"a":"b"}`, string(data))
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		s, err := storage.NewLocal(t.TempDir())
		require.NoError(t, err)

		_, err = s.Get(ctx, "nope.json")
		require.ErrorIs(t, err, storage.ErrNotFound)
		require.NoError(t, s.Delete(ctx, "nope.json"))
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		s, err := storage.NewLocal(t.TempDir())
		require.NoError(t, err)

		_, err = storage.PutBytes(ctx, s, "a.txt", []byte("a"))
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, "a.txt"))

		_, err = s.Get(ctx, "a.txt")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("rejects keys escaping the root", func(t *testing.T) {
		t.Parallel()
		s, err := storage.NewLocal(t.TempDir())
		require.NoError(t, err)

		for _, key := range []string{"", "/etc/passwd", "../x", "a/../../x", `a\b`, "."} {
			_, err := storage.PutBytes(ctx, s, key, []byte("x"))
			require.ErrorIs(t, err, storage.ErrInvalidKey, key)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		t.Parallel()
		s, err := storage.NewLocal(t.TempDir())
		require.NoError(t, err)

		_, err = s.Put(ctx, "a.txt", strings.NewReader("abc"), 10)
		require.ErrorIs(t, err, storage.ErrUploadFailed)
	})
}

func TestCleanKey(t *testing.T) {
	t.Parallel()

	key, err := storage.CleanKey("blog//hello/./index.html")
	require.NoError(t, err)
	require.Equal(t, "blog/hello/index.html", key)
}

func TestPublish(t *testing.T) {
	t.Parallel()

	src := fstest.MapFS{
		"index.html":            {Data: []byte("home")},
		"about/index.html":      {Data: []byte("about")},
		"about/content.json":    {Data: []byte("{}")},
		"assets/site.css":       {Data: []byte("body{}")},
		"assets/empty/.gitkeep": {Data: nil},
	}

	dst, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	n, err := storage.Publish(context.Background(), src, dst, storage.WithCacheControl("max-age=60"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	data, err := storage.ReadAll(context.Background(), dst, "about/index.html")
	require.NoError(t, err)
	require.Equal(t, "about", string(data))
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"index.html":         "text/html; charset=utf-8",
		"blog/content.json":  "application/json",
		"assets/site.CSS":    "text/css; charset=utf-8",
		"feed.xml":           "application/xml",
		"robots.txt":         "text/plain; charset=utf-8",
		"LICENSE":            storage.MIMEOctetStream,
		"archive.unknownext": storage.MIMEOctetStream,
	}
	for key, want := range tests {
		require.Equal(t, want, storage.ContentTypeFor(key), key)
	}
}
