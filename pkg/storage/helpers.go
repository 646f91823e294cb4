package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
)

// PutBytes writes data under key.
func PutBytes(ctx context.Context, s Storage, key string, data []byte, opts ...Option) (*FileInfo, error) {
	return s.Put(ctx, key, bytes.NewReader(data), int64(len(data)), opts...)
}

// ReadAll reads the whole object stored under key.
func ReadAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Publish copies every regular file of src to dst, keeping relative paths as keys.
// Files are copied in lexical order; the first failure stops the walk.
func Publish(ctx context.Context, src fs.FS, dst Storage, opts ...Option) (int, error) {
	copied := 0
	err := fs.WalkDir(src, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := fs.ReadFile(src, name)
		if err != nil {
			return err
		}
		if _, err := PutBytes(ctx, dst, name, data, opts...); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
		copied++
		return nil
	})
	return copied, err
}
