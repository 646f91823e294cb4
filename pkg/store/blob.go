package store

import (
	"context"
	"errors"
	"path"

	"github.com/dmitrymomot/kiln/pkg/storage"
)

// Blob stores each body as an object in a storage.Storage.
// Objects are sharded by the first two characters of the fingerprint:
// "{prefix}/ab/abcdef....body".
type Blob struct {
	s      storage.Storage
	prefix string
}

// NewBlob returns a Blob store writing under prefix. An empty prefix writes at
// the storage root.
func NewBlob(s storage.Storage, prefix string) *Blob {
	return &Blob{s: s, prefix: prefix}
}

func (b *Blob) Get(ctx context.Context, fp string) (string, error) {
	data, err := storage.ReadAll(ctx, b.s, b.key(fp))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

func (b *Blob) Put(ctx context.Context, fp, body string) error {
	_, err := storage.PutBytes(ctx, b.s, b.key(fp), []byte(body),
		storage.WithContentType(storage.MIMEOctetStream))
	return err
}

func (b *Blob) key(fp string) string {
	shard := fp
	if len(fp) > 2 {
		shard = fp[:2]
	}
	return path.Join(b.prefix, shard, fp+".body")
}

var _ Store = (*Blob)(nil)
