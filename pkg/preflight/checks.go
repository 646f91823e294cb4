package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrymomot/kiln/pkg/storage"
)

// Writable checks that dir exists or can be created, and accepts files.
func Writable(dir string) Check {
	return func(context.Context) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		f, err := os.CreateTemp(dir, ".preflight-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		return os.Remove(name)
	}
}

// Dir checks that dir is an existing directory.
func Dir(dir string) Check {
	return func(context.Context) error {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
}

// Exists checks that key can be read from s.
func Exists(s storage.Storage, key string) Check {
	return func(ctx context.Context) error {
		rc, err := s.Get(ctx, key)
		if err != nil {
			return err
		}
		return rc.Close()
	}
}

// Err reports a precomputed error, such as a configuration problem.
func Err(err error) Check {
	return func(context.Context) error {
		return err
	}
}
