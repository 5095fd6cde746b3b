package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
)

// LocalStorage stores snapshots under a base directory on local disk.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates base (and any missing parents) if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./snapshots"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, wrapIO(err, "creating snapshot directory "+basePath)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (s *LocalStorage) path(key string) string { return filepath.Join(s.basePath, key) }

func (s *LocalStorage) Upload(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := s.path(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return wrapIO(err, "creating snapshot parent directory")
	}
	f, err := os.Create(full)
	if err != nil {
		return wrapIO(err, "creating snapshot file "+full)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return wrapIO(err, "writing snapshot file "+full)
	}
	return nil
}

func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.New(apperrors.CodeIO, fmt.Sprintf("snapshot not found: %s", key))
		}
		return nil, wrapIO(err, "opening snapshot file")
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return wrapIO(err, "deleting snapshot file")
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, wrapIO(err, "checking snapshot file")
}

func (s *LocalStorage) GetURL(key string) string { return s.path(key) }
