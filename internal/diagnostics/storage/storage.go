// Package storage provides an object-storage abstraction for heap
// snapshots exported by internal/diagnostics. Like the rest of
// internal/diagnostics, it is host tooling: nothing in internal/engine
// imports it, and snapshot export is opt-in and disabled by default.
package storage

import (
	"context"
	"io"

	"github.com/rjsgo/rjsgo/pkg/config"
	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
)

// Storage stores and retrieves heap-snapshot blobs by key.
type Storage interface {
	Upload(ctx context.Context, key string, r io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// GetURL returns a locator for key: a filesystem path for local
	// storage, a bucket URL for COS.
	GetURL(key string) string
}

// New builds the configured backend: COS when cfg.COSEnabled, local disk
// (rooted at cfg.SnapshotDir) otherwise.
func New(cfg config.DiagnosticsConfig) (Storage, error) {
	if cfg.COSEnabled {
		return NewCOSStorage(COSConfig{
			BucketURL: cfg.COSBucketURL,
			SecretID:  cfg.COSSecretID,
			SecretKey: cfg.COSSecretKey,
		})
	}
	dir := cfg.SnapshotDir
	if dir == "" {
		dir = "./snapshots"
	}
	return NewLocalStorage(dir)
}

func wrapIO(err error, message string) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(err, apperrors.CodeIO, message)
}
