package diagnostics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjsgo/rjsgo/internal/diagnostics/storage"
	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

func TestExporterExportAllUploadsEverySnapshot(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exporter := NewExporter(store, 4)

	snaps := []Snapshot{
		NewSnapshot("session-a", gc.Stats{Collections: 1}, time.Unix(1, 0)),
		NewSnapshot("session-b", gc.Stats{Collections: 2}, time.Unix(2, 0)),
		NewSnapshot("session-c", gc.Stats{Collections: 3}, time.Unix(3, 0)),
	}

	require.NoError(t, exporter.ExportAll(context.Background(), snaps))

	for _, s := range snaps {
		exists, err := store.Exists(context.Background(), s.key())
		require.NoError(t, err)
		assert.True(t, exists, "snapshot %s should have been uploaded", s.key())
	}
}

func TestExporterExportAllEmpty(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exporter := NewExporter(store, 2)

	require.NoError(t, exporter.ExportAll(context.Background(), nil))
}
