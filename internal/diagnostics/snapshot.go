package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rjsgo/rjsgo/internal/diagnostics/storage"
	"github.com/rjsgo/rjsgo/internal/engine/gc"
	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
	"github.com/rjsgo/rjsgo/pkg/parallel"
)

// Snapshot is an immutable, JSON-serializable summary of one heap's
// stats at the moment it was captured. It never references the live
// heap, a Root, or a Local: by the time the exporter's worker pool
// picks a Snapshot up, the collection it describes may already be gone.
type Snapshot struct {
	Label      string    `json:"label"`
	CapturedAt time.Time `json:"captured_at"`
	Stats      gc.Stats  `json:"stats"`
}

// NewSnapshot captures stats under label (typically a process or
// session identifier distinguishing concurrently-exported snapshots).
func NewSnapshot(label string, stats gc.Stats, capturedAt time.Time) Snapshot {
	return Snapshot{Label: label, CapturedAt: capturedAt, Stats: stats}
}

func (s Snapshot) key() string {
	return fmt.Sprintf("%s-%d.json", s.Label, s.CapturedAt.UnixNano())
}

// Exporter fans snapshot uploads out across a worker pool; this is the
// one place in the repository besides the OTel SDK's own batch exporter
// that spawns goroutines (see SPEC_FULL §5).
type Exporter struct {
	store   storage.Storage
	workers int
}

// NewExporter builds an Exporter uploading to store using workers
// concurrent goroutines (clamped to at least 1 by the pool itself).
func NewExporter(store storage.Storage, workers int) *Exporter {
	return &Exporter{store: store, workers: workers}
}

// ExportAll uploads every snapshot, returning the first error keyed by
// the snapshot's label (callers needing per-snapshot detail should
// inspect the underlying *apperrors.AppError chain via errors.As).
func (e *Exporter) ExportAll(ctx context.Context, snapshots []Snapshot) error {
	pool := parallel.NewWorkerPool[Snapshot, string](e.workers)

	tasks := make([]parallel.Task[Snapshot, string], len(snapshots))
	for i, snap := range snapshots {
		tasks[i] = parallel.Task[Snapshot, string]{
			Input: snap,
			Fn:    e.uploadOne,
		}
	}

	results := pool.Run(ctx, tasks)
	for _, r := range results {
		if r.Err != nil {
			return apperrors.Wrap(r.Err, apperrors.CodeDiagnostics,
				fmt.Sprintf("exporting snapshot %q", r.Input.Label))
		}
	}
	return nil
}

func (e *Exporter) uploadOne(ctx context.Context, snap Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}
	key := snap.key()
	if err := e.store.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return e.store.GetURL(key), nil
}
