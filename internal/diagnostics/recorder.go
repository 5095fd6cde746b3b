// Package diagnostics is opt-in host tooling bolted onto the embedding
// API: a history of GC collection cycles (gorm + sqlite) and a
// heap-snapshot exporter. Nothing here is consulted by the runtime
// itself, and both are disabled by default.
package diagnostics

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
	"github.com/rjsgo/rjsgo/pkg/utils"
)

// GCCycle is one recorded collection cycle, persisted for offline
// analysis of GC behavior.
type GCCycle struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RecordedAt       time.Time `gorm:"column:recorded_at;autoCreateTime"`
	Collections      int       `gorm:"column:collections"`
	BytesCapacity    int       `gorm:"column:bytes_capacity"`
	BytesAllocated   int       `gorm:"column:bytes_allocated"`
	LastBytesCopied  int       `gorm:"column:last_bytes_copied"`
	LastSurvivorFrac float64   `gorm:"column:last_survivor_frac"`
	LastGrew         bool      `gorm:"column:last_grew"`
}

// TableName returns the table name for GCCycle.
func (GCCycle) TableName() string { return "gc_cycle" }

// Recorder persists gc.Stats snapshots to a sqlite-backed history. A nil
// *Recorder is valid and RecordCycle on it is a no-op, so callers can
// hold an always-present field and skip a separate enabled check.
type Recorder struct {
	db     *gorm.DB
	logger utils.Logger
}

// NewRecorder opens (and migrates) the sqlite database at dsn. Pass an
// empty dsn to get a private in-memory database, used by tests and by
// embedders who only want the current-process history.
func NewRecorder(dsn string, log utils.Logger) (*Recorder, error) {
	if log == nil {
		log = utils.NullLogger{}
	}
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDiagnostics, "opening diagnostics database "+dsn)
	}
	if err := db.AutoMigrate(&GCCycle{}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDiagnostics, "migrating diagnostics schema")
	}
	return &Recorder{db: db, logger: log}, nil
}

// RecordCycle inserts a row for the given stats snapshot. It is the
// only way gc.Stats data reaches persistent storage; the engine never
// calls this itself (the CLI/host wires it in after a Run/Eval call, or
// on a periodic tick).
func (r *Recorder) RecordCycle(ctx context.Context, stats gc.Stats) error {
	if r == nil {
		return nil
	}
	row := GCCycle{
		Collections:      stats.Collections,
		BytesCapacity:    stats.BytesCapacity,
		BytesAllocated:   stats.BytesAllocated,
		LastBytesCopied:  stats.LastBytesCopied,
		LastSurvivorFrac: stats.LastSurvivorFrac,
		LastGrew:         stats.LastGrew,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDiagnostics, "recording gc cycle")
	}
	r.logger.Debugf("diagnostics: recorded gc cycle %d (collections=%d bytes_capacity=%d)",
		row.ID, row.Collections, row.BytesCapacity)
	return nil
}

// History returns the most recent cycles, newest first, up to limit.
func (r *Recorder) History(ctx context.Context, limit int) ([]GCCycle, error) {
	if r == nil {
		return nil, nil
	}
	var rows []GCCycle
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDiagnostics, "querying gc cycle history")
	}
	return rows, nil
}

// Close releases the underlying database connection.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDiagnostics, "getting underlying sql.DB")
	}
	return sqlDB.Close()
}
