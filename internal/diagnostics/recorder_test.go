package diagnostics

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
)

func TestRecorderRecordAndHistory(t *testing.T) {
	r, err := NewRecorder("", nil)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.RecordCycle(ctx, gc.Stats{Collections: 1, BytesCapacity: 1024, BytesAllocated: 512}))
	require.NoError(t, r.RecordCycle(ctx, gc.Stats{Collections: 2, BytesCapacity: 2048, BytesAllocated: 900, LastGrew: true}))

	rows, err := r.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Newest first.
	assert.Equal(t, 2, rows[0].Collections)
	assert.True(t, rows[0].LastGrew)
	assert.Equal(t, 1, rows[1].Collections)
}

func TestRecorderHistoryRespectsLimit(t *testing.T) {
	r, err := NewRecorder("", nil)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordCycle(ctx, gc.Stats{Collections: i}))
	}

	rows, err := r.History(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	require.NoError(t, r.RecordCycle(context.Background(), gc.Stats{}))
	rows, err := r.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, rows)
	require.NoError(t, r.Close())
}

// TestRecorderRecordCycleWrapsDriverError drives the recorder's insert
// path against a sqlmock-backed connection to confirm a raw driver
// failure surfaces as a diagnostics-coded AppError rather than the bare
// driver error, without depending on sqlite's AutoMigrate introspection
// queries (mocking those exactly would couple the test to sqlite's
// internal schema-inspection SQL instead of to RecordCycle's behavior).
func TestRecorderRecordCycleWrapsDriverError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gdb, err := gorm.Open(gormsqlite.Dialector{Conn: mockDB}, &gorm.Config{})
	require.NoError(t, err)
	r := &Recorder{db: gdb}

	mock.ExpectExec("INSERT INTO .gc_cycle.").WillReturnError(errors.New("disk I/O error"))

	err = r.RecordCycle(context.Background(), gc.Stats{Collections: 1})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeDiagnostics, appErr.Code)
}
