package rt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

func newTestHeap(t *testing.T) *gc.Heap {
	t.Helper()
	opts := gc.DefaultOpts()
	opts.InitialHeapBytes = 4096
	opts.DebugValidate = true
	h, err := gc.New(NewWalkerImpl(), opts, nil)
	require.NoError(t, err)
	return h
}
