package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
	"github.com/rjsgo/rjsgo/internal/engine/rt"
)

func newTestEnv(t *testing.T) *rt.JsEnv {
	t.Helper()
	heap, err := gc.New(rt.NewWalkerImpl(), gc.DefaultOpts(), nil)
	require.NoError(t, err)
	env, err := rt.NewEnv(heap, rt.NewWalkerImpl(), nil, nil)
	require.NoError(t, err)
	return env
}

func TestDisplayValuePrimitives(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "undefined", displayValue(env, rt.Undefined))
	assert.Equal(t, "null", displayValue(env, rt.Null))
	assert.Equal(t, "true", displayValue(env, rt.Bool(true)))
	assert.Equal(t, "false", displayValue(env, rt.Bool(false)))
	assert.Equal(t, "42", displayValue(env, rt.Number(42)))
}

func TestDisplayValueString(t *testing.T) {
	env := newTestEnv(t)
	s, err := rt.NewString(env.Heap(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "hello", displayValue(env, rt.StringValue(s.Addr())))
}

func TestDisplayValueObject(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "[object Object]", displayValue(env, env.GlobalObject()))
}
