package kernel

import (
	"testing"

	"github.com/preesm/spider2/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookupUnbound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup(0)
	require.Error(t, err)
	var cerr *core.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, core.ErrUnhandledVertexType, cerr.Code)
}

func TestRegistryRoundTrip(t *testing.T) {
	r := NewRegistry()
	called := false
	ix := r.CreateRuntimeKernel("double", func(ctx Context) error {
		called = true
		return nil
	})
	assert.Equal(t, "double", r.Name(ix))

	fn, err := r.Lookup(ix)
	require.NoError(t, err)
	require.NoError(t, fn(Context{}))
	assert.True(t, called)
}

func TestDecodeOptions(t *testing.T) {
	type repeatOptions struct {
		ChunkSize int    `mapstructure:"chunk_size"`
		Mode      string `mapstructure:"mode"`
	}
	raw := map[string]any{"chunk_size": 64, "mode": "strict"}

	var opts repeatOptions
	require.NoError(t, DecodeOptions(raw, &opts))
	assert.Equal(t, 64, opts.ChunkSize)
	assert.Equal(t, "strict", opts.Mode)
}
