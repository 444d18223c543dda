package fifo

import (
	"testing"

	"github.com/preesm/spider2/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noPrev(int) int { return -1 }

func TestAllocateNewOutputThenSameInInput(t *testing.T) {
	a := NewAllocator()

	producerOut := []AllocationRule{{Type: core.AllocNew, Size: 100, Attribute: core.FifoRWOwn}}
	producerTf, err := a.Allocate(0, nil, producerOut, noPrev)
	require.NoError(t, err)
	assert.EqualValues(t, 0, producerTf.Output[0].VirtualAddress)

	consumerIn := []AllocationRule{{Type: core.AllocSameIn, FifoIx: 0, Size: 100, Attribute: core.FifoRWOnly}}
	consumerTf, err := a.Allocate(1, consumerIn, nil, func(int) int { return 0 })
	require.NoError(t, err)
	assert.Equal(t, producerTf.Output[0].VirtualAddress, consumerTf.Input[0].VirtualAddress)
}

func TestAllocateExtOutputUsesFixedAddress(t *testing.T) {
	a := NewAllocator()
	outRules := []AllocationRule{{Type: core.AllocExt, Offset: 4096, Size: 64, Attribute: core.FifoRWExt}}
	tf, err := a.Allocate(0, nil, outRules, noPrev)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, tf.Output[0].VirtualAddress)
}

func TestMergedInputFifoReusedAcrossIdenticalConsumers(t *testing.T) {
	a := NewAllocator()

	// Two producers, each with one NEW output.
	pa, err := a.Allocate(0, nil, []AllocationRule{{Type: core.AllocNew, Size: 10, Attribute: core.FifoRWOwn}}, noPrev)
	require.NoError(t, err)
	pb, err := a.Allocate(1, nil, []AllocationRule{{Type: core.AllocNew, Size: 10, Attribute: core.FifoRWOwn}}, noPrev)
	require.NoError(t, err)
	_ = pa
	_ = pb

	mergeRule := AllocationRule{
		Type: core.AllocMerge, Size: 20, Offset: 1, Attribute: core.FifoRMerge,
		Others: []AllocationRule{{Type: core.AllocSameIn, FifoIx: 0, Size: 10, Attribute: core.FifoRWOnly}},
	}
	prevOf := func(portIx int) int {
		if portIx == 0 {
			return 0
		}
		return 1
	}

	rules := []AllocationRule{mergeRule, {}}
	c, err := a.Allocate(2, rules, nil, prevOf)
	require.NoError(t, err)
	d, err := a.Allocate(3, rules, nil, prevOf)
	require.NoError(t, err)

	assert.Equal(t, c.Input[0].VirtualAddress, d.Input[0].VirtualAddress)
	assert.Equal(t, core.FifoRWOwn, d.Input[0].Attribute)
	// The first merged task's bookkeeping record observed the reuse.
	assert.Equal(t, 1, a.fifos[2].Input[0].Count)
}
