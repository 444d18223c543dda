package runtime_test

import (
	"testing"

	"github.com/preesm/spider2/internal/example"
	"github.com/preesm/spider2/internal/launcher"
	"github.com/preesm/spider2/internal/mapper"
	"github.com/stretchr/testify/require"
)

func TestDriverRunIterationChainWithDelaySetter(t *testing.T) {
	scn := example.Chain()
	d := scn.NewDriver(mapper.BestFit, launcher.JIT, 16)

	require.NoError(t, d.RunIteration())
}

func TestDriverRunIterationForkJoinResolvesConfigParam(t *testing.T) {
	scn := example.ForkJoin()
	d := scn.NewDriver(mapper.BestFit, launcher.JIT, 16)

	require.NoError(t, d.RunIteration())
}

func TestDriverRunIterationRoundRobinMapper(t *testing.T) {
	scn := example.Chain()
	d := scn.NewDriver(mapper.RoundRobin, launcher.Delayed, 16)

	require.NoError(t, d.RunIteration())
}

func TestDriverRunIterationIsRepeatable(t *testing.T) {
	scn := example.ForkJoin()
	d := scn.NewDriver(mapper.BestFit, launcher.JIT, 16)

	require.NoError(t, d.RunIteration())
	require.NoError(t, d.RunIteration())
}
