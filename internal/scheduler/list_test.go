package scheduler

import (
	"testing"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/preesm/spider2/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlatform() *platform.Platform {
	return platform.New(
		[]platform.PE{{Ix: 0, ClusterIx: 0, HWTypeIx: 0}},
		[]platform.Cluster{{Ix: 0, PEIx: []int{0}}},
		[]platform.HWType{{Ix: 0, Name: "x86"}},
		1, nil,
	)
}

func nodeWithTiming(v *pisdf.Vertex, firing uint32, cost string) *Node {
	rt := pisdf.NewRTInfo(1, 1, 0)
	rt.Mappable[0] = true
	rt.TimingExpr[0] = expr.MustParse(cost)
	v.RTInfo = rt
	return &Node{Vertex: v, FiringIx: firing, RTInfo: rt, Executable: true}
}

func TestListOrdersByDescendingLevel(t *testing.T) {
	a := pisdf.NewVertex(0, "A", core.VertexNormal, 0, 1)
	b := pisdf.NewVertex(1, "B", core.VertexNormal, 1, 1)
	c := pisdf.NewVertex(2, "C", core.VertexNormal, 1, 0)

	na := nodeWithTiming(a, 0, "10")
	nb := nodeWithTiming(b, 0, "5")
	nc := nodeWithTiming(c, 0, "1")
	na.Successors = []int{1}
	nb.Successors = []int{2}

	nodes := []*Node{na, nb, nc}
	nonSched, err := List(nodes, testPlatform())
	require.NoError(t, err)
	assert.Equal(t, 0, nonSched)
	assert.Equal(t, "A", nodes[0].Vertex.Name)
	assert.Equal(t, "B", nodes[1].Vertex.Name)
	assert.Equal(t, "C", nodes[2].Vertex.Name)
}

func TestListLevelUsesProducersOwnExecutionTime(t *testing.T) {
	a := pisdf.NewVertex(0, "A", core.VertexNormal, 0, 1)
	b := pisdf.NewVertex(1, "B", core.VertexNormal, 0, 1)
	c := pisdf.NewVertex(2, "C", core.VertexNormal, 2, 0)

	na := nodeWithTiming(a, 0, "100")
	nb := nodeWithTiming(b, 0, "1")
	nc := nodeWithTiming(c, 0, "1")
	na.Successors = []int{2}
	nb.Successors = []int{2}

	nodes := []*Node{na, nb, nc}
	nonSched, err := List(nodes, testPlatform())
	require.NoError(t, err)
	assert.Equal(t, 0, nonSched)
	// Each producer's level is bumped by its own execution time, not C's:
	// A (cost 100) must end up strictly ahead of B (cost 1) even though
	// both feed the same consumer at the same level.
	assert.Greater(t, na.level, nb.level)
	assert.Equal(t, nc.level+100, na.level)
	assert.Equal(t, nc.level+1, nb.level)
}

func TestListPushesNonExecutableToBack(t *testing.T) {
	a := pisdf.NewVertex(0, "A", core.VertexNormal, 0, 1)
	b := pisdf.NewVertex(1, "B", core.VertexConfig, 1, 0)

	na := nodeWithTiming(a, 0, "10")
	nb := nodeWithTiming(b, 0, "5")
	nb.Executable = false
	na.Successors = []int{1}

	nodes := []*Node{na, nb}
	nonSched, err := List(nodes, testPlatform())
	require.NoError(t, err)
	assert.Equal(t, 1, nonSched)
	assert.Equal(t, "B", nodes[len(nodes)-1].Vertex.Name)
}
