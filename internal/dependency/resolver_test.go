package dependency

import (
	"testing"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/firing"
	"github.com/preesm/spider2/internal/param"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeExecDependencySingleProducerFiring(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	a := g.AddVertex(pisdf.NewVertex(-1, "A", core.VertexNormal, 0, 1))
	b := g.AddVertex(pisdf.NewVertex(-1, "B", core.VertexNormal, 1, 0))
	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: a.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: b.Ix, PortIx: 0},
		expr.MustParse("4"), expr.MustParse("4")))

	h := firing.NewGraphHandler(g)
	f, err := h.ResolveFiring(0, nil)
	require.NoError(t, err)

	deps, err := ComputeExecDependency(b, 0, 0, f)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, a, deps[0].Vertex)
	assert.EqualValues(t, 0, deps[0].FiringFrom)
	assert.EqualValues(t, 0, deps[0].FiringTo)
}

func TestComputeExecDependencySpansMultipleProducerFirings(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	a := g.AddVertex(pisdf.NewVertex(-1, "A", core.VertexNormal, 0, 1))
	b := g.AddVertex(pisdf.NewVertex(-1, "B", core.VertexNormal, 1, 0))
	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: a.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: b.Ix, PortIx: 0},
		expr.MustParse("3"), expr.MustParse("6")))

	h := firing.NewGraphHandler(g)
	f, err := h.ResolveFiring(0, nil)
	require.NoError(t, err)

	deps, err := ComputeExecDependency(b, 0, 0, f)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.EqualValues(t, 0, deps[0].FiringFrom)
	assert.EqualValues(t, 1, deps[0].FiringTo)
}

func TestComputeExecDependencySplitsAcrossDelaySetter(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	s := g.AddVertex(pisdf.NewVertex(-1, "S", core.VertexNormal, 0, 1))
	d := g.AddVertex(pisdf.NewVertex(-1, "D", core.VertexNormal, 1, 0))
	a := g.AddVertex(pisdf.NewVertex(-1, "A", core.VertexNormal, 0, 1))
	b := g.AddVertex(pisdf.NewVertex(-1, "B", core.VertexNormal, 1, 0))

	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: s.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: d.Ix, PortIx: 0},
		expr.MustParse("10"), expr.MustParse("10")))
	mainEdge := g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: a.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: b.Ix, PortIx: 0},
		expr.MustParse("6"), expr.MustParse("10")))
	delay := g.AddDelay(pisdf.NewDelay(-1, expr.MustParse("4"), mainEdge.Ix, -1, -1))
	delay.SetterVertexIx = s.Ix
	delay.SetterPortIx = 0

	h := firing.NewGraphHandler(g)
	f, err := h.ResolveFiring(0, nil)
	require.NoError(t, err)

	deps, err := ComputeExecDependency(b, 0, 0, f)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, s, deps[0].Vertex)
	assert.EqualValues(t, 0, deps[0].MemFrom)
	assert.EqualValues(t, 3, deps[0].MemTo)
	assert.Equal(t, a, deps[1].Vertex)
	assert.EqualValues(t, 0, deps[1].MemFrom)
	assert.EqualValues(t, 5, deps[1].MemTo)
}

func TestComputeExecDependencyCrossesInputInterface(t *testing.T) {
	parentGraph := pisdf.NewGraph(0, "top")
	a := parentGraph.AddVertex(pisdf.NewVertex(-1, "A", core.VertexNormal, 0, 1))
	subVertex := parentGraph.AddVertex(pisdf.NewVertex(-1, "sub", core.VertexGraph, 1, 0))
	parentGraph.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: a.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: subVertex.Ix, PortIx: 0},
		expr.MustParse("5"), expr.MustParse("5")))

	sub := pisdf.NewGraph(1, "sub")
	inIf := sub.AddVertex(pisdf.NewVertex(-1, "in0", core.VertexInputInterface, 0, 1))
	inIf.InterfaceIx = 0
	body := sub.AddVertex(pisdf.NewVertex(-1, "body", core.VertexNormal, 1, 0))
	sub.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: inIf.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: body.Ix, PortIx: 0},
		expr.MustParse("5"), expr.MustParse("5")))
	parentGraph.SetSubgraph(subVertex.Ix, sub)

	parentHandler := firing.NewGraphHandler(parentGraph)
	parentFiring, err := parentHandler.ResolveFiring(0, nil)
	require.NoError(t, err)

	childFiring, err := parentFiring.ChildFiring(subVertex.Ix, 0)
	require.NoError(t, err)

	deps, err := ComputeExecDependency(body, 0, 0, childFiring)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, a, deps[0].Vertex)
}

func TestComputeExecDependencyUnresolvedChildGraphStopsWalk(t *testing.T) {
	parentGraph := pisdf.NewGraph(0, "top")
	subVertex := parentGraph.AddVertex(pisdf.NewVertex(-1, "sub", core.VertexGraph, 0, 1))
	consumer := parentGraph.AddVertex(pisdf.NewVertex(-1, "C", core.VertexNormal, 1, 0))
	parentGraph.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: subVertex.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: consumer.Ix, PortIx: 0},
		expr.MustParse("5"), expr.MustParse("5")))

	sub := pisdf.NewGraph(1, "sub")
	sub.AddParam(param.NewDynamic("n"))
	outIf := sub.AddVertex(pisdf.NewVertex(-1, "out0", core.VertexOutputInterface, 1, 0))
	outIf.InterfaceIx = 0
	body := sub.AddVertex(pisdf.NewVertex(-1, "body", core.VertexNormal, 0, 1))
	sub.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: body.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: outIf.Ix, PortIx: 0},
		expr.MustParse("5"), expr.MustParse("5")))
	parentGraph.SetSubgraph(subVertex.Ix, sub)

	parentHandler := firing.NewGraphHandler(parentGraph)
	parentFiring, err := parentHandler.ResolveFiring(0, nil)
	require.NoError(t, err)

	// Child firing is created but its Dynamic parameter "n" is never set,
	// so it never becomes resolved.
	_, err = parentFiring.ChildFiring(subVertex.Ix, 0)
	require.NoError(t, err)

	deps, err := ComputeExecDependency(consumer, 0, 0, parentFiring)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.True(t, deps[0].Unresolved)
}
