package pisdf

import (
	"testing"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSimpleChain(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph(0, "top")
	a := g.AddVertex(NewVertex(-1, "A", core.VertexNormal, 0, 1))
	b := g.AddVertex(NewVertex(-1, "B", core.VertexNormal, 1, 0))
	e := g.AddEdge(NewEdge(-1,
		VertexRef{a.Ix, 0}, VertexRef{b.Ix, 0},
		expr.MustParse("10"), expr.MustParse("10")))
	_ = e
	return g
}

func TestGraphAddVertexAssignsIx(t *testing.T) {
	g := buildSimpleChain(t)
	require.Len(t, g.Vertices, 2)
	assert.Equal(t, 0, g.Vertex(0).Ix)
	assert.Equal(t, 1, g.Vertex(1).Ix)
}

func TestGraphAddEdgeWiresPorts(t *testing.T) {
	g := buildSimpleChain(t)
	assert.Equal(t, 0, g.Vertex(0).OutputPorts[0].EdgeIx)
	assert.Equal(t, 0, g.Vertex(1).InputPorts[0].EdgeIx)
	assert.Same(t, g.OutputEdge(0, 0), g.InputEdge(1, 0))
}

func TestGraphAddDelayLinksEdge(t *testing.T) {
	g := buildSimpleChain(t)
	initV := g.AddVertex(NewVertex(-1, "A_init", core.VertexInit, 0, 1))
	endV := g.AddVertex(NewVertex(-1, "A_end", core.VertexEnd, 1, 0))
	d := g.AddDelay(NewDelay(-1, expr.MustParse("4"), 0, initV.Ix, endV.Ix))

	assert.True(t, g.Edge(0).HasDelay())
	assert.Equal(t, d.Ix, g.Edge(0).DelayIx)
	assert.True(t, d.Persistent())

	v, err := d.Value(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}

func TestGraphParamLookup(t *testing.T) {
	g := NewGraph(0, "top")
	p := g.AddParam(param.NewStatic("n", expr.MustParse("8")))
	ix, ok := g.ParamIx("n")
	require.True(t, ok)
	assert.Same(t, p, g.Params[ix])

	_, err := g.Param("missing")
	require.Error(t, err)
}

func TestGraphInterfaceVerticesOrderedByDeclaration(t *testing.T) {
	g := NewGraph(0, "sub")
	in0 := g.AddVertex(NewVertex(-1, "in0", core.VertexInputInterface, 0, 1))
	in0.InterfaceIx = 0
	_ = g.AddVertex(NewVertex(-1, "body", core.VertexNormal, 1, 0))
	in1 := g.AddVertex(NewVertex(-1, "in1", core.VertexInputInterface, 0, 1))
	in1.InterfaceIx = 1

	ifs := g.InterfaceVertices(core.VertexInputInterface)
	require.Len(t, ifs, 2)
	assert.Equal(t, "in0", ifs[0].Name)
	assert.Equal(t, "in1", ifs[1].Name)
}

func TestSetSubgraphMarksVertex(t *testing.T) {
	g := NewGraph(0, "top")
	gv := g.AddVertex(NewVertex(-1, "sub", core.VertexGraph, 1, 1))
	child := NewGraph(1, "sub_body")
	g.SetSubgraph(gv.Ix, child)

	assert.True(t, gv.IsHierarchical())
	require.NotNil(t, g.Subgraphs[gv.Ix])
	assert.Same(t, child, g.Subgraphs[gv.Ix])
}
