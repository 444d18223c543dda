package launcher

import (
	"testing"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireEdge(g *pisdf.Graph, srcIx, srcPort, snkIx, snkPort int, rate string) {
	g.AddEdge(pisdf.NewEdge(0,
		pisdf.VertexRef{VertexIx: srcIx, PortIx: srcPort},
		pisdf.VertexRef{VertexIx: snkIx, PortIx: snkPort},
		expr.MustParse(rate), expr.MustParse(rate)))
}

func TestForkParamsBuildsShapeDescription(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	src := g.AddVertex(pisdf.NewVertex(0, "src", core.VertexNormal, 0, 1))
	fork := g.AddVertex(pisdf.NewVertex(0, "fork", core.VertexFork, 1, 2))
	out0 := g.AddVertex(pisdf.NewVertex(0, "out0", core.VertexNormal, 1, 0))
	out1 := g.AddVertex(pisdf.NewVertex(0, "out1", core.VertexNormal, 1, 0))
	wireEdge(g, src.Ix, 0, fork.Ix, 0, "12")
	wireEdge(g, fork.Ix, 0, out0.Ix, 0, "5")
	wireEdge(g, fork.Ix, 1, out1.Ix, 0, "7")

	params, err := BuildInputParams(g, fork, expr.MapScope{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 2, 5, 7}, params)
}

func TestJoinParamsBuildsShapeDescription(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	in0 := g.AddVertex(pisdf.NewVertex(0, "in0", core.VertexNormal, 0, 1))
	in1 := g.AddVertex(pisdf.NewVertex(0, "in1", core.VertexNormal, 0, 1))
	join := g.AddVertex(pisdf.NewVertex(0, "join", core.VertexJoin, 2, 1))
	snk := g.AddVertex(pisdf.NewVertex(0, "snk", core.VertexNormal, 1, 0))
	wireEdge(g, in0.Ix, 0, join.Ix, 0, "5")
	wireEdge(g, in1.Ix, 0, join.Ix, 1, "7")
	wireEdge(g, join.Ix, 0, snk.Ix, 0, "12")

	params, err := BuildInputParams(g, join, expr.MapScope{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 2, 5, 7}, params)
}

func TestHeadParamsAccumulatesUntilCovered(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	in0 := g.AddVertex(pisdf.NewVertex(0, "in0", core.VertexNormal, 0, 1))
	in1 := g.AddVertex(pisdf.NewVertex(0, "in1", core.VertexNormal, 0, 1))
	in2 := g.AddVertex(pisdf.NewVertex(0, "in2", core.VertexNormal, 0, 1))
	head := g.AddVertex(pisdf.NewVertex(0, "head", core.VertexHead, 3, 1))
	snk := g.AddVertex(pisdf.NewVertex(0, "snk", core.VertexNormal, 1, 0))
	wireEdge(g, in0.Ix, 0, head.Ix, 0, "3")
	wireEdge(g, in1.Ix, 0, head.Ix, 1, "3")
	wireEdge(g, in2.Ix, 0, head.Ix, 2, "3")
	wireEdge(g, head.Ix, 0, snk.Ix, 0, "5")

	params, err := BuildInputParams(g, head, expr.MapScope{}, nil)
	require.NoError(t, err)
	// Needs port0 (3) + part of port1 (2 of 3) to cover a rate-5 output.
	assert.Equal(t, []int64{2, 3, 2}, params)
}

func TestTailParamsAccumulatesFromTheEnd(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	in0 := g.AddVertex(pisdf.NewVertex(0, "in0", core.VertexNormal, 0, 1))
	in1 := g.AddVertex(pisdf.NewVertex(0, "in1", core.VertexNormal, 0, 1))
	in2 := g.AddVertex(pisdf.NewVertex(0, "in2", core.VertexNormal, 0, 1))
	tail := g.AddVertex(pisdf.NewVertex(0, "tail", core.VertexTail, 3, 1))
	snk := g.AddVertex(pisdf.NewVertex(0, "snk", core.VertexNormal, 1, 0))
	wireEdge(g, in0.Ix, 0, tail.Ix, 0, "3")
	wireEdge(g, in1.Ix, 0, tail.Ix, 1, "3")
	wireEdge(g, in2.Ix, 0, tail.Ix, 2, "3")
	wireEdge(g, tail.Ix, 0, snk.Ix, 0, "5")

	params, err := BuildInputParams(g, tail, expr.MapScope{}, nil)
	require.NoError(t, err)
	// 3 input ports total; last 2 cover the rate-5 output (port2 fully, 2/3 of port1).
	assert.Equal(t, int64(3), params[0])
	assert.Equal(t, int64(1), params[1]) // firstIx = 3 - 2
	assert.Equal(t, int64(1), params[2]) // sinkRates[1](3) - remaining(2)
	assert.Equal(t, int64(2), params[3]) // remaining
	assert.Equal(t, int64(3), params[4]) // sinkRates[2]
}

func TestInitEndParamsCarryZeroOffsetAndRate(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	initV := g.AddVertex(pisdf.NewVertex(0, "init", core.VertexInit, 0, 1))
	endV := g.AddVertex(pisdf.NewVertex(0, "end", core.VertexEnd, 1, 0))
	snk := g.AddVertex(pisdf.NewVertex(0, "snk", core.VertexNormal, 1, 0))
	src := g.AddVertex(pisdf.NewVertex(0, "src", core.VertexNormal, 0, 1))
	wireEdge(g, initV.Ix, 0, snk.Ix, 0, "4")
	wireEdge(g, src.Ix, 0, endV.Ix, 0, "6")

	initParams, err := BuildInputParams(g, initV, expr.MapScope{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 4}, initParams)

	endParams, err := BuildInputParams(g, endV, expr.MapScope{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 6}, endParams)
}

func TestNormalVertexPassesRefinementParamsThrough(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	v := g.AddVertex(pisdf.NewVertex(0, "n", core.VertexNormal, 0, 0))
	params, err := BuildInputParams(g, v, expr.MapScope{}, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, params)
}

func TestUnhandledVertexTypeErrors(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	v := g.AddVertex(pisdf.NewVertex(0, "d", core.VertexDelay, 0, 0))
	_, err := BuildInputParams(g, v, expr.MapScope{}, nil)
	require.Error(t, err)
	var coreErr *core.Error
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, core.ErrUnhandledVertexType, coreErr.Code)
}
