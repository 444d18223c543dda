package firing

import (
	"testing"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/param"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainGraph(t *testing.T, prodA, consB int64) *pisdf.Graph {
	t.Helper()
	g := pisdf.NewGraph(0, "g")
	a := g.AddVertex(pisdf.NewVertex(-1, "A", core.VertexNormal, 0, 1))
	b := g.AddVertex(pisdf.NewVertex(-1, "B", core.VertexNormal, 1, 0))
	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: a.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: b.Ix, PortIx: 0},
		expr.MustParse(itoa(prodA)), expr.MustParse(itoa(consB))))
	return g
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var digits []byte
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func TestComputeBRVEvenRates(t *testing.T) {
	g := chainGraph(t, 10, 10)
	rv, err := ComputeBRV(g, param.MapScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rv[0])
	assert.EqualValues(t, 1, rv[1])
}

func TestComputeBRVUnevenRatesScalesByLCM(t *testing.T) {
	g := chainGraph(t, 2, 3)
	rv, err := ComputeBRV(g, param.MapScope{})
	require.NoError(t, err)
	// A produces 2, B consumes 3: balance at rv[A]=3, rv[B]=2 (3*2 == 2*3).
	assert.EqualValues(t, 3, rv[0])
	assert.EqualValues(t, 2, rv[1])
}

func TestGraphHandlerResolveFiringComputesRV(t *testing.T) {
	g := chainGraph(t, 4, 6)
	h := NewGraphHandler(g)
	f, err := h.ResolveFiring(0, nil)
	require.NoError(t, err)
	rvA, err := f.GetRV(0)
	require.NoError(t, err)
	rvB, err := f.GetRV(1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, rvA)
	assert.EqualValues(t, 2, rvB)
}

func TestStaticHandlerReusesSingleFiring(t *testing.T) {
	g := chainGraph(t, 1, 1)
	h := NewGraphHandler(g)
	assert.True(t, h.IsStatic)
	f0, err := h.ResolveFiring(0, nil)
	require.NoError(t, err)
	f5, err := h.ResolveFiring(5, nil)
	require.NoError(t, err)
	assert.Same(t, f0, f5)
}

func TestInheritedParameterResolvedFromParentFiring(t *testing.T) {
	parentGraph := pisdf.NewGraph(0, "parent")
	parentN := parentGraph.AddParam(param.NewStatic("n", expr.MustParse("6")))
	_ = parentN
	sub := pisdf.NewGraph(1, "sub")
	sub.AddParam(param.NewInherited("n", "n"))

	parentHandler := NewGraphHandler(parentGraph)
	parentFiring, err := parentHandler.ResolveFiring(0, nil)
	require.NoError(t, err)

	subHandler := NewGraphHandler(sub)
	subFiring, err := subHandler.ResolveFiring(0, parentFiring)
	require.NoError(t, err)

	v, ok := subFiring.ParamValue("n")
	require.True(t, ok)
	assert.Equal(t, int64(6), v)
}

func TestComputeBRVInputInterfaceScalesUp(t *testing.T) {
	g := pisdf.NewGraph(0, "sub")
	in0 := g.AddVertex(pisdf.NewVertex(-1, "in0", core.VertexInputInterface, 0, 1))
	body := g.AddVertex(pisdf.NewVertex(-1, "body", core.VertexNormal, 1, 0))
	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: in0.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: body.Ix, PortIx: 0},
		expr.MustParse("5"), expr.MustParse("2")))

	rv, err := ComputeBRV(g, param.MapScope{})
	require.NoError(t, err)
	// updateBRVFromInputIF: ceilDiv(5, 2) == 3, matching the original's
	// scale-up-only post-pass rather than rejecting the mismatch.
	assert.EqualValues(t, 3, rv[body.Ix])
	assert.EqualValues(t, 1, rv[in0.Ix])
}

func TestComputeBRVOutputInterfaceScalesUp(t *testing.T) {
	g := pisdf.NewGraph(0, "sub")
	body := g.AddVertex(pisdf.NewVertex(-1, "body", core.VertexNormal, 0, 1))
	out0 := g.AddVertex(pisdf.NewVertex(-1, "out0", core.VertexOutputInterface, 1, 0))
	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: body.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: out0.Ix, PortIx: 0},
		expr.MustParse("2"), expr.MustParse("5")))

	rv, err := ComputeBRV(g, param.MapScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, rv[body.Ix])
	assert.EqualValues(t, 1, rv[out0.Ix])
}

func TestComputeBRVConfigParamEdgeExcludedFromBalance(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	cfg := g.AddVertex(pisdf.NewVertex(-1, "cfg", core.VertexConfig, 0, 1))
	sink := g.AddVertex(pisdf.NewVertex(-1, "sink", core.VertexNormal, 1, 0))
	e := g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: cfg.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: sink.Ix, PortIx: 0},
		expr.MustParse("0"), expr.MustParse("0")))
	e.IsConfigParamEdge = true

	rv, err := ComputeBRV(g, param.MapScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rv[cfg.Ix])
	assert.EqualValues(t, 1, rv[sink.Ix])
}

func TestSetDynamicParamValueInvalidatesRV(t *testing.T) {
	g := pisdf.NewGraph(0, "g")
	g.AddParam(param.NewDynamic("n"))
	a := g.AddVertex(pisdf.NewVertex(-1, "A", core.VertexNormal, 0, 1))
	b := g.AddVertex(pisdf.NewVertex(-1, "B", core.VertexNormal, 1, 0))
	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: a.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: b.Ix, PortIx: 0},
		expr.MustParse("n"), expr.MustParse("1")))

	h := NewGraphHandler(g)
	assert.False(t, h.IsStatic)
	f, err := h.ResolveFiring(0, nil)
	require.NoError(t, err)

	require.NoError(t, f.SetDynamicParamValue("n", 5))
	rvB, err := f.GetRV(1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, rvB)
}
