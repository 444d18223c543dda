package launcher

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/pisdf"
)

// PersistentAddress resolves the fixed virtual address a persistent
// delay's INIT/END pair reuses across iterations; the same function
// value the driver threads into fifo.BuildAllocationRules. Memory reuse
// itself is enforced there; BuildInputParams's INIT/END templates always
// report offset 0, since the kernel recovers the actual address from its
// resolved output/input Fifo, not from the parameter array.
type PersistentAddress func(delayIx int) (address int64, ok bool)

// BuildInputParams computes the positional input-parameter array a
// launched task's kernel expects, per vertex subtype (§4.10, §6).
// NORMAL/CONFIG actors get their resolved refinement parameters verbatim;
// every special actor (FORK/JOIN/HEAD/TAIL/REPEAT/DUPLICATE/INIT/END)
// instead gets a shape description synthesized from its incident edges'
// rates, so the kernel can do its byte-shuffling without touching the
// graph model.
func BuildInputParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope, refinementParams []int64) ([]int64, error) {
	switch v.Type {
	case core.VertexConfig, core.VertexNormal:
		return refinementParams, nil
	case core.VertexFork:
		return forkParams(g, v, scope)
	case core.VertexJoin:
		return joinParams(g, v, scope)
	case core.VertexRepeat:
		return repeatParams(g, v, scope)
	case core.VertexDuplicate:
		return duplicateParams(g, v, scope)
	case core.VertexTail:
		return tailParams(g, v, scope)
	case core.VertexHead:
		return headParams(g, v, scope)
	case core.VertexInit:
		return initParams(g, v, scope)
	case core.VertexEnd:
		return endParams(g, v, scope)
	default:
		return nil, core.NewError(core.ErrUnhandledVertexType, "vertex subtype has no input-parameter template", "vertex", v.Name, "type", v.Type.String())
	}
}

func forkParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope) ([]int64, error) {
	inRate, err := g.InputEdge(v.Ix, 0).SinkRate(scope)
	if err != nil {
		return nil, err
	}
	n := len(v.OutputPorts)
	params := make([]int64, n+2)
	params[0] = inRate
	params[1] = int64(n)
	for i := 0; i < n; i++ {
		rate, err := g.OutputEdge(v.Ix, i).SourceRate(scope)
		if err != nil {
			return nil, err
		}
		params[i+2] = rate
	}
	return params, nil
}

func joinParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope) ([]int64, error) {
	outRate, err := g.OutputEdge(v.Ix, 0).SourceRate(scope)
	if err != nil {
		return nil, err
	}
	n := len(v.InputPorts)
	params := make([]int64, n+2)
	params[0] = outRate
	params[1] = int64(n)
	for i := 0; i < n; i++ {
		rate, err := g.InputEdge(v.Ix, i).SinkRate(scope)
		if err != nil {
			return nil, err
		}
		params[i+2] = rate
	}
	return params, nil
}

func repeatParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope) ([]int64, error) {
	in, err := g.InputEdge(v.Ix, 0).SinkRate(scope)
	if err != nil {
		return nil, err
	}
	out, err := g.OutputEdge(v.Ix, 0).SourceRate(scope)
	if err != nil {
		return nil, err
	}
	return []int64{in, out}, nil
}

func duplicateParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope) ([]int64, error) {
	in, err := g.InputEdge(v.Ix, 0).SinkRate(scope)
	if err != nil {
		return nil, err
	}
	return []int64{int64(len(v.OutputPorts)), in}, nil
}

// tailParams mirrors the original's backward scan: starting from the
// last input port, accumulate sink rates until they cover the output
// rate, recording only the ports actually needed (§4.10).
func tailParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope) ([]int64, error) {
	rate, err := g.OutputEdge(v.Ix, 0).SourceRate(scope)
	if err != nil {
		return nil, err
	}
	n := len(v.InputPorts)
	sinkRates := make([]int64, n)
	for i := 0; i < n; i++ {
		r, err := g.InputEdge(v.Ix, i).SinkRate(scope)
		if err != nil {
			return nil, err
		}
		sinkRates[i] = r
	}
	inputCount := 1
	remaining := rate
	for i := n - 1; i > 0; i-- {
		if sinkRates[i] >= remaining {
			break
		}
		remaining -= sinkRates[i]
		inputCount++
	}
	firstIx := n - inputCount
	params := make([]int64, 4+inputCount)
	params[0] = int64(n)
	params[1] = int64(firstIx)
	params[2] = sinkRates[firstIx] - remaining
	params[3] = remaining
	for i, src := 4, n-1; src > firstIx; i, src = i+1, src-1 {
		params[i] = sinkRates[src]
	}
	return params, nil
}

// headParams mirrors the original's forward scan: accumulate sink rates
// from the first input port until they cover the output rate (§4.10).
func headParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope) ([]int64, error) {
	rate, err := g.OutputEdge(v.Ix, 0).SourceRate(scope)
	if err != nil {
		return nil, err
	}
	n := len(v.InputPorts)
	sinkRates := make([]int64, n)
	for i := 0; i < n; i++ {
		r, err := g.InputEdge(v.Ix, i).SinkRate(scope)
		if err != nil {
			return nil, err
		}
		sinkRates[i] = r
	}
	inputCount := 1
	remaining := rate
	for i := 0; i < n-1; i++ {
		if sinkRates[i] >= remaining {
			break
		}
		remaining -= sinkRates[i]
		inputCount++
	}
	params := make([]int64, 1+inputCount)
	params[0] = int64(inputCount)
	remaining = rate
	for i := 0; i < inputCount; i++ {
		take := sinkRates[i]
		if take > remaining {
			take = remaining
		}
		params[i+1] = take
		remaining -= sinkRates[i]
	}
	return params, nil
}

// initParams/endParams return [0, rate]: the first entry is always 0,
// whether or not the paired delay is persistent, and no address entry is
// appended.
func initParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope) ([]int64, error) {
	rate, err := g.OutputEdge(v.Ix, 0).SourceRate(scope)
	if err != nil {
		return nil, err
	}
	return []int64{0, rate}, nil
}

func endParams(g *pisdf.Graph, v *pisdf.Vertex, scope expr.Scope) ([]int64, error) {
	rate, err := g.InputEdge(v.Ix, 0).SinkRate(scope)
	if err != nil {
		return nil, err
	}
	return []int64{0, rate}, nil
}
