package dependency

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/firing"
	"github.com/preesm/spider2/internal/pisdf"
)

// Dependency is one producer-firing contribution resolved for a consumer
// edge window. Unlike core.ExecDependency (the lightweight marker type
// shared with `firing` to avoid an import cycle), Dependency carries the
// *firing.GraphFiring that actually owns the producer, since a dependency
// may cross into a parent or child handler entirely distinct from the
// consumer's own (§4.5).
type Dependency struct {
	Vertex     *pisdf.Vertex
	Handler    *firing.GraphFiring
	EdgeIx     int
	Rate       int64
	FiringFrom int64
	FiringTo   int64
	MemFrom    int64
	MemTo      int64
	Unresolved bool
}

var unresolved = Dependency{Unresolved: true}

// ComputeExecDependency resolves every producer dependency feeding input
// port edgeIx of vertex's firing-th firing within handler (§4.5). The
// original's lazy DependencyIterator is flattened to a slice here: the
// scheduling core consumes the full list immediately in every caller
// (FifoAllocator, List Scheduler), so there is no benefit to the
// incremental-iterator discipline the original needed for its C++
// allocator.
func ComputeExecDependency(vertex *pisdf.Vertex, firingIx uint32, edgeIx int, handler *firing.GraphFiring) ([]Dependency, error) {
	graph := handler.Handler.Graph
	edge := graph.InputEdge(vertex.Ix, edgeIx)
	snkRate, err := handler.GetSnkRate(edge.Ix)
	if err != nil {
		return nil, err
	}
	lower := snkRate * int64(firingIx)
	upper := snkRate*int64(firingIx+1) - 1
	return resolveWindow(edge, lower, upper, handler)
}

// ComputeExecDependencyCount returns how many distinct producer firings
// feed this consumer window, or -1 when any of them is still unresolved
// (§4.5). It builds the full list with ComputeExecDependency and counts
// it; the list is not avoided.
func ComputeExecDependencyCount(vertex *pisdf.Vertex, firingIx uint32, edgeIx int, handler *firing.GraphFiring) (int, error) {
	deps, err := ComputeExecDependency(vertex, firingIx, edgeIx, handler)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, d := range deps {
		if d.Unresolved {
			return -1, nil
		}
		count += int(d.FiringTo-d.FiringFrom) + 1
	}
	return count, nil
}

func resolveWindow(edge *pisdf.Edge, lowerCons, upperCons int64, handler *firing.GraphFiring) ([]Dependency, error) {
	graph := handler.Handler.Graph
	srcVertex := graph.Vertex(edge.Source.VertexIx)
	srcRate, err := handler.GetSrcRate(edge.Ix)
	if err != nil {
		return nil, err
	}
	var delayValue int64
	if edge.HasDelay() {
		delayValue, err = graph.Delay(edge.DelayIx).Value(handler)
		if err != nil {
			return nil, err
		}
	}

	// Case: redirect through a delay's INIT/END pseudo-vertex to the
	// edge that actually carries the persistent storage (§4.5 case
	// DELAY).
	if srcVertex.DelayIx >= 0 && (srcVertex.Type == core.VertexInit || srcVertex.Type == core.VertexEnd) {
		delay := graph.Delay(srcVertex.DelayIx)
		delayEdge := graph.Edge(delay.EdgeIx)
		sink := graph.Vertex(delayEdge.Sink.VertexIx)
		snkRate2, err := handler.GetSnkRate(delayEdge.Ix)
		if err != nil {
			return nil, err
		}
		var offset int64
		if sink.Type == core.VertexOutputInterface {
			srcRVTot, err := handler.GetRV(delayEdge.Source.VertexIx)
			if err != nil {
				return nil, err
			}
			totSrcRate, err := handler.GetSrcRate(delayEdge.Ix)
			if err != nil {
				return nil, err
			}
			offset = totSrcRate*srcRVTot - snkRate2
		} else {
			rvSink, err := handler.GetRV(delayEdge.Sink.VertexIx)
			if err != nil {
				return nil, err
			}
			offset = snkRate2 * rvSink
		}
		return resolveWindow(delayEdge, lowerCons+offset, upperCons+offset, handler)
	}

	if lowerCons >= delayValue {
		switch srcVertex.Type {
		case core.VertexInputInterface:
			return resolveAcrossInputInterface(srcVertex, lowerCons-delayValue, upperCons-delayValue, srcRate, handler)
		case core.VertexGraph:
			return resolveAcrossChildGraph(edge, srcVertex, lowerCons-delayValue, upperCons-delayValue, srcRate, delayValue, handler)
		default:
			firingStart := FloorDiv(lowerCons-delayValue, srcRate)
			firingEnd := FloorDiv(upperCons-delayValue, srcRate)
			return []Dependency{{
				Vertex:     srcVertex,
				Handler:    handler,
				EdgeIx:     edge.Ix,
				Rate:       srcRate,
				FiringFrom: firingStart,
				FiringTo:   firingEnd,
				MemFrom:    FloorMod(lowerCons-delayValue, srcRate),
				MemTo:      FloorMod(upperCons-delayValue, srcRate),
			}}, nil
		}
	}

	delay := graph.Delay(edge.DelayIx)
	if upperCons < delayValue {
		// Setter only: every token in the window is still part of the
		// delay's initial content.
		setterEdge := graph.OutputEdge(delay.SetterVertexIx, delay.SetterPortIx)
		return resolveWindow(setterEdge, lowerCons, upperCons, handler)
	}
	// Setter + source: window straddles the delay boundary, split it.
	setterEdge := graph.OutputEdge(delay.SetterVertexIx, delay.SetterPortIx)
	setterDeps, err := resolveWindow(setterEdge, lowerCons, delayValue-1, handler)
	if err != nil {
		return nil, err
	}
	sourceDeps, err := resolveWindow(edge, delayValue, upperCons, handler)
	if err != nil {
		return nil, err
	}
	return append(setterDeps, sourceDeps...), nil
}

// resolveAcrossInputInterface crosses up into the parent firing: the
// INPUT_IF's own single firing simply forwards the exterior edge's
// tokens, offset by this child firing's position among its handler's
// repetitions (§4.5 case INPUT_IF). Interfaces always carry rv=1 (§4.4),
// so unlike the child-graph case below there is exactly one window to
// follow, not a range.
func resolveAcrossInputInterface(ifVertex *pisdf.Vertex, lower, upper, srcRate int64, handler *firing.GraphFiring) ([]Dependency, error) {
	parent := handler.Parent
	if parent == nil {
		return nil, core.NewError(core.ErrRateExprBadParam, "input interface has no parent firing to cross into", "vertex", ifVertex.Name)
	}
	ownerIx := handler.Handler.OwnerVertexIx
	parentGraph := parent.Handler.Graph
	parentEdge := parentGraph.InputEdge(ownerIx, ifVertex.InterfaceIx)
	upperLCons := srcRate * int64(handler.FiringIx)
	return resolveWindow(parentEdge, upperLCons+lower, upperLCons+upper, parent)
}

// resolveAcrossChildGraph crosses down into the child handler owned by
// the GRAPH vertex srcVertex. Each producer firing k in range must have
// been resolved already (its CONFIG actors executed and its dynamic
// parameters bound); the first unresolved one stops the walk and reports
// a single Unresolved marker, matching the original's early-exit (§4.5
// case GRAPH).
func resolveAcrossChildGraph(edge *pisdf.Edge, srcVertex *pisdf.Vertex, lower, upper, srcRate, delayValue int64, handler *firing.GraphFiring) ([]Dependency, error) {
	firingStart := FloorDiv(lower, srcRate)
	firingEnd := FloorDiv(upper, srcRate)

	var results []Dependency
	for k := firingStart; k <= firingEnd; k++ {
		childFiring, err := handler.ChildFiring(srcVertex.Ix, int(k))
		if err != nil {
			return nil, err
		}
		if !childFiring.IsResolved() {
			return []Dependency{unresolved}, nil
		}
		childGraph := childFiring.Handler.Graph
		outIfs := childGraph.InterfaceVertices(core.VertexOutputInterface)
		if edge.Source.PortIx >= len(outIfs) {
			return nil, core.NewError(core.ErrRateExprBadParam, "graph vertex output port has no matching output interface", "vertex", srcVertex.Name, "port", edge.Source.PortIx)
		}
		ifVertex := outIfs[edge.Source.PortIx]
		innerEdge := childGraph.InputEdge(ifVertex.Ix, 0)

		ifSrcRV, err := childFiring.GetRV(innerEdge.Source.VertexIx)
		if err != nil {
			return nil, err
		}
		ifSrcRate, err := childFiring.GetSrcRate(innerEdge.Ix)
		if err != nil {
			return nil, err
		}
		var ifDelay int64
		if innerEdge.HasDelay() {
			ifDelay, err = childGraph.Delay(innerEdge.DelayIx).Value(childFiring)
			if err != nil {
				return nil, err
			}
		}

		start, end := int64(0), srcRate-1
		if k == firingStart {
			start = FloorMod(lower, srcRate)
		}
		if k == firingEnd {
			end = FloorMod(upper, srcRate)
		}
		base := ifSrcRV*ifSrcRate - srcRate
		sub, err := resolveWindow(innerEdge, base+start+ifDelay, base+end+ifDelay, childFiring)
		if err != nil {
			return nil, err
		}
		results = append(results, sub...)
	}
	return results, nil
}
