// Package runtime implements the §2 control-flow driver: the GRT loop
// that walks a resolved firing tree into a flat schedule, and the LRT
// worker pool that actually executes the kernels a JobMessage names.
// Every other package in this module is a pure function of its inputs;
// runtime is where they get wired together and where the only mutable,
// concurrent state of a run lives (§5).
package runtime

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/dependency"
	"github.com/preesm/spider2/internal/firing"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/preesm/spider2/internal/scheduler"
)

// nodeKey identifies one (vertex, firing-local repetition) pair within a
// single GraphFiring, used to resolve a successor Node's slice index
// while walking.
type nodeKey struct {
	owner    *firing.GraphFiring
	vertexIx int
	repIx    int64
}

// BuildNodes walks the firing tree rooted at f in pre-order (§4.6),
// producing one scheduler.Node per (vertex, firing) pair this iteration
// can launch. GRAPH/INPUT_IF/OUTPUT_IF/DELAY vertices are purely
// structural and never become a Node themselves; a GRAPH vertex's child
// firings that are not yet resolved (still waiting on a CONFIG actor
// somewhere beneath them) are left out of this round's flat list
// entirely, since their own repetition count cannot be trusted until
// they resolve — the next call to BuildNodes after that CONFIG actor's
// result lands will pick them up.
func BuildNodes(f *firing.GraphFiring) ([]*scheduler.Node, error) {
	var nodes []*scheduler.Node
	index := make(map[nodeKey]int)
	if err := walkFiring(f, &nodes, index); err != nil {
		return nil, err
	}
	linkSuccessors(nodes, index)
	return nodes, nil
}

// walkFiring descends into f. A GRAPH vertex's own repetition count, like
// any ordinary vertex's, needs a fully resolved repetition vector
// (f.IsResolved()) before GetRV can be trusted; a vertex pinned to a
// single firing (Vertex.RequiresSingleFiring — CONFIG chief among them)
// is exempt, since its rv is always 1 regardless of whether the rest of
// the graph's dynamic parameters have arrived yet (§4.4). This lets a
// CONFIG actor's own Node be built and launched even while every other
// vertex of its graph is still waiting on it.
func walkFiring(f *firing.GraphFiring, nodes *[]*scheduler.Node, index map[nodeKey]int) error {
	g := f.Handler.Graph
	resolved := f.IsResolved()
	for _, v := range g.Vertices {
		switch v.Type {
		case core.VertexGraph:
			if !resolved {
				continue
			}
			rv, err := f.GetRV(v.Ix)
			if err != nil {
				return err
			}
			for k := int64(0); k < rv; k++ {
				child, err := f.ChildFiring(v.Ix, int(k))
				if err != nil {
					return err
				}
				if !child.IsResolved() {
					continue
				}
				if err := walkFiring(child, nodes, index); err != nil {
					return err
				}
			}
		case core.VertexInputInterface, core.VertexOutputInterface, core.VertexDelay:
			continue
		default:
			var rv int64 = 1
			if !v.RequiresSingleFiring() {
				if !resolved {
					continue
				}
				var err error
				rv, err = f.GetRV(v.Ix)
				if err != nil {
					return err
				}
			}
			for k := int64(0); k < rv; k++ {
				if f.GetTaskIx(v.Ix, uint32(k)) != core.UndefinedIx {
					// Already mapped by an earlier pass of this same
					// iteration (the static-firing copy-elision case,
					// §4.4 I1): no new Node needed.
					continue
				}
				executable, err := isExecutable(v, k, f)
				if err != nil {
					return err
				}
				n := &scheduler.Node{
					Vertex:     v,
					FiringIx:   uint32(k),
					RTInfo:     v.RTInfo,
					Scope:      f,
					Handler:    f,
					Executable: executable,
				}
				index[nodeKey{f, v.Ix, k}] = len(*nodes)
				*nodes = append(*nodes, n)
			}
		}
	}
	return nil
}

// isExecutable reports whether every input port of vertex's k-th firing
// within f already has a fully resolved dependency list; a negative
// ComputeExecDependencyCount means some upstream GRAPH firing hasn't
// resolved yet, and the node must be seeded non-executable so List
// pushes it (and anything depending on it) to the back (§4.6).
func isExecutable(v *pisdf.Vertex, k int64, f *firing.GraphFiring) (bool, error) {
	for p := range v.InputPorts {
		count, err := dependency.ComputeExecDependencyCount(v, uint32(k), p, f)
		if err != nil {
			return false, err
		}
		if count < 0 {
			return false, nil
		}
	}
	return true, nil
}

// linkSuccessors connects each Node to the Nodes of every vertex its
// non-null-rate output edges feed, within the same GraphFiring. A
// successor on the far side of a hierarchy boundary (through an
// INPUT_IF/OUTPUT_IF/GRAPH vertex, none of which get a Node of their
// own) is not linked: the scheduler's level computation is a placement
// heuristic, not a correctness mechanism, so this slightly undercounts
// the true critical path across subgraph boundaries without affecting
// the dependency resolver or FIFO allocator, which do track it exactly.
func linkSuccessors(nodes []*scheduler.Node, index map[nodeKey]int) {
	for _, n := range nodes {
		g := n.Handler.Handler.Graph
		for _, op := range n.Vertex.OutputPorts {
			if op.EdgeIx < 0 {
				continue
			}
			e := g.Edge(op.EdgeIx)
			snkVertex := g.Vertex(e.Sink.VertexIx)
			if snkVertex.Type == core.VertexGraph || snkVertex.IsInterface() || snkVertex.Type == core.VertexDelay {
				continue
			}
			snkRate, err := n.Handler.GetSnkRate(e.Ix)
			if err != nil || snkRate == 0 {
				continue
			}
			rv, err := n.Handler.GetRV(snkVertex.Ix)
			if err != nil {
				continue
			}
			for k := int64(0); k < rv; k++ {
				if succIx, ok := index[nodeKey{n.Handler, snkVertex.Ix, k}]; ok {
					n.Successors = append(n.Successors, succIx)
				}
			}
		}
	}
}
