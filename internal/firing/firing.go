package firing

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/param"
	"github.com/preesm/spider2/internal/pisdf"
)

// GraphFiring is the per-firing runtime state for one execution of a
// pisdf.Graph (§3): resolved parameter values, the repetition vector, a
// child GraphHandler per hierarchical vertex, and the schedule task index
// assigned to each of its own vertices.
//
// Parent is a non-owning back-reference used only to resolve Inherited
// parameters and to cross up into the enclosing firing during dependency
// resolution (§4.5 case INPUT_IF). The owning direction is strictly
// top-down: a GraphHandler owns its GraphFiring slice, and a GraphFiring
// owns the child GraphHandlers it creates for its VertexGraph vertices.
// Parent never participates in ownership, so the tree cannot cycle.
type GraphFiring struct {
	Handler  *GraphHandler
	FiringIx int
	Parent   *GraphFiring

	rv map[int]int64

	// children[vertexIx] is the child GraphHandler for the VertexGraph
	// vertex at that index, lazily created on first ResolveChild call.
	children map[int]*GraphHandler

	// taskIx is keyed by (vertexIx, vertex-local firingIx): a vertex with
	// repetition count > 1 fires multiple times within this single
	// GraphFiring, each needing its own schedule task index.
	taskIx      map[taskKey]uint32
	edgeAddress map[int]int64
}

type taskKey struct {
	vertexIx int
	firingIx uint32
}

func newGraphFiring(h *GraphHandler, firingIx int, parent *GraphFiring) *GraphFiring {
	return &GraphFiring{
		Handler:     h,
		FiringIx:    firingIx,
		Parent:      parent,
		children:    make(map[int]*GraphHandler),
		taskIx:      make(map[taskKey]uint32),
		edgeAddress: make(map[int]int64),
	}
}

// resolve propagates Inherited parameters from Parent and computes the
// repetition vector. Called once by GraphHandler.ResolveFiring.
func (f *GraphFiring) resolve() error {
	for _, p := range f.Handler.Graph.Params {
		if p.Type() != param.Inherited || p.IsResolved() {
			continue
		}
		if f.Parent == nil {
			return core.NewError(core.ErrRateExprBadParam, "inherited parameter has no parent firing to resolve against", "param", p.Name)
		}
		v, ok := f.Parent.ParamValue(p.ParentName())
		if !ok {
			return core.NewError(core.ErrRateExprBadParam, "inherited parameter not resolved in parent scope", "param", p.Name, "parent", p.ParentName())
		}
		if err := p.SetValue(v); err != nil {
			return err
		}
	}

	for _, p := range f.Handler.Graph.Params {
		if p.Type() == param.Dynamic && !p.IsResolved() {
			// Some CONFIG actor inside this graph hasn't executed yet;
			// ComputeBRV would fail evaluating any rate expression that
			// reaches this parameter. Leave f.rv nil rather than erroring
			// the whole firing: IsResolved reports "not yet" and the
			// caller (BuildNodes, the dependency resolver's GRAPH case)
			// retries once the CONFIG actor's result lands (§4.4, §4.5).
			return nil
		}
	}

	rv, err := ComputeBRV(f.Handler.Graph, f)
	if err != nil {
		return err
	}
	f.rv = rv
	return nil
}

// ParamValue implements expr.Scope / param.Scope: it resolves a parameter
// of this firing's own graph by name, lazily resolving Inherited and
// DynamicDependent parameters through recursive Value() calls.
func (f *GraphFiring) ParamValue(name string) (int64, bool) {
	ix, ok := f.Handler.Graph.ParamIx(name)
	if !ok {
		return 0, false
	}
	p := f.Handler.Graph.Params[ix]
	v, err := p.Value(f)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SetDynamicParamValue binds a Dynamic parameter's value once the CONFIG
// actor producing it has executed and drops any already-computed
// repetition vector. Once every Dynamic parameter of the graph is bound,
// it recomputes the vector against the new values, so IsResolved then
// reports the firing resolved.
func (f *GraphFiring) SetDynamicParamValue(name string, v int64) error {
	p, err := f.Handler.Graph.Param(name)
	if err != nil {
		return err
	}
	if err := p.SetValue(v); err != nil {
		return err
	}
	f.rv = nil
	for _, q := range f.Handler.Graph.Params {
		if q.Type() == param.Dynamic && !q.IsResolved() {
			return nil
		}
	}
	rv, err := ComputeBRV(f.Handler.Graph, f)
	if err != nil {
		return err
	}
	f.rv = rv
	return nil
}

// IsResolved reports whether every Dynamic parameter of this firing's
// graph has been bound and the repetition vector has been computed. A
// GraphFiring created by ResolveFiring but still waiting on a CONFIG
// actor's runtime output is not resolved; dependency resolution crossing
// into it must stop and report an unresolved dependency (§4.5).
func (f *GraphFiring) IsResolved() bool {
	if f.rv == nil {
		return false
	}
	for _, p := range f.Handler.Graph.Params {
		if p.Type() == param.Dynamic && !p.IsResolved() {
			return false
		}
	}
	return true
}

// GetRV returns the repetition count of vertexIx within this firing,
// recomputing the vector first if it was invalidated by a dynamic
// parameter update.
func (f *GraphFiring) GetRV(vertexIx int) (int64, error) {
	if f.rv == nil {
		rv, err := ComputeBRV(f.Handler.Graph, f)
		if err != nil {
			return 0, err
		}
		f.rv = rv
	}
	return f.rv[vertexIx], nil
}

// GetSrcRate evaluates an edge's production rate against this firing.
func (f *GraphFiring) GetSrcRate(edgeIx int) (int64, error) {
	return f.Handler.Graph.Edge(edgeIx).SourceRate(f)
}

// GetSnkRate evaluates an edge's consumption rate against this firing.
func (f *GraphFiring) GetSnkRate(edgeIx int) (int64, error) {
	return f.Handler.Graph.Edge(edgeIx).SinkRate(f)
}

// GetTaskIx returns the schedule task index assigned to (vertexIx,
// vertexFiringIx) within this firing, or core.UndefinedIx if none has been
// assigned yet.
func (f *GraphFiring) GetTaskIx(vertexIx int, vertexFiringIx uint32) uint32 {
	if ix, ok := f.taskIx[taskKey{vertexIx, vertexFiringIx}]; ok {
		return ix
	}
	return core.UndefinedIx
}

func (f *GraphFiring) SetTaskIx(vertexIx int, vertexFiringIx uint32, taskIx uint32) {
	f.taskIx[taskKey{vertexIx, vertexFiringIx}] = taskIx
}

// GetEdgeAddress / SetEdgeAddress record the FIFO base address the
// fifo.Allocator assigned to an edge within this firing.
func (f *GraphFiring) GetEdgeAddress(edgeIx int) (int64, bool) {
	a, ok := f.edgeAddress[edgeIx]
	return a, ok
}

func (f *GraphFiring) SetEdgeAddress(edgeIx int, address int64) {
	f.edgeAddress[edgeIx] = address
}

// ResolveChild returns (lazily creating) the GraphHandler for the
// VertexGraph vertex at vertexIx, owned by this firing.
func (f *GraphFiring) ResolveChild(vertexIx int) *GraphHandler {
	if h, ok := f.children[vertexIx]; ok {
		return h
	}
	childGraph := f.Handler.Graph.Subgraphs[vertexIx]
	h := NewGraphHandler(childGraph)
	h.OwnerVertexIx = vertexIx
	f.children[vertexIx] = h
	return h
}

// ChildFiring resolves the k-th firing of the child handler for
// vertexIx, with this firing as its parent.
func (f *GraphFiring) ChildFiring(vertexIx, k int) (*GraphFiring, error) {
	return f.ResolveChild(vertexIx).ResolveFiring(k, f)
}

// Clear resets this firing's per-iteration bookkeeping (task indices and
// edge addresses) without discarding its resolved parameters or
// repetition vector, for reuse across loop iterations of a static
// subgraph (§4.4 I1).
func (f *GraphFiring) Clear() {
	f.taskIx = make(map[taskKey]uint32)
	f.edgeAddress = make(map[int]int64)
}
