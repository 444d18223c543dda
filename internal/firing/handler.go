package firing

import (
	"github.com/preesm/spider2/internal/param"
	"github.com/preesm/spider2/internal/pisdf"
)

// GraphHandler owns every GraphFiring produced for one pisdf.Graph over
// the lifetime of the runtime. It holds the owning pointers down the
// hierarchy; a child GraphFiring holds a non-owning back-pointer to its
// parent firing (see Parent on GraphFiring) so the tree can never cycle
// back through an owning reference.
type GraphHandler struct {
	Graph *pisdf.Graph

	// IsStatic is true when none of Graph's own parameters are Dynamic
	// or DynamicDependent: its repetition vector is identical on every
	// iteration, so a single firing per declared repetition can be
	// computed once and reused (§4.4 I1) instead of recomputed each
	// iteration.
	IsStatic bool

	// OwnerVertexIx is the index, within the parent graph, of the
	// VertexGraph vertex this handler is the child of; -1 for the root
	// handler. Used by the dependency resolver to cross back up through
	// an INPUT_IF (§4.5).
	OwnerVertexIx int

	firings []*GraphFiring
}

// NewGraphHandler builds a root handler with no firings yet resolved.
func NewGraphHandler(g *pisdf.Graph) *GraphHandler {
	return &GraphHandler{Graph: g, IsStatic: isStaticGraph(g), OwnerVertexIx: -1}
}

func isStaticGraph(g *pisdf.Graph) bool {
	for _, p := range g.Params {
		switch p.Type() {
		case param.Dynamic, param.DynamicDependent:
			return false
		}
	}
	return true
}

// FiringCount returns how many firings have been materialised so far.
func (h *GraphHandler) FiringCount() int { return len(h.firings) }

// FiringAt returns the firing at index ix, or nil if it hasn't been
// resolved yet.
func (h *GraphHandler) FiringAt(ix int) *GraphFiring {
	if ix < 0 || ix >= len(h.firings) {
		return nil
	}
	return h.firings[ix]
}

// ResolveFiring materialises (or returns the already-materialised)
// GraphFiring at index firingIx, resolving its inherited/dependent
// parameters and repetition vector against parent. For a static handler,
// index 0 is built once and every other requested index returns the same
// firing (I1: static firings are never copied).
func (h *GraphHandler) ResolveFiring(firingIx int, parent *GraphFiring) (*GraphFiring, error) {
	if h.IsStatic {
		firingIx = 0
	}
	for len(h.firings) <= firingIx {
		h.firings = append(h.firings, nil)
	}
	if h.firings[firingIx] != nil {
		return h.firings[firingIx], nil
	}
	f := newGraphFiring(h, firingIx, parent)
	if err := f.resolve(); err != nil {
		return nil, err
	}
	h.firings[firingIx] = f
	return f, nil
}

// Clear drops every resolved firing, forcing the next ResolveFiring call
// to recompute parameters and repetition vectors from scratch. Used
// between dynamic iterations where a non-static handler's values may
// have changed (§4.4).
func (h *GraphHandler) Clear() {
	h.firings = nil
}
