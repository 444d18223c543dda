// Package pisdf implements the PiSDF data model (§3): vertices, edges,
// delays and the hierarchical graph structure the srless runtime core
// operates on. Construction (the expression parser, the graph builder API)
// is an external collaborator (§1); this package only holds the resolved
// structure a built graph would already have.
package pisdf

import "github.com/preesm/spider2/internal/core"

// Port is a named attachment point on a Vertex. The port itself carries no
// rate; the rate lives on the Edge incident to it (§3).
type Port struct {
	Ix      int
	Name    string
	EdgeIx  int // index into the owning Graph's Edges slice, -1 if unconnected
}

// Vertex is one PiSDF actor, tagged by VertexType (§3). The original's
// per-subtype class hierarchy (ExecVertex, ForkVertex, JoinVertex, ...) is
// replaced by this single sum type plus per-subtype dispatch tables in
// fifo.BuildAllocationRules and launcher.BuildInputParams (§9).
type Vertex struct {
	Ix   int
	Name string
	Type core.VertexType

	InputPorts  []Port
	OutputPorts []Port

	RTInfo *RTInfo

	// SubgraphIx indexes into the owning Graph's Subgraphs for a
	// VertexGraph vertex, -1 otherwise.
	SubgraphIx int

	// InterfaceIx is this vertex's position among same-direction
	// interface vertices of its graph (VertexInputInterface /
	// VertexOutputInterface only), used to match it against the
	// corresponding port of the GRAPH vertex in the parent graph.
	InterfaceIx int

	// DelayIx indexes into the owning Graph's Delays for a VertexInit /
	// VertexEnd vertex (the INIT/END pair materialising a Delay), -1
	// otherwise.
	DelayIx int

	// ConfigOutputParams names, per output port index, the graph parameter
	// a VertexConfig actor's output resolves into (§4.2). Empty for every
	// other vertex type; empty string at an index means that output port
	// feeds ordinary data rather than a parameter.
	ConfigOutputParams []string
}

// NewVertex builds a Vertex with the given number of input/output ports,
// all initially unconnected.
func NewVertex(ix int, name string, vtype core.VertexType, inPorts, outPorts int) *Vertex {
	v := &Vertex{
		Ix:          ix,
		Name:        name,
		Type:        vtype,
		InputPorts:  make([]Port, inPorts),
		OutputPorts: make([]Port, outPorts),
		SubgraphIx:  -1,
		InterfaceIx: -1,
		DelayIx:     -1,
	}
	for i := range v.InputPorts {
		v.InputPorts[i] = Port{Ix: i, EdgeIx: -1}
	}
	for i := range v.OutputPorts {
		v.OutputPorts[i] = Port{Ix: i, EdgeIx: -1}
	}
	return v
}

// RequiresSingleFiring reports the subtypes the spec pins to rv=1 (§4.4):
// CONFIG actors and the DELAY/INIT/END/EXTERN_IN/EXTERN_OUT family.
func (v *Vertex) RequiresSingleFiring() bool {
	switch v.Type {
	case core.VertexConfig, core.VertexDelay, core.VertexInit, core.VertexEnd, core.VertexExternIn, core.VertexExternOut:
		return true
	default:
		return false
	}
}

// IsHierarchical reports whether this vertex has its own GraphFiring tree
// (i.e. it is a VertexGraph).
func (v *Vertex) IsHierarchical() bool {
	return v.Type == core.VertexGraph
}

// IsInterface reports whether this vertex is an INPUT_IF or OUTPUT_IF.
func (v *Vertex) IsInterface() bool {
	return v.Type == core.VertexInputInterface || v.Type == core.VertexOutputInterface
}
