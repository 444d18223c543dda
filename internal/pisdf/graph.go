package pisdf

import (
	"fmt"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/param"
)

// Graph is one level of the PiSDF hierarchy: a flat set of vertices and
// edges, its own parameter table, and a Subgraphs slice holding one child
// Graph per VertexGraph vertex it contains (§3). The root Graph is the one
// firing.NewGraphHandler wraps as the runtime.Driver's root handler.
type Graph struct {
	Ix   int
	Name string

	Vertices []*Vertex
	Edges    []*Edge
	Delays   []*Delay
	Params   []*param.Parameter

	// Subgraphs[vertexIx] is the child Graph for the VertexGraph vertex
	// at that index, nil for every other vertex.
	Subgraphs []*Graph

	paramIx map[string]int
}

// NewGraph builds an empty graph ready for AddVertex/AddEdge/AddParam
// calls. Construction is an external collaborator's concern (§1); this is
// the minimal builder the test suite and any front-end need.
func NewGraph(ix int, name string) *Graph {
	return &Graph{
		Ix:      ix,
		Name:    name,
		paramIx: make(map[string]int),
	}
}

func (g *Graph) AddVertex(v *Vertex) *Vertex {
	v.Ix = len(g.Vertices)
	g.Vertices = append(g.Vertices, v)
	g.Subgraphs = append(g.Subgraphs, nil)
	return v
}

func (g *Graph) AddEdge(e *Edge) *Edge {
	e.Ix = len(g.Edges)
	g.Edges = append(g.Edges, e)
	g.Vertices[e.Source.VertexIx].OutputPorts[e.Source.PortIx].EdgeIx = e.Ix
	g.Vertices[e.Sink.VertexIx].InputPorts[e.Sink.PortIx].EdgeIx = e.Ix
	return e
}

func (g *Graph) AddDelay(d *Delay) *Delay {
	d.Ix = len(g.Delays)
	g.Delays = append(g.Delays, d)
	g.Edges[d.EdgeIx].DelayIx = d.Ix
	return d
}

func (g *Graph) AddParam(p *param.Parameter) *param.Parameter {
	g.paramIx[p.Name] = len(g.Params)
	g.Params = append(g.Params, p)
	return p
}

// SetSubgraph attaches child as the child graph of the VertexGraph vertex
// at vertexIx.
func (g *Graph) SetSubgraph(vertexIx int, child *Graph) {
	g.Vertices[vertexIx].SubgraphIx = vertexIx
	g.Subgraphs[vertexIx] = child
}

func (g *Graph) Vertex(ix int) *Vertex { return g.Vertices[ix] }
func (g *Graph) Edge(ix int) *Edge     { return g.Edges[ix] }
func (g *Graph) Delay(ix int) *Delay   { return g.Delays[ix] }

// ParamIx looks up a parameter's index by name within this graph's own
// table (it does not search ancestor scopes; that is firing.GraphFiring's
// job).
func (g *Graph) ParamIx(name string) (int, bool) {
	ix, ok := g.paramIx[name]
	return ix, ok
}

// Param looks up a parameter by name, returning an error matching the
// taxonomy used for bad rate-expression references.
func (g *Graph) Param(name string) (*param.Parameter, error) {
	ix, ok := g.paramIx[name]
	if !ok {
		return nil, core.NewError(core.ErrRateExprBadParam, "unknown parameter", "graph", g.Name, "param", name)
	}
	return g.Params[ix], nil
}

// InputEdge returns the edge connected to vertex's input port portIx, or
// nil if unconnected.
func (g *Graph) InputEdge(vertexIx, portIx int) *Edge {
	ix := g.Vertices[vertexIx].InputPorts[portIx].EdgeIx
	if ix < 0 {
		return nil
	}
	return g.Edges[ix]
}

// OutputEdge returns the edge connected to vertex's output port portIx, or
// nil if unconnected.
func (g *Graph) OutputEdge(vertexIx, portIx int) *Edge {
	ix := g.Vertices[vertexIx].OutputPorts[portIx].EdgeIx
	if ix < 0 {
		return nil
	}
	return g.Edges[ix]
}

// InterfaceVertices returns the vertices of the given direction
// (VertexInputInterface or VertexOutputInterface) in declaration order,
// as used when crossing hierarchy boundaries (§4.5 cases 3/4).
func (g *Graph) InterfaceVertices(direction core.VertexType) []*Vertex {
	var out []*Vertex
	for _, v := range g.Vertices {
		if v.Type == direction {
			out = append(out, v)
		}
	}
	return out
}

func (g *Graph) String() string {
	return fmt.Sprintf("Graph(%s, %d vertices, %d edges)", g.Name, len(g.Vertices), len(g.Edges))
}
