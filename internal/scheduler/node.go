// Package scheduler implements the List/Greedy scheduling policy (§4.6):
// given a flat set of ready vertex firings (already expanded from the
// GraphFiring tree and resolved against the dependency resolver), it
// orders them by descending critical-path level the way the original's
// ListScheduler does, leaving PE/time assignment to package mapper.
package scheduler

import (
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/firing"
	"github.com/preesm/spider2/internal/pisdf"
)

// NonSchedulableLevel marks a Node whose level computation hit an
// unexecutable vertex (e.g. a CONFIG actor still waiting on an unresolved
// parameter); it sorts last regardless of numeric level (§4.6).
const NonSchedulableLevel int64 = -314159265

// Node is one (vertex, firing) pair the scheduler must order. Successors
// references other Nodes' indices within the same slice connected by a
// non-null-rate output edge, used for level computation.
type Node struct {
	Vertex   *pisdf.Vertex
	FiringIx uint32

	// RTInfo/Scope let List evaluate the minimum execution time
	// of this node's mappable PEs; nil RTInfo (a CONFIG actor, say) is
	// timed as zero.
	RTInfo *pisdf.RTInfo
	Scope  expr.Scope

	// Handler is the GraphFiring that owns this (vertex, firing) pair,
	// letting the runtime driver recover the firing instance a sorted
	// Node came from (GetTaskIx/SetTaskIx, GetEdgeAddress, ChildFiring)
	// without threading a parallel lookup structure alongside List's
	// in-place sort.
	Handler *firing.GraphFiring

	// Successors are indices into the same []*Node slice for every
	// output edge of Vertex whose sink rate is non-zero.
	Successors []int

	// Executable is false for a vertex the runtime has determined
	// cannot run this iteration (see Vertex.RequiresSingleFiring callers
	// and unresolved dynamic dependencies); it seeds NonSchedulable.
	Executable bool

	level          int64
	levelComputed  bool
	nonSchedulable bool
}

func (n *Node) Level() int64          { return n.level }
func (n *Node) NonSchedulable() bool   { return n.nonSchedulable }
