package scheduler

import (
	"math"
	"sort"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/platform"
)

// List orders nodes by descending critical-path level, with the
// non-executable ones and their direct successors pushed to the back
// (§4.6). It mutates nodes in place and returns the count of trailing
// non-schedulable entries.
func List(nodes []*Node, plat *platform.Platform) (int, error) {
	for _, n := range nodes {
		n.levelComputed = false
		n.nonSchedulable = false
	}
	for _, n := range nodes {
		if _, err := computeLevel(n, nodes, plat); err != nil {
			return 0, err
		}
	}
	sortNodes(nodes)
	return countNonSchedulable(nodes), nil
}

func computeLevel(n *Node, nodes []*Node, plat *platform.Platform) (int64, error) {
	if n.levelComputed {
		return n.level, nil
	}
	if !n.Executable {
		n.nonSchedulable = true
		n.level = NonSchedulableLevel
		n.levelComputed = true
		for _, succIx := range n.Successors {
			nodes[succIx].nonSchedulable = true
			if _, err := computeLevel(nodes[succIx], nodes, plat); err != nil {
				return 0, err
			}
		}
		return n.level, nil
	}

	minExecTime, err := minExecutionTime(n, plat)
	if err != nil {
		return 0, err
	}

	var level int64
	for _, succIx := range n.Successors {
		succ := nodes[succIx]
		if !succ.Executable {
			continue
		}
		succLevel, err := computeLevel(succ, nodes, plat)
		if err != nil {
			return 0, err
		}
		if succLevel == NonSchedulableLevel {
			continue
		}
		if candidate := succLevel + minExecTime; candidate > level {
			level = candidate
		}
	}
	n.level = level
	n.levelComputed = true
	return level, nil
}

func minExecutionTime(n *Node, plat *platform.Platform) (int64, error) {
	if n.RTInfo == nil {
		return 0, nil
	}
	min := int64(math.MaxInt64)
	found := false
	for _, pe := range plat.PEArray() {
		if !n.RTInfo.IsMappableOnPE(pe.Ix, pe.HWTypeIx) {
			continue
		}
		t, err := n.RTInfo.Timing(pe.HWTypeIx, n.Scope)
		if err != nil {
			return 0, err
		}
		if t <= 0 {
			return 0, core.NewError(core.ErrUnmappableTask, "vertex has null execution time on mappable PE", "vertex", n.Vertex.Name, "pe", pe.Ix)
		}
		if t < min {
			min = t
			found = true
		}
	}
	if !found {
		return 0, core.NewError(core.ErrUnmappableTask, "vertex has no mappable PE", "vertex", n.Vertex.Name)
	}
	return min, nil
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.nonSchedulable != b.nonSchedulable {
			return !a.nonSchedulable
		}
		if a.level != b.level {
			return a.level > b.level
		}
		if a.Vertex.Type == core.VertexInit && b.Vertex.Type != core.VertexInit {
			return true
		}
		if b.Vertex.Type == core.VertexEnd && a.Vertex.Type != core.VertexEnd {
			return true
		}
		return a.Vertex.Name > b.Vertex.Name
	})
}

func countNonSchedulable(nodes []*Node) int {
	count := 0
	for i := len(nodes) - 1; i >= 0; i-- {
		if !nodes[i].nonSchedulable {
			break
		}
		count++
	}
	return count
}
