// Package mapper implements the Mapper (§4.8): given a task ready to be
// placed (its dependencies already mapped), it picks a PE under the
// configured Policy, splices in SEND/RECEIVE synchronization tasks across
// cluster boundaries, and records the cross-LRT wait constraints the
// TaskLauncher later serializes into a JobMessage.
package mapper

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/platform"
	"github.com/preesm/spider2/internal/schedule"
	"github.com/preesm/spider2/internal/scheduler"
)

// Policy selects the PE-selection heuristic (§4.8).
type Policy uint8

const (
	BestFit Policy = iota
	RoundRobin
)

// Mapper places Nodes onto PEs one at a time, in the order the List
// scheduler already sorted them, mutating the Schedule it is given.
type Mapper struct {
	Policy Policy
	Plat   *platform.Platform

	// StartTimeFloor is the lower bound for every candidateStart, the
	// global minimum end-time of any PE at the start of this mapping
	// pass (§4.8).
	StartTimeFloor int64

	lastPicked int
}

func New(policy Policy, plat *platform.Platform) *Mapper {
	return &Mapper{Policy: policy, Plat: plat, lastPicked: -1}
}

type candidatePE struct {
	peIx            int
	start, end      int64
	externRecvBytes int64
}

// Map assigns node's task (must already be added to sched via AddTask,
// with Dependencies already pointing at mapped producer tasks) to a PE,
// inserting SEND/RECEIVE pairs ahead of it where a dependency crosses a
// cluster boundary. It returns the task's final index in sched, which
// shifts by however many synchronization tasks were spliced in front of
// it.
func (m *Mapper) Map(sched *schedule.Schedule, taskIx int, node *scheduler.Node) (int, error) {
	t := sched.Task(taskIx)

	candidates := make([]candidatePE, 0, m.Plat.PECount())
	for _, pe := range m.Plat.PEArray() {
		if node.RTInfo == nil || !node.RTInfo.IsMappableOnPE(pe.Ix, pe.HWTypeIx) {
			continue
		}
		c, err := m.evaluate(sched, t, node, pe.Ix)
		if err != nil {
			return taskIx, err
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return taskIx, core.NewError(core.ErrUnmappableTask, "no processing element satisfies mapping constraints", "vertex", node.Vertex.Name)
	}

	var chosen candidatePE
	switch m.Policy {
	case RoundRobin:
		chosen = m.pickRoundRobin(candidates)
	default:
		chosen = m.pickBestFit(candidates)
	}
	m.lastPicked = chosen.peIx

	newTaskIx, start, end, err := m.mapCommunications(sched, taskIx, t, chosen)
	if err != nil {
		return taskIx, err
	}

	pe := m.Plat.PE(chosen.peIx)
	sched.MapTask(newTaskIx, chosen.peIx, start, end)
	t.LRTIx = pe.LRTIx
	t.JobExecIx = sched.NextJobExecIx(pe.LRTIx)
	t.EnsureLRTSlots(m.Plat.LRTCount())

	m.recordSyncConstraints(sched, t)
	return newTaskIx, nil
}

func (m *Mapper) evaluate(sched *schedule.Schedule, t *schedule.Task, node *scheduler.Node, peIx int) (candidatePE, error) {
	pe := m.Plat.PE(peIx)
	timing, err := node.RTInfo.Timing(pe.HWTypeIx, node.Scope)
	if err != nil {
		return candidatePE{}, err
	}

	ready := sched.Stats.EndTime(peIx)
	if m.StartTimeFloor > ready {
		ready = m.StartTimeFloor
	}

	var depReady int64
	var commCost uint64
	var externBytes int64
	for _, dep := range t.Dependencies {
		producer := sched.Task(dep.TaskIx)
		if producer.EndTime > depReady {
			depReady = producer.EndTime
		}
		cost := m.Plat.DataCommunicationCostPEToPE(producer.PEIx, peIx, dep.Bytes)
		if cost == platform.NoRoute {
			return candidatePE{}, core.NewError(core.ErrNoRoute, "no memory bus between producer and candidate PE's clusters", "producerPE", producer.PEIx, "candidatePE", peIx)
		}
		commCost += cost
		if m.Plat.PE(producer.PEIx).ClusterIx != pe.ClusterIx {
			externBytes += dep.Bytes
		}
	}

	start := depReady + int64(commCost)
	if ready > start {
		start = ready
	}
	return candidatePE{peIx: peIx, start: start, end: start + timing, externRecvBytes: externBytes}, nil
}

func (m *Mapper) pickBestFit(candidates []candidatePE) candidatePE {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.end < best.end ||
			(c.end == best.end && c.externRecvBytes < best.externRecvBytes) ||
			(c.end == best.end && c.externRecvBytes == best.externRecvBytes && c.peIx < best.peIx) {
			best = c
		}
	}
	return best
}

func (m *Mapper) pickRoundRobin(candidates []candidatePE) candidatePE {
	best := candidates[0]
	bestDist := wrapDistance(m.lastPicked, candidates[0].peIx, m.Plat.PECount())
	for _, c := range candidates[1:] {
		d := wrapDistance(m.lastPicked, c.peIx, m.Plat.PECount())
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// wrapDistance is how many PE indices forward from last (wrapping past
// PECount) one must step to reach candidate.
func wrapDistance(last, candidate, peCount int) int {
	if last < 0 {
		return candidate
	}
	d := candidate - last
	if d <= 0 {
		d += peCount
	}
	return d
}
