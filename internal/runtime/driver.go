package runtime

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/dependency"
	"github.com/preesm/spider2/internal/eventbus"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/fifo"
	"github.com/preesm/spider2/internal/firing"
	"github.com/preesm/spider2/internal/launcher"
	"github.com/preesm/spider2/internal/log"
	"github.com/preesm/spider2/internal/mapper"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/preesm/spider2/internal/platform"
	"github.com/preesm/spider2/internal/schedule"
	"github.com/preesm/spider2/internal/scheduler"
)

// nodeOwner records which (GraphFiring, Vertex) a dispatched schedule.Task
// came from, so a ParameterMessage reporting a CONFIG actor's result can
// be routed back to the firing that must bind it (§4.2, §6).
type nodeOwner struct {
	handler *firing.GraphFiring
	vertex  *pisdf.Vertex
}

// Driver runs the GRT control-flow loop (§2): repeatedly flattening the
// firing tree into ready nodes, scheduling and mapping them, allocating
// their FIFOs and launching their jobs, until every vertex of the
// iteration has been mapped or no further progress is possible.
type Driver struct {
	Plat      *platform.Platform
	Root      *firing.GraphHandler
	Mapper    *mapper.Mapper
	Allocator *fifo.Allocator
	Launcher  *launcher.TaskLauncher
	Bus       *eventbus.Bus
	Pool      *Pool

	ExternAddr     fifo.ExternalAddress
	PersistentAddr fifo.PersistentAddress

	Sched *schedule.Schedule

	owners map[int]nodeOwner
}

// NewDriver wires the scheduling core components produced elsewhere into
// one control-flow loop. Pool must already have had Start called on it.
func NewDriver(plat *platform.Platform, root *firing.GraphHandler, m *mapper.Mapper, alloc *fifo.Allocator, l *launcher.TaskLauncher, bus *eventbus.Bus, pool *Pool, externAddr fifo.ExternalAddress, persistentAddr fifo.PersistentAddress) *Driver {
	return &Driver{
		Plat:           plat,
		Root:           root,
		Mapper:         m,
		Allocator:      alloc,
		Launcher:       l,
		Bus:            bus,
		Pool:           pool,
		ExternAddr:     externAddr,
		PersistentAddr: persistentAddr,
	}
}

// RunIteration computes and executes one full graph iteration: it resets
// every per-iteration structure, then alternates between flattening the
// firing tree (BuildNodes), ordering and mapping whatever is ready
// (scheduler.List + Mapper), and draining resolved CONFIG-actor
// parameters off the Bus to unblock the rest of the tree, until nothing
// further can be built. A round that can map nothing, while no jobs
// remain in flight to eventually unblock it, is reported as
// ErrDynamicTimeout (§4.4, §7).
func (d *Driver) RunIteration() error {
	d.Root.Clear()
	rootFiring, err := d.Root.ResolveFiring(0, nil)
	if err != nil {
		return err
	}

	d.Allocator.Clear()
	d.Pool.Reset()
	d.Sched = schedule.NewSchedule(d.Plat.PECount())
	d.Mapper.StartTimeFloor = 0
	d.owners = make(map[int]nodeOwner)

	inFlight := 0
	for {
		nodes, err := BuildNodes(rootFiring)
		if err != nil {
			return err
		}

		mapped := 0
		if len(nodes) > 0 {
			nonSched, err := scheduler.List(nodes, d.Plat)
			if err != nil {
				return err
			}
			runnable := nodes[:len(nodes)-nonSched]
			for _, n := range runnable {
				if err := d.mapAndLaunch(n); err != nil {
					return err
				}
				mapped++
				if n.Vertex.Type == core.VertexConfig {
					inFlight++
				}
			}
			if err := d.Launcher.FlushDelayedBroadcasts(); err != nil {
				return err
			}
		}

		if mapped > 0 {
			continue
		}

		if inFlight == 0 {
			if rootFiring.IsResolved() && everyVertexMapped(rootFiring) {
				return nil
			}
			return core.NewError(core.ErrDynamicTimeout, "iteration stalled with no in-flight config actors and no schedulable nodes")
		}

		msg := <-d.Bus.Params()
		inFlight--
		if err := d.applyParamResult(msg); err != nil {
			return err
		}
	}
}

// applyParamResult routes a CONFIG actor's resolved outputs back to the
// GraphFiring that owns it, one value per ConfigOutputParams entry (§4.2).
func (d *Driver) applyParamResult(msg eventbus.ParameterMessage) error {
	owner, ok := d.owners[msg.TaskIx]
	if !ok {
		return core.NewError(core.ErrUnhandledVertexType, "parameter report for unknown task", "task", msg.TaskIx)
	}
	for i, name := range owner.vertex.ConfigOutputParams {
		if name == "" || i >= len(msg.Params) {
			continue
		}
		if err := owner.handler.SetDynamicParamValue(name, msg.Params[i]); err != nil {
			return err
		}
	}
	return nil
}

// mapAndLaunch turns one scheduler.Node into a schedule.Task, maps it,
// resolves its FIFOs, builds its JobMessage and dispatches it.
func (d *Driver) mapAndLaunch(n *scheduler.Node) error {
	f := n.Handler
	graph := f.Handler.Graph
	v := n.Vertex

	t := schedule.NewTask(d.Sched.TaskCount(), v.Ix, n.FiringIx, 0)
	deps, totalDeps, err := d.buildDependencies(v, n.FiringIx, f)
	if err != nil {
		return err
	}
	t.Dependencies = deps
	d.Sched.AddTask(t)

	taskIx, err := d.Mapper.Map(d.Sched, t.Ix, n)
	if err != nil {
		return err
	}
	t = d.Sched.Task(taskIx)
	f.SetTaskIx(v.Ix, n.FiringIx, uint32(taskIx))
	d.owners[taskIx] = nodeOwner{handler: f, vertex: v}

	tf, err := d.allocateFifos(v, n.FiringIx, f, totalDeps)
	if err != nil {
		return err
	}

	refinement, err := refinementParams(graph, f)
	if err != nil {
		return err
	}
	msg, err := d.Launcher.BuildJobMessage(graph, v, t, f, refinement, tf)
	if err != nil {
		return err
	}
	log.GetLogger().WithField("vertex", v.Name).WithField("task", t.Ix).WithField("lrt", t.LRTIx).Debug("launching task")
	return d.Launcher.Launch(t.LRTIx, msg)
}

// refinementParams evaluates every parameter of v's owning graph against
// scope, in declaration order: the vector a NORMAL/CONFIG actor's
// refinement expects as its configuration input (§4.2, §6). A vertex's
// actual subset of visible parameters is a front-end binding concern;
// the scheduling core carries the whole resolved vector and lets the
// kernel pick what it needs by position.
func refinementParams(g *pisdf.Graph, scope expr.Scope) ([]int64, error) {
	out := make([]int64, len(g.Params))
	for i, p := range g.Params {
		v, err := p.Value(scope)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// buildDependencies resolves every input port's producer list into the
// schedule.TaskDependency slice the Mapper needs for communication
// costing, returning the per-port Dependency lists too so allocateFifos
// doesn't recompute them.
func (d *Driver) buildDependencies(v *pisdf.Vertex, firingIx uint32, f *firing.GraphFiring) ([]schedule.TaskDependency, [][]dependency.Dependency, error) {
	deps := make([][]dependency.Dependency, len(v.InputPorts))
	out := make([]schedule.TaskDependency, 0, len(v.InputPorts))
	for p := range v.InputPorts {
		pd, err := dependency.ComputeExecDependency(v, firingIx, p, f)
		if err != nil {
			return nil, nil, err
		}
		deps[p] = pd
		for _, dep := range pd {
			if dep.Unresolved {
				continue
			}
			taskIx := dep.Handler.GetTaskIx(dep.Vertex.Ix, uint32(dep.FiringFrom))
			if taskIx == core.UndefinedIx {
				continue
			}
			bytes := dep.Rate * (dep.FiringTo - dep.FiringFrom + 1)
			out = append(out, schedule.TaskDependency{TaskIx: int(taskIx), Bytes: bytes})
		}
	}
	return out, deps, nil
}

// allocateFifos resolves v's per-subtype allocation rules against its
// already-mapped task index and hands them to the Allocator.
func (d *Driver) allocateFifos(v *pisdf.Vertex, firingIx uint32, f *firing.GraphFiring, inputDeps [][]dependency.Dependency) (*fifo.TaskFifos, error) {
	rates := fifo.PortRates{
		Input:  make([]int64, len(v.InputPorts)),
		Output: make([]int64, len(v.OutputPorts)),
	}
	for p := range v.InputPorts {
		edge := f.Handler.Graph.InputEdge(v.Ix, p)
		r, err := f.GetSnkRate(edge.Ix)
		if err != nil {
			return nil, err
		}
		rates.Input[p] = r
	}
	for p := range v.OutputPorts {
		edge := f.Handler.Graph.OutputEdge(v.Ix, p)
		if edge == nil {
			continue
		}
		r, err := f.GetSrcRate(edge.Ix)
		if err != nil {
			return nil, err
		}
		rates.Output[p] = r
	}

	// consumerCount approximates "distinct consumer tasks reading this
	// output this iteration" as 1 if the port feeds a connected edge, 0
	// otherwise: the Allocator only uses it to seed a Fifo's refcount for
	// the NotifyMemUpdateCount bookkeeping this simulation doesn't model
	// (the Pool frees nothing), so an exact consumer census buys nothing
	// here.
	consumerCount := make([]int, len(v.OutputPorts))
	for p := range v.OutputPorts {
		if f.Handler.Graph.OutputEdge(v.Ix, p) != nil {
			consumerCount[p] = 1
		}
	}

	taskIx := f.GetTaskIx(v.Ix, firingIx)
	inputRules, outputRules, prevTask, err := fifo.BuildAllocationRules(v, rates, inputDeps, consumerCount, d.ExternAddr, d.PersistentAddr)
	if err != nil {
		return nil, err
	}
	return d.Allocator.Allocate(int(taskIx), inputRules, outputRules, prevTask)
}

// everyVertexMapped reports whether every non-structural vertex reachable
// from f (recursing into resolved child graphs) has a task assigned,
// meaning this iteration is genuinely complete rather than merely out of
// schedulable nodes.
func everyVertexMapped(f *firing.GraphFiring) bool {
	g := f.Handler.Graph
	for _, v := range g.Vertices {
		switch v.Type {
		case core.VertexInputInterface, core.VertexOutputInterface, core.VertexDelay:
			continue
		case core.VertexGraph:
			rv, err := f.GetRV(v.Ix)
			if err != nil {
				return false
			}
			for k := int64(0); k < rv; k++ {
				child, err := f.ChildFiring(v.Ix, int(k))
				if err != nil || !child.IsResolved() || !everyVertexMapped(child) {
					return false
				}
			}
		default:
			var rv int64 = 1
			if !v.RequiresSingleFiring() {
				var err error
				rv, err = f.GetRV(v.Ix)
				if err != nil {
					return false
				}
			}
			for k := int64(0); k < rv; k++ {
				if f.GetTaskIx(v.Ix, uint32(k)) == core.UndefinedIx {
					return false
				}
			}
		}
	}
	return true
}
