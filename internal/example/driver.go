package example

import (
	"github.com/preesm/spider2/internal/eventbus"
	"github.com/preesm/spider2/internal/fifo"
	"github.com/preesm/spider2/internal/firing"
	"github.com/preesm/spider2/internal/launcher"
	"github.com/preesm/spider2/internal/mapper"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/preesm/spider2/internal/runtime"
)

// noExternalAddress and noPersistentAddress back a Scenario with neither
// EXTERN_IN/OUT vertices nor persistent (setter/getter-less) delays: both
// demo graphs only use an explicit delay setter, never the platform's
// external-buffer registry.
func noExternalAddress(*pisdf.Vertex) int64 { return 0 }
func noPersistentAddress(int) (int64, bool) { return 0, false }

// NewDriver wires a fresh runtime.Driver around the scenario: one
// eventbus partition per LRT, a Pool executing this scenario's kernel
// registry against its own virtual address space, and the Mapper/
// Allocator/TaskLauncher combination the spec's control-flow loop
// expects (§2, §4.6-§4.10). The Pool the returned Driver dispatches to
// has already been started.
func (s *Scenario) NewDriver(mapperPolicy mapper.Policy, execPolicy launcher.ExecPolicy, queueSize int) *runtime.Driver {
	bus := eventbus.New(s.Platform.LRTCount(), queueSize)
	mem := runtime.NewMemory()
	pool := runtime.NewPool(bus, s.Kernels, mem, s.Platform.LRTCount())
	pool.Start()

	m := mapper.New(mapperPolicy, s.Platform)
	alloc := fifo.NewAllocator()
	l := launcher.New(execPolicy, pool)
	root := firing.NewGraphHandler(s.Graph)

	return runtime.NewDriver(s.Platform, root, m, alloc, l, bus, pool, noExternalAddress, noPersistentAddress)
}
