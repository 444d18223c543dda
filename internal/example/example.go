// Package example builds small, fully-resolved PiSDF graphs and the
// platform/kernel bindings they need to actually run, for `cmd run` and
// the daemon's default workload. Building a graph from a file format is
// an external collaborator's concern (§1 of the scheduling-core spec);
// these are hand-assembled with the same pisdf builder calls the core
// packages' own tests use.
package example

import (
	"encoding/binary"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/kernel"
	"github.com/preesm/spider2/internal/param"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/preesm/spider2/internal/platform"
)

// Scenario bundles a PiSDF graph with the platform and kernel registry
// it was built against: a runtime.Driver needs all three to execute an
// iteration.
type Scenario struct {
	Name     string
	Graph    *pisdf.Graph
	Platform *platform.Platform
	Kernels  *kernel.Registry
}

// twoClusterPlatform returns a small, heterogeneous-looking platform: two
// PEs sharing cluster 0 (free communication) plus one PE on cluster 1
// reachable only across a costed memory bus, each PE driven by its own
// LRT, so a mapped graph exercises both BestFit/RoundRobin PE choice and
// cross-cluster SEND/RECEIVE insertion.
func twoClusterPlatform() *platform.Platform {
	return platform.New(
		[]platform.PE{
			{Ix: 0, Name: "pe0", ClusterIx: 0, HWTypeIx: 0, LRTIx: 0},
			{Ix: 1, Name: "pe1", ClusterIx: 0, HWTypeIx: 0, LRTIx: 1},
			{Ix: 2, Name: "pe2", ClusterIx: 1, HWTypeIx: 0, LRTIx: 2},
		},
		[]platform.Cluster{
			{Ix: 0, Name: "cluster0", PEIx: []int{0, 1}},
			{Ix: 1, Name: "cluster1", PEIx: []int{2}},
		},
		[]platform.HWType{{Ix: 0, Name: "cpu"}},
		3,
		[]platform.MemoryBus{
			{FromCluster: 0, ToCluster: 1, Fixed: 10, PerByte: 1},
			{FromCluster: 1, ToCluster: 0, Fixed: 10, PerByte: 1},
		},
	)
}

// bindEverywhere attaches an RTInfo to v making it mappable on every PE
// of plat with a flat timing estimate, and registers fn as its kernel.
func bindEverywhere(v *pisdf.Vertex, plat *platform.Platform, kernels *kernel.Registry, timing string, fn kernel.Func) {
	rt := pisdf.NewRTInfo(plat.PECount(), plat.HWTypeCount(), kernels.CreateRuntimeKernelForVertex(v.Name, fn))
	for hw := 0; hw < plat.HWTypeCount(); hw++ {
		rt.TimingExpr[hw] = expr.MustParse(timing)
	}
	for pe := 0; pe < plat.PECount(); pe++ {
		rt.Mappable[pe] = true
	}
	v.RTInfo = rt
}

// putInt64 writes v as the little-endian int64 a CONFIG actor's output
// buffer must carry for decodeParams to pick it back up (§4.2, §6).
func putInt64(buf []byte, v int64) {
	if len(buf) < 8 {
		return
	}
	binary.LittleEndian.PutUint64(buf[:8], uint64(v))
}

// fillPattern writes an incrementing byte pattern, the stand-in "data"
// this simulation's kernels produce and consume since no real decoder
// or sensor feeds them.
func fillPattern(buf []byte, seed byte) {
	for i := range buf {
		buf[i] = seed + byte(i)
	}
}
