// Package platform models the read-only hardware platform a schedule is
// computed against (§4.3): processing elements, clusters, hardware types
// and the inter-cluster memory buses used to cost cross-cluster
// communication.
package platform

import "math"

// NoRoute is returned by DataCommunicationCostPEToPE when no memory bus
// connects the two PEs' clusters.
const NoRoute uint64 = math.MaxUint64

// HWType is one hardware architecture a kernel may have a timing template
// bound to (e.g. "x86", "arm-cortex-a53", "dsp").
type HWType struct {
	Ix   int
	Name string
}

// PE is one schedulable processing element.
type PE struct {
	Ix        int
	Name      string
	ClusterIx int
	HWTypeIx  int
	LRTIx     int // which LRT thread drains this PE's job queue
}

// Cluster is a set of PEs sharing a memory interface.
type Cluster struct {
	Ix   int
	Name string
	PEIx []int
}

// MemoryBus is a directional inter-cluster communication channel with an
// affine cost model: cost(bytes) = Fixed + PerByte*bytes.
type MemoryBus struct {
	FromCluster int
	ToCluster   int
	Fixed       uint64
	PerByte     uint64
}

func (b MemoryBus) Cost(bytes int64) uint64 {
	if bytes < 0 {
		bytes = 0
	}
	return b.Fixed + b.PerByte*uint64(bytes)
}

// Platform is the immutable context threaded explicitly through the top
// level driver call and every component that needs hardware facts,
// replacing the original's `archi::platform` global singleton (§9).
type Platform struct {
	pes      []PE
	clusters []Cluster
	hwTypes  []HWType
	lrtCount int
	buses    map[busKey]MemoryBus
}

type busKey struct{ from, to int }

// New builds a Platform from already-resolved PEs, clusters, hardware
// types and buses. Use Load to build one from a platform description file.
func New(pes []PE, clusters []Cluster, hwTypes []HWType, lrtCount int, buses []MemoryBus) *Platform {
	p := &Platform{
		pes:      pes,
		clusters: clusters,
		hwTypes:  hwTypes,
		lrtCount: lrtCount,
		buses:    make(map[busKey]MemoryBus, len(buses)),
	}
	for _, b := range buses {
		p.buses[busKey{b.FromCluster, b.ToCluster}] = b
	}
	return p
}

func (p *Platform) PEArray() []PE      { return p.pes }
func (p *Platform) PECount() int       { return len(p.pes) }
func (p *Platform) ClusterCount() int  { return len(p.clusters) }
func (p *Platform) LRTCount() int      { return p.lrtCount }
func (p *Platform) HWTypeCount() int   { return len(p.hwTypes) }
func (p *Platform) Clusters() []Cluster { return p.clusters }
func (p *Platform) HWTypes() []HWType  { return p.hwTypes }

func (p *Platform) PE(ix int) PE {
	return p.pes[ix]
}

// DataCommunicationCostPEToPE returns 0 if peA and peB share a cluster, the
// inter-memory-bus cost otherwise, or NoRoute if no bus connects the two
// clusters. The relation is non-commutative: a bus A->B need not imply one
// exists B->A.
func (p *Platform) DataCommunicationCostPEToPE(peA, peB int, bytes int64) uint64 {
	a, b := p.pes[peA], p.pes[peB]
	if a.ClusterIx == b.ClusterIx {
		return 0
	}
	bus, ok := p.GetClusterToClusterMemoryBus(a.ClusterIx, b.ClusterIx)
	if !ok {
		return NoRoute
	}
	return bus.Cost(bytes)
}

// GetClusterToClusterMemoryBus looks up the directional bus from cluster A
// to cluster B.
func (p *Platform) GetClusterToClusterMemoryBus(a, b int) (MemoryBus, bool) {
	bus, ok := p.buses[busKey{a, b}]
	return bus, ok
}
