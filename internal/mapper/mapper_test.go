package mapper

import (
	"testing"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/preesm/spider2/internal/platform"
	"github.com/preesm/spider2/internal/schedule"
	"github.com/preesm/spider2/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeWithCost(name, cost string) *scheduler.Node {
	v := pisdf.NewVertex(0, name, core.VertexNormal, 0, 0)
	rt := pisdf.NewRTInfo(4, 1, 0)
	for i := range rt.Mappable {
		rt.Mappable[i] = true
	}
	rt.TimingExpr[0] = expr.MustParse(cost)
	v.RTInfo = rt
	return &scheduler.Node{Vertex: v, RTInfo: rt, Scope: expr.MapScope{}, Executable: true}
}

func twoClusterPlatform() *platform.Platform {
	return platform.New(
		[]platform.PE{
			{Ix: 0, Name: "P0", ClusterIx: 0, HWTypeIx: 0, LRTIx: 0},
			{Ix: 1, Name: "P1", ClusterIx: 0, HWTypeIx: 0, LRTIx: 0},
			{Ix: 2, Name: "P2", ClusterIx: 1, HWTypeIx: 0, LRTIx: 1},
		},
		[]platform.Cluster{{Ix: 0, PEIx: []int{0, 1}}, {Ix: 1, PEIx: []int{2}}},
		[]platform.HWType{{Ix: 0, Name: "x86"}},
		2,
		[]platform.MemoryBus{
			{FromCluster: 0, ToCluster: 1, Fixed: 0, PerByte: 1},
			{FromCluster: 1, ToCluster: 0, Fixed: 0, PerByte: 1},
		},
	)
}

func TestBestFitPicksEarliestFinishingPE(t *testing.T) {
	plat := platform.New(
		[]platform.PE{{Ix: 0, ClusterIx: 0, HWTypeIx: 0, LRTIx: 0}, {Ix: 1, ClusterIx: 0, HWTypeIx: 0, LRTIx: 0}},
		[]platform.Cluster{{Ix: 0, PEIx: []int{0, 1}}},
		[]platform.HWType{{Ix: 0, Name: "x86"}},
		1, nil,
	)
	sched := schedule.NewSchedule(plat.PECount())
	sched.AddTask(schedule.NewTask(0, 0, 0, 0))
	sched.MapTask(0, 0, 0, 100) // occupy PE0 until t=100

	sched.AddTask(schedule.NewTask(0, 1, 0, 0))
	node := nodeWithCost("B", "10")
	m := New(BestFit, plat)
	ix, err := m.Map(sched, 1, node)
	require.NoError(t, err)

	mapped := sched.Task(ix)
	assert.Equal(t, 1, mapped.PEIx) // PE1 is free, finishes earlier than PE0
	assert.EqualValues(t, 0, mapped.StartTime)
	assert.EqualValues(t, 10, mapped.EndTime)
}

func TestRoundRobinWrapsFromLastPicked(t *testing.T) {
	plat := platform.New(
		[]platform.PE{{Ix: 0, ClusterIx: 0, HWTypeIx: 0, LRTIx: 0}, {Ix: 1, ClusterIx: 0, HWTypeIx: 0, LRTIx: 0}},
		[]platform.Cluster{{Ix: 0, PEIx: []int{0, 1}}},
		[]platform.HWType{{Ix: 0, Name: "x86"}},
		1, nil,
	)
	sched := schedule.NewSchedule(plat.PECount())
	m := New(RoundRobin, plat)

	sched.AddTask(schedule.NewTask(0, 0, 0, 0))
	ix0, err := m.Map(sched, 0, nodeWithCost("A", "5"))
	require.NoError(t, err)
	first := sched.Task(ix0).PEIx

	sched.AddTask(schedule.NewTask(0, 1, 0, 0))
	ix1, err := m.Map(sched, 1, nodeWithCost("B", "5"))
	require.NoError(t, err)
	second := sched.Task(ix1).PEIx

	assert.NotEqual(t, first, second)
}

func TestCrossClusterDependencyInsertsSendReceive(t *testing.T) {
	plat := twoClusterPlatform()
	sched := schedule.NewSchedule(plat.PECount())

	sched.AddTask(schedule.NewTask(0, 0, 0, 0))
	producerNode := nodeWithCost("Producer", "10")
	m := New(BestFit, plat)
	prodIx, err := m.Map(sched, 0, producerNode)
	require.NoError(t, err)
	producer := sched.Task(prodIx)
	require.Equal(t, 0, plat.PE(producer.PEIx).ClusterIx)

	consumerTask := schedule.NewTask(0, 1, 0, 0)
	consumerTask.Dependencies = []schedule.TaskDependency{{TaskIx: producer.Ix, Bytes: 8}}
	sched.AddTask(consumerTask)
	consumerTaskIx := consumerTask.Ix

	// Force the consumer onto the second cluster's only PE by giving it
	// timing only on that PE's hardware type... both clusters share the
	// same HWType here, so pin via RoundRobin-free BestFit: with only one
	// route and equal timing, BestFit naturally picks whichever PE
	// finishes first; cluster 1's single PE (P2) starts idle same as
	// cluster 0's free PE, so tie-break favors lower index (P0, same
	// cluster as producer). To exercise the cross-cluster path directly,
	// restrict mappability to PE2 only.
	consumerNode := nodeWithCost("Consumer", "10")
	for i := range consumerNode.RTInfo.Mappable {
		consumerNode.RTInfo.Mappable[i] = false
	}
	consumerNode.RTInfo.Mappable[2] = true

	newIx, err := m.Map(sched, consumerTaskIx, consumerNode)
	require.NoError(t, err)

	// Two synchronization tasks (SEND, RECEIVE) were spliced in ahead of
	// the consumer, shifting its index by 2.
	assert.Equal(t, consumerTaskIx+2, newIx)
	consumer := sched.Task(newIx)
	assert.Equal(t, 2, consumer.PEIx)

	snd := sched.Task(newIx - 2)
	rcv := sched.Task(newIx - 1)
	assert.Equal(t, schedule.TaskSend, snd.Kind)
	assert.Equal(t, schedule.TaskReceive, rcv.Kind)
	assert.Equal(t, producer.Ix, snd.Dependencies[0].TaskIx)
	assert.Equal(t, snd.Ix, rcv.Dependencies[0].TaskIx)
	assert.Equal(t, rcv.Ix, consumer.Dependencies[0].TaskIx)
	assert.GreaterOrEqual(t, consumer.StartTime, rcv.EndTime)
}
