package mapper

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/schedule"
)

// mapCommunications inserts a SEND/RECEIVE pair ahead of taskIx for every
// dependency whose producer PE lies in a different cluster than the
// candidate PE, rewiring the dependency to the inserted RECEIVE and
// pushing the consumer's window out if the RECEIVE finishes late (§4.8).
// It returns the consumer task's (possibly shifted) index and its final
// start/end time.
func (m *Mapper) mapCommunications(sched *schedule.Schedule, taskIx int, t *schedule.Task, chosen candidatePE) (int, int64, int64, error) {
	pe := m.Plat.PE(chosen.peIx)
	start, end := chosen.start, chosen.end

	for depIx := range t.Dependencies {
		dep := &t.Dependencies[depIx]
		producer := sched.Task(dep.TaskIx)
		producerPE := m.Plat.PE(producer.PEIx)
		if producerPE.ClusterIx == pe.ClusterIx {
			continue
		}

		rcvEndTime, newTaskIx, err := m.insertSendReceive(sched, taskIx, depIx, producer, producerPE.ClusterIx, pe.ClusterIx, dep.Bytes)
		if err != nil {
			return taskIx, 0, 0, err
		}
		shift := newTaskIx - taskIx
		taskIx = newTaskIx
		dep.TaskIx = taskIx - 1 // the inserted RECEIVE is immediately ahead of t
		if rcvEndTime > start {
			offset := rcvEndTime - start
			start += offset
			end += offset
		}
		_ = shift
	}
	return taskIx, start, end, nil
}

// insertSendReceive splices a SEND task (mapped in fromCluster) and a
// paired RECEIVE task (mapped in toCluster) immediately before beforeIx,
// returning the RECEIVE's end time and beforeIx's new value.
func (m *Mapper) insertSendReceive(sched *schedule.Schedule, beforeIx, depIx int, producer *schedule.Task, fromCluster, toCluster int, bytes int64) (int64, int, error) {
	sndBus, ok := m.Plat.GetClusterToClusterMemoryBus(fromCluster, toCluster)
	if !ok {
		return 0, beforeIx, core.NewError(core.ErrNoRoute, "no memory bus for SEND direction", "from", fromCluster, "to", toCluster)
	}
	rcvBus, ok := m.Plat.GetClusterToClusterMemoryBus(toCluster, fromCluster)
	if !ok {
		return 0, beforeIx, core.NewError(core.ErrNoRoute, "no memory bus for RECEIVE direction", "from", toCluster, "to", fromCluster)
	}

	sndPE, err := m.findPE(sched, fromCluster, producer.EndTime)
	if err != nil {
		return 0, beforeIx, err
	}
	sndStart := maxInt64(sched.Stats.EndTime(sndPE), producer.EndTime)
	sndEnd := sndStart + int64(sndBus.Cost(bytes))

	rcvPE, err := m.findPE(sched, toCluster, sndEnd)
	if err != nil {
		return 0, beforeIx, err
	}
	rcvStart := maxInt64(sched.Stats.EndTime(rcvPE), sndEnd)
	rcvEnd := rcvStart + int64(rcvBus.Cost(bytes))

	snd := schedule.NewSyncTask(0, schedule.TaskSend, depIx)
	rcv := schedule.NewSyncTask(0, schedule.TaskReceive, depIx)
	sched.InsertTasks(beforeIx, []*schedule.Task{snd, rcv})

	sched.MapTask(snd.Ix, sndPE, sndStart, sndEnd)
	snd.LRTIx = m.Plat.PE(sndPE).LRTIx
	snd.JobExecIx = sched.NextJobExecIx(snd.LRTIx)
	snd.Dependencies = []schedule.TaskDependency{{TaskIx: producer.Ix, Bytes: bytes}}

	sched.MapTask(rcv.Ix, rcvPE, rcvStart, rcvEnd)
	rcv.LRTIx = m.Plat.PE(rcvPE).LRTIx
	rcv.JobExecIx = sched.NextJobExecIx(rcv.LRTIx)
	rcv.Dependencies = []schedule.TaskDependency{{TaskIx: snd.Ix, Bytes: bytes}}

	return rcvEnd, beforeIx + 2, nil
}

// findPE picks, among the PEs of cluster, the one that can start the
// synchronization task earliest: whichever currently has the smallest
// end time, tie-broken by lowest index.
func (m *Mapper) findPE(sched *schedule.Schedule, cluster int, minStartTime int64) (int, error) {
	best := -1
	var bestEnd int64
	for _, pe := range m.Plat.PEArray() {
		if pe.ClusterIx != cluster {
			continue
		}
		end := sched.Stats.EndTime(pe.Ix)
		if end < minStartTime {
			end = minStartTime
		}
		if best < 0 || end < bestEnd || (end == bestEnd && pe.Ix < best) {
			best, bestEnd = pe.Ix, end
		}
	}
	if best < 0 {
		return 0, core.NewError(core.ErrUnmappableTask, "no processing element in cluster to host synchronization task", "cluster", cluster)
	}
	return best, nil
}

// recordSyncConstraints updates t's per-LRT wait constraints from its
// (possibly SEND/RECEIVE-rewired) dependencies, and clears any redundant
// notifyFlags a producer LRT already had set from an earlier dependency
// of t on the same LRT (§4.8). SyncExecIxOnLRT stores jobExecIx+1 so that
// 0 unambiguously means "no constraint on this LRT".
func (m *Mapper) recordSyncConstraints(sched *schedule.Schedule, t *schedule.Task) {
	bestPerLRT := make(map[int]*schedule.Task)
	for _, dep := range t.Dependencies {
		producer := sched.Task(dep.TaskIx)
		if producer.LRTIx == t.LRTIx {
			continue
		}
		producer.EnsureLRTSlots(m.Plat.LRTCount())
		if producer.JobExecIx+1 > t.SyncExecIxOnLRT[producer.LRTIx] {
			t.SyncExecIxOnLRT[producer.LRTIx] = producer.JobExecIx + 1
		}
		producer.NotifyFlags[t.LRTIx] = true
		if cur, ok := bestPerLRT[producer.LRTIx]; !ok || producer.JobExecIx > cur.JobExecIx {
			if ok {
				cur.NotifyFlags[t.LRTIx] = false
			}
			bestPerLRT[producer.LRTIx] = producer
		} else {
			producer.NotifyFlags[t.LRTIx] = false
		}
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
