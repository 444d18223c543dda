// Package schedule implements the scheduling output types (§4.9): one
// Task per mapped vertex firing, the Schedule collecting them per PE, and
// running Stats (load/idle/makespan per PE) updated as tasks are placed.
package schedule

import "github.com/preesm/spider2/internal/core"

// TaskDependency is one input port's producer-task reference, carrying
// the byte count the Mapper needs to cost cross-PE communication.
type TaskDependency struct {
	TaskIx int
	Bytes  int64
}

// TaskKind distinguishes an ordinary vertex firing from the SEND/RECEIVE
// synchronization tasks the Mapper splices in across cluster boundaries
// (§4.8).
type TaskKind uint8

const (
	TaskVertex TaskKind = iota
	TaskSend
	TaskReceive
)

// Task is one mapped firing of a vertex, or a SEND/RECEIVE synchronization
// between two PEs (§4.8).
type Task struct {
	Ix   int
	Kind TaskKind

	VertexIx  int
	FiringIx  uint32
	HandlerIx int // disambiguates which GraphHandler's firing this is, for hierarchical graphs

	PEIx      int
	LRTIx     int
	JobExecIx int64
	StartTime int64
	EndTime   int64

	State core.TaskState

	// Dependencies holds, per input port, the producing task and the
	// byte count this task consumes from it.
	Dependencies []TaskDependency

	// DepIx identifies, for a SEND/RECEIVE pair, which of the owning
	// vertex task's dependencies it serves.
	DepIx int

	// SyncExecIxOnLRT[lrtIx] is the highest jobExecIx this task must wait
	// for on lrtIx before it may run, or 0 if none.
	SyncExecIxOnLRT []int64

	// NotifyFlags[lrtIx] is true once this task's completion has been
	// signalled to lrtIx, used to elide redundant synchronization
	// messages for LRTs that already learned of it transitively (§4.8).
	NotifyFlags []bool
}

func NewTask(ix, vertexIx int, firingIx uint32, handlerIx int) *Task {
	return &Task{
		Ix:        ix,
		VertexIx:  vertexIx,
		FiringIx:  firingIx,
		HandlerIx: handlerIx,
		PEIx:      -1,
		LRTIx:     -1,
		State:     core.TaskNotSchedulable,
	}
}

// NewSyncTask builds a SEND or RECEIVE task carrying depIx back to the
// vertex task it synchronizes.
func NewSyncTask(ix int, kind TaskKind, depIx int) *Task {
	return &Task{
		Ix:    ix,
		Kind:  kind,
		DepIx: depIx,
		PEIx:  -1,
		LRTIx: -1,
		State: core.TaskNotSchedulable,
	}
}

func (t *Task) Duration() int64 { return t.EndTime - t.StartTime }

// IsMapped reports whether a PE has been assigned.
func (t *Task) IsMapped() bool { return t.PEIx >= 0 }

// EnsureLRTSlots grows SyncExecIxOnLRT and NotifyFlags to lrtCount
// entries, used once the platform's LRT count is known.
func (t *Task) EnsureLRTSlots(lrtCount int) {
	if len(t.SyncExecIxOnLRT) < lrtCount {
		grown := make([]int64, lrtCount)
		copy(grown, t.SyncExecIxOnLRT)
		t.SyncExecIxOnLRT = grown
	}
	if len(t.NotifyFlags) < lrtCount {
		grown := make([]bool, lrtCount)
		copy(grown, t.NotifyFlags)
		t.NotifyFlags = grown
	}
}
