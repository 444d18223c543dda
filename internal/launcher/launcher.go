// Package launcher implements the TaskLauncher (§4.10): it turns a mapped
// Task plus its vertex and resolved FIFOs into a JobMessage and dispatches
// it to the owning LRT's queue, tracking the DELAYED-BROADCAST follow-up
// notification for tasks sent before every synchronous producer's
// jobExecIx was known.
package launcher

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/fifo"
	"github.com/preesm/spider2/internal/pisdf"
	"github.com/preesm/spider2/internal/schedule"
)

// ExecPolicy names the dispatch policy (§4.10). The runtime driver maps
// and launches each task in turn under either policy, and TaskLauncher
// never reads Policy or sets JobMessage.Delayed, so JIT and Delayed
// dispatch identically and no DELAYED-BROADCAST follow-up is ever queued.
type ExecPolicy uint8

const (
	JIT ExecPolicy = iota
	Delayed
)

// Dispatcher delivers a built JobMessage to one LRT's queue, and carries
// the DELAYED-BROADCAST follow-up notification (§4.10, §5). Implemented
// by internal/runtime over the notification-queue fabric.
type Dispatcher interface {
	Dispatch(lrtIx int, msg JobMessage) error
	NotifyJobDelayBroadcastJobstamp(lrtIx, taskIx int) error
}

type pendingBroadcast struct {
	lrtIx  int
	taskIx int
}

// TaskLauncher builds and dispatches JobMessages for mapped tasks.
type TaskLauncher struct {
	Policy     ExecPolicy
	Dispatcher Dispatcher

	pending []pendingBroadcast
}

func New(policy ExecPolicy, d Dispatcher) *TaskLauncher {
	return &TaskLauncher{Policy: policy, Dispatcher: d}
}

// BuildJobMessage assembles the wire message for t, evaluating v's
// subtype-specific input parameters and reading its sync constraints and
// notify flags off t (already populated by the Mapper).
func (l *TaskLauncher) BuildJobMessage(g *pisdf.Graph, v *pisdf.Vertex, t *schedule.Task, scope expr.Scope, refinementParams []int64, tf *fifo.TaskFifos) (JobMessage, error) {
	params, err := BuildInputParams(g, v, scope, refinementParams)
	if err != nil {
		return JobMessage{}, err
	}

	msg := JobMessage{
		TaskIx:       t.Ix,
		VertexIx:     t.VertexIx,
		JobExecIx:    t.JobExecIx,
		LRTsToNotify: append([]bool(nil), t.NotifyFlags...),
		InputParams:  params,
	}
	if v.RTInfo != nil {
		msg.KernelIx = v.RTInfo.KernelIx
	}
	msg.IsConfigActor = v.Type == core.VertexConfig
	if tf != nil {
		msg.InputFifos = tf.Input
		msg.OutputFifos = tf.Output
	}
	for lrtIx, encoded := range t.SyncExecIxOnLRT {
		if encoded > 0 {
			msg.JobsToWait = append(msg.JobsToWait, JobConstraint{LRTIx: lrtIx, JobExecIx: encoded - 1})
		}
	}
	return msg, nil
}

// Launch dispatches msg to lrtIx's queue and records a DELAYED-BROADCAST
// follow-up if msg was sent before its producers' jobExecIx were final.
func (l *TaskLauncher) Launch(lrtIx int, msg JobMessage) error {
	if err := l.Dispatcher.Dispatch(lrtIx, msg); err != nil {
		return core.Wrap(core.ErrUnmappableTask, "failed to dispatch job message", err, "task", msg.TaskIx, "lrt", lrtIx)
	}
	if msg.Delayed {
		l.pending = append(l.pending, pendingBroadcast{lrtIx: lrtIx, taskIx: msg.TaskIx})
	}
	return nil
}

// FlushDelayedBroadcasts sends the JOB_DELAY_BROADCAST_JOBSTAMP
// notification for every task launched with Delayed set since the last
// flush, then clears the pending list.
func (l *TaskLauncher) FlushDelayedBroadcasts() error {
	for _, p := range l.pending {
		if err := l.Dispatcher.NotifyJobDelayBroadcastJobstamp(p.lrtIx, p.taskIx); err != nil {
			return err
		}
	}
	l.pending = nil
	return nil
}
