package runtime

import (
	"encoding/binary"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/tevino/abool"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/eventbus"
	"github.com/preesm/spider2/internal/kernel"
	"github.com/preesm/spider2/internal/launcher"
	"github.com/preesm/spider2/internal/log"
)

// delayBroadcast is the DELAYED-BROADCAST follow-up job a TaskLauncher
// sends once a task launched under the Delayed policy had its producers'
// jobExecIx finalised (§4.10). It carries no work of its own in this
// single-process simulation; completed[] is already current by the time
// the real job ran, so it exists only to give a concrete hook other
// LRTs' waiters could observe if the constraint model ever needed it.
type delayBroadcast struct {
	taskIx int
}

// Pool is the simulated LRT thread pool (§5): the eventbus's per-LRT
// partition goroutines call its job handler, executing kernels through the
// kernel.Registry against byte buffers resolved from a Memory, and
// reporting results back to the driver over the Bus's notification and
// parameter channels. It implements launcher.Dispatcher.
type Pool struct {
	bus      *eventbus.Bus
	kernels  *kernel.Registry
	mem      *Memory
	lrtCount int

	mu        sync.Mutex
	cond      *sync.Cond
	completed []int64 // completed[lrtIx] = highest JobExecIx finished there, -1 if none

	started *abool.AtomicBool
}

// NewPool builds a Pool over lrtCount simulated LRTs, none of them
// running yet until Start is called.
func NewPool(bus *eventbus.Bus, kernels *kernel.Registry, mem *Memory, lrtCount int) *Pool {
	p := &Pool{
		bus:       bus,
		kernels:   kernels,
		mem:       mem,
		lrtCount:  lrtCount,
		completed: make([]int64, lrtCount),
		started:   abool.New(),
	}
	for i := range p.completed {
		p.completed[i] = -1
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start binds the Bus's job handler to this pool, spinning up the
// per-LRT partition goroutines the Bus itself owns (§5). Calling it more
// than once is a no-op.
func (p *Pool) Start() {
	if !p.started.SetToIf(false, true) {
		return
	}
	p.bus.SetHandler(p.handleJob)
}

// Dispatch implements launcher.Dispatcher: it hands msg to lrtIx's
// partition, preserving per-LRT job ordering (O1, §5).
func (p *Pool) Dispatch(lrtIx int, msg launcher.JobMessage) error {
	return p.bus.Enqueue(lrtIx, msg)
}

// NotifyJobDelayBroadcastJobstamp implements launcher.Dispatcher for the
// DELAYED policy's follow-up notification (§4.10).
func (p *Pool) NotifyJobDelayBroadcastJobstamp(lrtIx, taskIx int) error {
	return p.bus.Enqueue(lrtIx, delayBroadcast{taskIx: taskIx})
}

// Reset clears the completed-jobExecIx bookkeeping for a fresh run,
// without touching backing memory (the caller resets Memory separately
// since persistent delays must survive across a call to Reset that only
// concerns synchronization state).
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.completed {
		p.completed[i] = -1
	}
}

func (p *Pool) handleJob(lrtIx int, job any) error {
	switch j := job.(type) {
	case launcher.JobMessage:
		return p.execute(lrtIx, j)
	case delayBroadcast:
		log.GetLogger().WithField("lrt", lrtIx).WithField("task", j.taskIx).Debug("delayed broadcast jobstamp")
		return nil
	default:
		return core.NewError(core.ErrLRTFault, "lrt received a job of unknown type")
	}
}

// execute runs one JobMessage's kernel after waiting on its cross-LRT
// constraints (O3, §5), then publishes its outputs: a ParameterMessage
// for a CONFIG actor's resolved output, and wakes any LRT waiting on
// this job's jobExecIx.
func (p *Pool) execute(lrtIx int, msg launcher.JobMessage) error {
	p.waitFor(msg.JobsToWait)

	fn, err := p.kernels.Lookup(msg.KernelIx)
	if err != nil {
		p.bus.Notify(eventbus.Notification{Type: core.NotifyLRTError, Sender: lrtIx, Ix: msg.TaskIx, Payload: err})
		return err
	}

	inputs := make([][]byte, len(msg.InputFifos))
	for i, f := range msg.InputFifos {
		inputs[i] = p.mem.Slice(f.VirtualAddress, f.Offset, f.Size)
	}
	outputs := make([][]byte, len(msg.OutputFifos))
	for i, f := range msg.OutputFifos {
		outputs[i] = p.mem.Slice(f.VirtualAddress, f.Offset, f.Size)
	}

	ctx := kernel.Context{
		VertexName: p.kernels.Name(msg.KernelIx),
		Params:     msg.InputParams,
		Inputs:     inputs,
		Outputs:    outputs,
	}
	if err := fn(ctx); err != nil {
		p.bus.Notify(eventbus.Notification{Type: core.NotifyLRTError, Sender: lrtIx, Ix: msg.TaskIx, Payload: err})
		return err
	}

	if msg.IsConfigActor {
		p.bus.SendParam(eventbus.ParameterMessage{TaskIx: msg.TaskIx, Params: decodeParams(outputs)})
	}

	p.markDone(lrtIx, msg.JobExecIx)
	return p.fanoutNotify(lrtIx, msg)
}

// fanoutNotify tells every LRT still waiting to learn about this job's
// completion (§4.8's elided NotifyFlags), concurrently since the targets
// are independent of one another. A panic in one notification (e.g. a
// future telemetry hook) is recovered and surfaced as a structured
// error rather than taking the whole LRT partition down, mirroring
// §5's "LRT failure is fatal to the iteration, not to the pool".
func (p *Pool) fanoutNotify(lrtIx int, msg launcher.JobMessage) (err error) {
	var wg conc.WaitGroup
	for targetLRT, notify := range msg.LRTsToNotify {
		if !notify {
			continue
		}
		targetLRT := targetLRT
		wg.Go(func() {
			log.GetLogger().WithField("lrt", lrtIx).WithField("notify", targetLRT).WithField("jobExecIx", msg.JobExecIx).Debug("notify completion")
		})
	}
	defer func() {
		if r := recover(); r != nil {
			err = core.NewError(core.ErrLRTFault, "panic while fanning out completion notifications", "lrt", lrtIx, "task", msg.TaskIx, "panic", r)
		}
	}()
	wg.Wait()
	return nil
}

// decodeParams reinterprets a CONFIG actor's output buffers as
// little-endian int64 scalars, one per output port, matching the
// encoding createRuntimeKernel's CONFIG bindings are expected to write
// (§4.2, §6).
func decodeParams(outputs [][]byte) []int64 {
	params := make([]int64, len(outputs))
	for i, buf := range outputs {
		if len(buf) < 8 {
			continue
		}
		params[i] = int64(binary.LittleEndian.Uint64(buf[:8]))
	}
	return params
}

func (p *Pool) waitFor(constraints []launcher.JobConstraint) {
	if len(constraints) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range constraints {
		for p.completed[c.LRTIx] < c.JobExecIx {
			p.cond.Wait()
		}
	}
}

func (p *Pool) markDone(lrtIx int, jobExecIx int64) {
	p.mu.Lock()
	if jobExecIx > p.completed[lrtIx] {
		p.completed[lrtIx] = jobExecIx
	}
	p.mu.Unlock()
	p.cond.Broadcast()
}
