package launcher

import "github.com/preesm/spider2/internal/fifo"

// JobConstraint is one "wait for jobExecIx on lrtIx" entry a JobMessage
// carries for every LRT its task has a non-zero sync value against
// (§4.8, §4.10).
type JobConstraint struct {
	LRTIx     int
	JobExecIx int64
}

// JobMessage is the wire payload the TaskLauncher hands to one LRT's
// queue for one task (§4.10). Addresses in InputFifos/OutputFifos are
// virtual; each LRT resolves them through its own memory interface.
type JobMessage struct {
	TaskIx    int
	VertexIx  int
	KernelIx  int
	JobExecIx int64

	// JobsToWait holds one entry per LRT this task must synchronize
	// against before it may run.
	JobsToWait []JobConstraint

	// LRTsToNotify[lrtIx] is true if lrtIx must be told when this task
	// completes.
	LRTsToNotify []bool

	InputParams []int64

	InputFifos  []fifo.Fifo
	OutputFifos []fifo.Fifo

	// IsConfigActor marks a CONFIG actor's job: the LRT executing it
	// must report its resolved output parameters back to the driver
	// (§4.2, §6) instead of treating its outputs as ordinary data FIFOs.
	IsConfigActor bool

	// Delayed marks a message sent before every synchronous producer's
	// jobExecIx was known; the launcher follows up with a
	// JobDelayBroadcastJobstamp notification once it is (§4.10).
	Delayed bool
}
