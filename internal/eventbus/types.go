package eventbus

import "github.com/preesm/spider2/internal/core"

// Notification is the discriminated LRT->driver record (§6):
// {type, sender, ix, payload}. Sender is the LRT index that raised it;
// Ix is the task/delay index the notification concerns; Payload carries
// type-specific data (a ParameterMessage for NotifyJobSentParam, a
// MemUpdateCount for NotifyMemUpdateCount).
type Notification struct {
	Type    core.NotificationType
	Sender  int
	Ix      int
	Payload any
}

// ParameterMessage is the driver-facing payload of a NotifyJobSentParam
// notification: the resolved output parameters a CONFIG actor's job
// produced (§6).
type ParameterMessage struct {
	TaskIx int
	Params []int64
}

// MemUpdateCount is the payload of a NotifyMemUpdateCount notification: a
// reference-count delta for the FIFO at Address. These commute, so the
// driver tracks a monotonically increasing sequence number per address
// and ignores a replayed Seq.
type MemUpdateCount struct {
	Address int64
	Delta   int
	Seq     uint64
}

// jobPartition is one LRT's private job queue plus the handler bound to
// consume it.
type jobPartition struct {
	lrtIx   int
	queue   chan any
	done    chan struct{}
	handler JobHandler
}

// JobHandler is invoked once per job dequeued from an LRT's partition, in
// the order the driver enqueued them.
type JobHandler func(lrtIx int, job any) error
