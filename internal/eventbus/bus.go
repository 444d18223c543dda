// Package eventbus implements the notification queue fabric (§5): one
// MPSC job queue per LRT plus the typed driver-facing channels LRTs use
// to report back (job-sent parameters, memory refcount updates,
// iteration/error notifications). The driver is the single consumer of
// the typed channels; each LRT is the single consumer of its own job
// queue, giving per-(sender,receiver) FIFO ordering without a lock on
// the hot path.
package eventbus

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/preesm/spider2/internal/log"
)

// Stats reports queue depths and throughput counters, mirroring what an
// operator dashboard (internal/metrics) polls.
type Stats struct {
	JobsPublished int64
	JobsProcessed int64
	LRTCount      int
	QueueDepth    []int
}

// Bus is the in-memory notification fabric wiring the driver to its
// simulated LRT pool. It owns lrtCount independent job partitions plus
// the shared notification and parameter channels.
type Bus struct {
	partitions []*jobPartition
	lrtCount   int
	queueSize  int

	notifications chan Notification
	params        chan ParameterMessage

	mu     sync.RWMutex
	closed int32

	publishedCount int64
	processedCount int64
}

// New creates a Bus with one job partition per LRT. queueSize bounds
// each partition's buffer and the shared notification/parameter
// channels.
func New(lrtCount, queueSize int) *Bus {
	b := &Bus{
		lrtCount:      lrtCount,
		queueSize:     queueSize,
		partitions:    make([]*jobPartition, lrtCount),
		notifications: make(chan Notification, queueSize),
		params:        make(chan ParameterMessage, queueSize),
	}
	for i := 0; i < lrtCount; i++ {
		b.partitions[i] = &jobPartition{
			lrtIx: i,
			queue: make(chan any, queueSize),
			done:  make(chan struct{}),
		}
	}
	return b
}

// SetHandler binds fn as the consumer of every LRT partition and starts
// the per-partition worker goroutines. It must be called once before
// the first Enqueue.
func (b *Bus) SetHandler(fn JobHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.partitions {
		p.handler = fn
		go b.runPartition(p)
	}
}

// Enqueue hands job to the named LRT's partition, preserving the order
// Enqueue was called in (the O1 per-LRT job ordering constraint).
func (b *Bus) Enqueue(lrtIx int, job any) error {
	if atomic.LoadInt32(&b.closed) == 1 {
		return fmt.Errorf("eventbus: closed")
	}
	if lrtIx < 0 || lrtIx >= len(b.partitions) {
		return fmt.Errorf("eventbus: lrt index %d out of range", lrtIx)
	}
	select {
	case b.partitions[lrtIx].queue <- job:
		atomic.AddInt64(&b.publishedCount, 1)
		return nil
	default:
		return fmt.Errorf("eventbus: lrt %d queue is full", lrtIx)
	}
}

// Notify delivers n to the driver's notification channel. Blocks only
// if the driver has stopped draining it, which is a programming error
// elsewhere, not a condition this package works around.
func (b *Bus) Notify(n Notification) {
	if atomic.LoadInt32(&b.closed) == 1 {
		return
	}
	b.notifications <- n
}

// Notifications returns the channel the driver reads LRT notifications
// from.
func (b *Bus) Notifications() <-chan Notification {
	return b.notifications
}

// SendParam delivers a resolved-parameter report to the driver.
func (b *Bus) SendParam(msg ParameterMessage) {
	if atomic.LoadInt32(&b.closed) == 1 {
		return
	}
	b.params <- msg
}

// Params returns the channel the driver reads parameter reports from.
func (b *Bus) Params() <-chan ParameterMessage {
	return b.params
}

// Close stops every partition worker and the shared channels. Safe to
// call more than once.
func (b *Bus) Close() {
	if !atomic.CompareAndSwapInt32(&b.closed, 0, 1) {
		return
	}
	for _, p := range b.partitions {
		close(p.done)
	}
	log.GetLogger().Debug("eventbus closed")
}

// Snapshot reports current queue depths and counters.
func (b *Bus) Snapshot() *Stats {
	s := &Stats{
		JobsPublished: atomic.LoadInt64(&b.publishedCount),
		JobsProcessed: atomic.LoadInt64(&b.processedCount),
		LRTCount:      b.lrtCount,
		QueueDepth:    make([]int, b.lrtCount),
	}
	for i, p := range b.partitions {
		s.QueueDepth[i] = len(p.queue)
	}
	return s
}

func (b *Bus) runPartition(p *jobPartition) {
	logger := log.GetLogger().WithField("lrt", p.lrtIx)
	logger.Debug("lrt partition started")
	defer logger.Debug("lrt partition stopped")

	for {
		select {
		case <-p.done:
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			if p.handler == nil {
				continue
			}
			if err := p.handler(p.lrtIx, job); err != nil {
				logger.WithError(err).Error("job handler failed")
			} else {
				atomic.AddInt64(&b.processedCount, 1)
			}
		}
	}
}
