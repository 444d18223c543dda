package eventbus

import (
	"testing"
	"time"

	"github.com/preesm/spider2/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusEnqueueOrderPerLRT(t *testing.T) {
	b := New(2, 8)
	var got []int
	done := make(chan struct{})
	b.SetHandler(func(lrtIx int, job any) error {
		got = append(got, job.(int))
		if len(got) == 3 {
			close(done)
		}
		return nil
	})
	defer b.Close()

	require.NoError(t, b.Enqueue(0, 1))
	require.NoError(t, b.Enqueue(0, 2))
	require.NoError(t, b.Enqueue(0, 3))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for jobs")
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestBusEnqueueOutOfRange(t *testing.T) {
	b := New(1, 4)
	defer b.Close()
	err := b.Enqueue(5, "job")
	require.Error(t, err)
}

func TestBusNotificationsAndParams(t *testing.T) {
	b := New(1, 4)
	defer b.Close()

	b.Notify(Notification{Type: core.NotifyLRTEndIteration, Sender: 0})
	select {
	case n := <-b.Notifications():
		assert.Equal(t, core.NotifyLRTEndIteration, n.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}

	b.SendParam(ParameterMessage{TaskIx: 3, Params: []int64{7}})
	select {
	case p := <-b.Params():
		assert.Equal(t, 3, p.TaskIx)
		assert.Equal(t, []int64{7}, p.Params)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for param message")
	}
}

func TestBusSnapshot(t *testing.T) {
	b := New(2, 4)
	defer b.Close()
	s := b.Snapshot()
	assert.Equal(t, 2, s.LRTCount)
	assert.Len(t, s.QueueDepth, 2)
}

func TestBusCloseIdempotent(t *testing.T) {
	b := New(1, 4)
	b.Close()
	b.Close()
}
