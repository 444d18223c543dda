package control

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (socket string, h *Handler, stop func()) {
	t.Helper()
	socket = filepath.Join(t.TempDir(), "spider2.sock")
	h = NewHandler()
	srv := NewServer(socket, h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Start(ctx)
		close(done)
	}()

	// give the listener a moment to bind
	time.Sleep(50 * time.Millisecond)

	return socket, h, func() {
		cancel()
		<-done
	}
}

func TestClientServerStatusRoundTrip(t *testing.T) {
	socket, h, stop := startTestServer(t)
	defer stop()

	h.Register(MethodStatus, func(ctx context.Context, params json.RawMessage) (any, error) {
		return StatusResult{Running: true, GraphFile: "g.yaml", LRTCount: 4}, nil
	})

	client := NewClient(socket, time.Second)
	resp, err := client.Status(context.Background())
	require.NoError(t, err)
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result StatusResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Running)
	assert.Equal(t, "g.yaml", result.GraphFile)
	assert.Equal(t, 4, result.LRTCount)
}

func TestClientUnknownMethod(t *testing.T) {
	socket, _, stop := startTestServer(t)
	defer stop()

	client := NewClient(socket, time.Second)
	resp, err := client.Call(context.Background(), "nonexistent", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandlerInternalError(t *testing.T) {
	h := NewHandler()
	h.Register("boom", func(ctx context.Context, params json.RawMessage) (any, error) {
		return nil, assertErr{}
	})
	resp := h.Handle(context.Background(), Request{ID: "1", Method: "boom"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInternal, resp.Error.Code)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
