package control

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MethodFunc implements one JSON-RPC method. It returns the result
// value to encode, or an error to surface as an ErrorInfo.
type MethodFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Handler dispatches Requests to registered MethodFuncs, the daemon
// side's analogue of the CLI's convenience methods.
type Handler struct {
	mu      sync.RWMutex
	methods map[string]MethodFunc
}

// NewHandler returns an empty Handler; callers register methods with
// Register before serving requests.
func NewHandler() *Handler {
	return &Handler{methods: make(map[string]MethodFunc)}
}

// Register binds fn to the given method name.
func (h *Handler) Register(method string, fn MethodFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.methods[method] = fn
}

// Handle executes req against the registered method table and builds
// the JSON-RPC response frame, never panicking back to the caller.
func (h *Handler) Handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &ErrorInfo{Code: ErrCodeInternal, Message: fmt.Sprintf("method panicked: %v", r)},
			}
		}
	}()

	h.mu.RLock()
	fn, ok := h.methods[req.Method]
	h.mu.RUnlock()

	if !ok {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &ErrorInfo{Code: ErrCodeMethodNotFound, Message: "unknown method: " + req.Method},
		}
	}

	result, err := fn(ctx, req.Params)
	if err != nil {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &ErrorInfo{Code: ErrCodeInternal, Message: err.Error()},
		}
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}
