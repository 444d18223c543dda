// Package control implements the local control plane: a JSON-RPC
// protocol spoken over a Unix domain socket between the CLI (status,
// stats, reload, stop) and the running daemon.
package control

import "encoding/json"

// Request is a JSON-RPC 2.0 request frame, one per line on the wire.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      string          `json:"id"`
}

// Response is a JSON-RPC 2.0 response frame.
type Response struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      string     `json:"id"`
	Result  any        `json:"result,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo is a JSON-RPC error object.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	// MethodStatus reports whether the daemon is alive and which graph
	// it has loaded.
	MethodStatus = "status"
	// MethodStats reports the most recent schedule's Stats (§4.9).
	MethodStats = "stats"
	// MethodReload makes the daemon re-read its config file and store
	// the log section, without restarting; the running logger is left
	// as it was initialised.
	MethodReload = "config.reload"
	// MethodStop requests a graceful shutdown of the daemon.
	MethodStop = "stop"
)

const (
	ErrCodeParseError    = "parse_error"
	ErrCodeMethodNotFound = "method_not_found"
	ErrCodeInternal      = "internal_error"
)

// StatusResult is the result payload of MethodStatus.
type StatusResult struct {
	Running    bool   `json:"running"`
	GraphFile  string `json:"graph_file"`
	LRTCount   int    `json:"lrt_count"`
	Iterations uint64 `json:"iterations"`
}

// StatsResult is the result payload of MethodStats.
type StatsResult struct {
	Makespan  uint64           `json:"makespan"`
	PELoad    map[string]uint64 `json:"pe_load"`
	TaskCount int              `json:"task_count"`
}
