// Package kernel implements the runtime kernel registry (§6):
// createRuntimeKernel binds a native Go callable to a vertex's
// refinement, the way the original binds a function pointer loaded from
// a shared object. The scheduling core never calls a kernel itself (that
// is the LRT's job, simulated by internal/runtime's worker pool); this
// package only owns the mapping from a KernelIx carried on a JobMessage
// back to the Go function that implements it.
package kernel

import (
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/preesm/spider2/internal/core"
)

// Context is the argument a Func receives: the resolved input parameters
// (§6's per-vertex-type positional layout) and the input/output FIFO
// byte slices the LRT's memory interface has already resolved from
// virtual addresses to local buffers.
type Context struct {
	VertexName string
	Params     []int64
	Inputs     [][]byte
	Outputs    [][]byte
}

// Func is a bound refinement: the callable the original loads from a
// vertex's compiled shared object.
type Func func(ctx Context) error

// Registry maps a KernelIx to the Func that implements it and to the
// name it was registered under. It is built once at
// graph-construction time (an external collaborator's concern, §1) and
// read-only for the remainder of the run.
type Registry struct {
	mu      sync.RWMutex
	kernels []Func
	names   []string
}

func NewRegistry() *Registry {
	return &Registry{}
}

// CreateRuntimeKernel registers fn as a free-standing kernel (not bound
// to any particular vertex yet) and returns its handle, mirroring
// `createRuntimeKernel(kernelFn)` (§6).
func (r *Registry) CreateRuntimeKernel(name string, fn Func) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ix := len(r.kernels)
	r.kernels = append(r.kernels, fn)
	r.names = append(r.names, name)
	return ix
}

// CreateRuntimeKernelForVertex registers fn and returns its handle; the
// caller is expected to assign the returned ix to vertex.RTInfo.KernelIx,
// mirroring the vertex-binding overload of `createRuntimeKernel` (§6).
func (r *Registry) CreateRuntimeKernelForVertex(vertexName string, fn Func) int {
	return r.CreateRuntimeKernel(vertexName, fn)
}

// DecodeOptions decodes a free-form options blob (as loaded from a
// refinement's binding table in a platform/scenario description file)
// into a strongly-typed struct. A kernel binding carries only what a
// Func closure already needs, but the table it was built from is
// necessarily untyped at the config-loading boundary, the same gap
// `internal/platform`'s FileConfig closes with viper/mapstructure for
// the hardware model.
func DecodeOptions(raw map[string]any, out any) error {
	return mapstructure.Decode(raw, out)
}

// Lookup resolves a KernelIx to its Func, failing with a structured
// error (never a panic) if the index was never registered: the spec
// treats an unbound kernel as the JobMessage-level analogue of
// ErrUnhandledVertexType.
func (r *Registry) Lookup(ix int) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ix < 0 || ix >= len(r.kernels) || r.kernels[ix] == nil {
		return nil, core.NewError(core.ErrUnhandledVertexType, "no kernel bound to index", "kernelIx", ix)
	}
	return r.kernels[ix], nil
}

// Name returns the human-readable name a kernel was registered under,
// for logging.
func (r *Registry) Name(ix int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ix < 0 || ix >= len(r.names) {
		return fmt.Sprintf("kernel#%d", ix)
	}
	return r.names[ix]
}
