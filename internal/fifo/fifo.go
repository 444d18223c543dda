// Package fifo implements the FIFO memory allocator (§4.7): given the
// per-port AllocationRule a vertex's subtype dictates (NEW/SAME_IN/
// SAME_OUT/MERGE/EXT), it assigns a virtual address, offset and
// reference count to each task's input and output Fifo records, sharing
// storage across R_MERGE'd consumers via the ghost/DUMMY bookkeeping the
// original calls "merged fifos".
package fifo

import "github.com/preesm/spider2/internal/core"

// Fifo is one allocated buffer record attached to a task's input or
// output port (§3).
type Fifo struct {
	VirtualAddress int64
	Size           int64
	Offset         int64
	Count          int
	Attribute      core.FifoAttribute
}

// AllocationRule is what the fifo.Allocator must do for one port of one
// task, computed ahead of time from the vertex's subtype (FORK/JOIN/
// REPEAT/DUPLICATE/HEAD/TAIL/.../NORMAL) by the caller (§4.7, §9: the
// per-subtype rule tables are BuildAllocationRules in rules.go of this
// package).
type AllocationRule struct {
	Type      core.AllocationType
	FifoIx    int // SAME_IN/SAME_OUT: which sibling port to copy from
	Size      int64
	Offset    int64 // SAME_IN/SAME_OUT: additional byte offset; MERGE: count of merged predecessors
	Count     int
	Attribute core.FifoAttribute

	// Others holds one AllocationRule per merged predecessor, used only
	// when Type == AllocMerge.
	Others []AllocationRule
}
