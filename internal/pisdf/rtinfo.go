package pisdf

import "github.com/preesm/spider2/internal/expr"

// RTInfo is the runtime-facing annotation carried by every executable
// vertex (§3): a timing expression per hardware type, a per-PE
// mappability bitset and the kernel a launched task must invoke.
type RTInfo struct {
	// TimingExpr[hwTypeIx] is nil when the vertex has no timing defined
	// for that hardware type (§4.8: BestFit skips such PEs).
	TimingExpr []*expr.Expression

	// Mappable[peIx] gates whether the Mapper may place this vertex on
	// that PE, independent of timing availability.
	Mappable []bool

	// KernelIx identifies the callable the launcher must invoke in the
	// JobMessage it builds for this vertex (§6, §9 internal/kernel).
	KernelIx int
}

func NewRTInfo(peCount, hwTypeCount, kernelIx int) *RTInfo {
	return &RTInfo{
		TimingExpr: make([]*expr.Expression, hwTypeCount),
		Mappable:   make([]bool, peCount),
		KernelIx:   kernelIx,
	}
}

// IsMappableOnPE reports whether pe is eligible to host this vertex: it
// must be flagged mappable and the vertex must carry a timing expression
// for that PE's hardware type.
func (r *RTInfo) IsMappableOnPE(peIx, hwTypeIx int) bool {
	if r == nil {
		return false
	}
	if peIx < 0 || peIx >= len(r.Mappable) || !r.Mappable[peIx] {
		return false
	}
	if hwTypeIx < 0 || hwTypeIx >= len(r.TimingExpr) {
		return false
	}
	return r.TimingExpr[hwTypeIx] != nil
}

// Timing evaluates the vertex's execution time on hwTypeIx against the
// firing's resolved parameter scope. Callers must check IsMappableOnPE
// first; Timing panics on an out-of-range or nil entry.
func (r *RTInfo) Timing(hwTypeIx int, scope expr.Scope) (int64, error) {
	return r.TimingExpr[hwTypeIx].EvaluateAsInt(scope)
}
