package pisdf

import "github.com/preesm/spider2/internal/expr"

// Edge connects (sourceVertex, sourcePortIx) to (sinkVertex, sinkPortIx)
// and carries the production/consumption rate expressions evaluated once
// per containing GraphFiring. It may carry at most one Delay (§3).
type Edge struct {
	Ix int

	Source VertexRef
	Sink   VertexRef

	SrcRateExpr *expr.Expression
	SnkRateExpr *expr.Expression

	// DelayIx indexes into the owning Graph's Delays, -1 when the edge
	// carries none.
	DelayIx int

	// IsConfigParamEdge marks an edge from a CONFIG actor's output port
	// that feeds a dynamic parameter's expression rather than a data
	// FIFO (open question, resolved in favour of an explicit field over
	// rate-expression sniffing: see SPEC_FULL.md §5).
	IsConfigParamEdge bool
}

func NewEdge(ix int, source, sink VertexRef, srcRate, snkRate *expr.Expression) *Edge {
	return &Edge{
		Ix:          ix,
		Source:      source,
		Sink:        sink,
		SrcRateExpr: srcRate,
		SnkRateExpr: snkRate,
		DelayIx:     -1,
	}
}

func (e *Edge) HasDelay() bool { return e.DelayIx >= 0 }

// SourceRate evaluates the per-firing production rate.
func (e *Edge) SourceRate(scope expr.Scope) (int64, error) {
	return e.SrcRateExpr.EvaluateAsInt(scope)
}

// SinkRate evaluates the per-firing consumption rate.
func (e *Edge) SinkRate(scope expr.Scope) (int64, error) {
	return e.SnkRateExpr.EvaluateAsInt(scope)
}
