package pisdf

import "github.com/preesm/spider2/internal/expr"

// VertexRef names a (vertex, port) attachment point.
type VertexRef struct {
	VertexIx int
	PortIx   int
}

// Delay is the token reservoir attached to at most one Edge (§3). It
// always materialises as a paired INIT/END vertex bridging the edge's
// persistent storage; an explicit setter/getter vertex, when present,
// overrides where the initial/residual tokens actually come from or go
// to instead of the implicit INIT/END pair.
type Delay struct {
	Ix int

	// ValueExpr is evaluated once at graph-firing resolution time; the
	// original restricts a delay's value to a non-negative integer
	// constant or a configuration-parameter-derived expression, never a
	// per-firing dynamic one.
	ValueExpr *expr.Expression

	// EdgeIx is the edge this delay is attached to.
	EdgeIx int

	// InitVertexIx / EndVertexIx are the implicit pair materialising the
	// delay's storage: INIT produces the `value` initial tokens, END
	// consumes the `value` residual tokens at the end of the graph's
	// iteration.
	InitVertexIx int
	EndVertexIx  int

	// SetterVertexIx/PortIx, GetterVertexIx/PortIx are set when the delay
	// declares an explicit setter/getter actor instead of relying on the
	// INIT/END pair alone; -1 when absent.
	SetterVertexIx int
	SetterPortIx   int
	GetterVertexIx int
	GetterPortIx   int
}

func NewDelay(ix int, value *expr.Expression, edgeIx, initVertexIx, endVertexIx int) *Delay {
	return &Delay{
		Ix:             ix,
		ValueExpr:      value,
		EdgeIx:         edgeIx,
		InitVertexIx:   initVertexIx,
		EndVertexIx:    endVertexIx,
		SetterVertexIx: -1,
		SetterPortIx:   -1,
		GetterVertexIx: -1,
		GetterPortIx:   -1,
	}
}

// HasSetter reports whether an explicit setter actor overrides the INIT
// vertex as the source of the delay's initial tokens.
func (d *Delay) HasSetter() bool { return d.SetterVertexIx >= 0 }

// HasGetter reports whether an explicit getter actor overrides the END
// vertex as the sink of the delay's residual tokens.
func (d *Delay) HasGetter() bool { return d.GetterVertexIx >= 0 }

// Persistent reports whether the delay carries no setter and no getter:
// tokens simply survive from one graph iteration to the next (§3).
func (d *Delay) Persistent() bool { return !d.HasSetter() && !d.HasGetter() }

// Value evaluates the delay's token count against scope.
func (d *Delay) Value(scope expr.Scope) (int64, error) {
	return d.ValueExpr.EvaluateAsInt(scope)
}
