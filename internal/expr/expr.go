// Package expr implements compiled rate and parameter expressions (§4.1).
//
// An Expression is compiled once from an infix string into a folded
// postfix token stream: every maximal all-static subtree is pre-evaluated
// to a single constant at compile time, so repeated evaluation against a
// changing parameter vector only re-walks the genuinely dynamic part of
// the stream.
package expr

import (
	"math"

	"github.com/preesm/spider2/internal/core"
)

// Expression is an opaque compiled rate/parameter expression.
type Expression struct {
	source   string
	postfix  []token
	dynamic  bool
	constant float64
	isConst  bool
}

// Parse compiles an infix expression string into an Expression.
func Parse(source string) (*Expression, error) {
	lexed, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	postfix, err := toPostfix(lexed)
	if err != nil {
		return nil, err
	}
	folded := fold(postfix)
	e := &Expression{source: source, postfix: folded}
	if len(folded) == 1 && folded[0].kind == tokNumber {
		e.isConst = true
		e.constant = folded[0].num
	}
	for _, t := range folded {
		if t.kind == tokParam {
			e.dynamic = true
			break
		}
	}
	return e, nil
}

// MustParse is Parse, panicking on error; reserved for expressions known at
// compile time to be well formed (e.g. literal default rates).
func MustParse(source string) *Expression {
	e, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the original infix source.
func (e *Expression) String() string {
	return e.source
}

// IsDynamic reports whether the folded stack still contains at least one
// parameter reference.
func (e *Expression) IsDynamic() bool {
	return e.dynamic
}

// Scope resolves a named parameter to its integer value for the duration
// of one EvaluateAsInt call.
type Scope interface {
	ParamValue(name string) (int64, bool)
}

// MapScope is the trivial Scope backed by a plain map.
type MapScope map[string]int64

func (m MapScope) ParamValue(name string) (int64, bool) {
	v, ok := m[name]
	return v, ok
}

// EvaluateAsInt evaluates the expression against the given parameter
// scope and returns floor(result), per §9's documented rounding rule
// (floor toward negative infinity, float64 arithmetic). A nil scope is
// valid for expressions that do not reference any parameter.
func (e *Expression) EvaluateAsInt(params Scope) (int64, error) {
	if e.isConst {
		return int64(math.Floor(e.constant)), nil
	}
	v, err := e.evaluateFloat(params)
	if err != nil {
		return 0, err
	}
	return int64(math.Floor(v)), nil
}

func (e *Expression) evaluateFloat(params Scope) (float64, error) {
	var stack []float64
	for _, t := range e.postfix {
		switch t.kind {
		case tokNumber:
			stack = append(stack, t.num)
		case tokParam:
			if params == nil {
				return 0, core.NewError(core.ErrRateExprBadParam, "parameter not found in scope", "name", t.name, "expr", e.source)
			}
			v, ok := params.ParamValue(t.name)
			if !ok {
				return 0, core.NewError(core.ErrRateExprBadParam, "parameter not found in scope", "name", t.name, "expr", e.source)
			}
			stack = append(stack, float64(v))
		case tokOperator, tokFunction:
			n := t.arity
			if n == 0 {
				n = arityOf(t.name)
			}
			if n > len(stack) {
				return 0, core.NewError(core.ErrRateExprArity, "operator/function applied with wrong number of operands", "name", t.name, "expr", e.source)
			}
			args := stack[len(stack)-n:]
			stack = stack[:len(stack)-n]
			var v float64
			if t.kind == tokFunction {
				v = applyFunction(t.name, args)
			} else {
				v = applyOperator(t.name, args)
			}
			stack = append(stack, v)
		}
	}
	if len(stack) != 1 {
		return 0, core.NewError(core.ErrRateExprArity, "expression did not reduce to a single value", "expr", e.source)
	}
	return stack[0], nil
}
