// Package param implements PiSDF parameters (§4.2): static, dynamic,
// inherited and dynamic-dependent values with late binding.
package param

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
)

// Type is the variant of a Parameter (§3).
type Type uint8

const (
	Static Type = iota
	Dynamic
	Inherited
	DynamicDependent
)

func (t Type) String() string {
	switch t {
	case Static:
		return "STATIC"
	case Dynamic:
		return "DYNAMIC"
	case Inherited:
		return "INHERITED"
	case DynamicDependent:
		return "DYNAMIC_DEPENDENT"
	default:
		return "UNKNOWN"
	}
}

// Scope resolves parameter values by name, letting an inherited or
// dynamic-dependent Parameter look up the parameters visible in whatever
// vector it is being evaluated against. It is the same contract
// expr.Expression.EvaluateAsInt expects, so a Scope can be passed straight
// through to the underlying expression.
type Scope = expr.Scope

// MapScope is the trivial Scope backed by a plain map, used by tests and by
// RateExpression evaluation against a resolved parameter vector.
type MapScope = expr.MapScope

// Parameter is one named PiSDF parameter with late-bound value (§4.2).
type Parameter struct {
	Name string
	kind Type

	staticExpr *expr.Expression // Static and DynamicDependent
	parentName string           // Inherited: name of the parent-graph parameter

	value    int64
	resolved bool
}

// NewStatic builds a compile-time-evaluable Parameter from a closed-form
// expression over already-resolved ancestor parameters.
func NewStatic(name string, e *expr.Expression) *Parameter {
	return &Parameter{Name: name, kind: Static, staticExpr: e}
}

// NewDynamic builds a Parameter whose value is set at runtime by a CONFIG
// actor's output; its initial value is 0 per §3.
func NewDynamic(name string) *Parameter {
	return &Parameter{Name: name, kind: Dynamic, value: 0, resolved: false}
}

// NewInherited builds a Parameter whose value is the resolved value of a
// named parent-graph parameter.
func NewInherited(name, parentParamName string) *Parameter {
	return &Parameter{Name: name, kind: Inherited, parentName: parentParamName}
}

// NewDynamicDependent builds a Parameter from a static-form expression
// whose inputs include at least one dynamic parameter.
func NewDynamicDependent(name string, e *expr.Expression) *Parameter {
	return &Parameter{Name: name, kind: DynamicDependent, staticExpr: e}
}

func (p *Parameter) Type() Type {
	return p.kind
}

// ParentName returns the parent-graph parameter name for an Inherited
// parameter (empty otherwise).
func (p *Parameter) ParentName() string {
	return p.parentName
}

// IsResolved reports whether Value can be called without error right now.
func (p *Parameter) IsResolved() bool {
	switch p.kind {
	case Dynamic:
		return p.resolved
	case DynamicDependent:
		return p.resolved
	default:
		return true
	}
}

// Value resolves the parameter's value given a scope used to look up any
// parameters its expression references. For Inherited parameters, the
// caller is expected to have already looked up the value in the parent
// scope and should call SetValue once, since the chain walk (§4.2) happens
// at the handler-tree level, not inside Parameter itself.
func (p *Parameter) Value(scope Scope) (int64, error) {
	switch p.kind {
	case Static:
		return p.evalExpr(scope)
	case Dynamic:
		if !p.resolved {
			return 0, core.NewError(core.ErrRateExprBadParam, "dynamic parameter not yet resolved", "name", p.Name)
		}
		return p.value, nil
	case Inherited:
		if !p.resolved {
			return 0, core.NewError(core.ErrRateExprBadParam, "inherited parameter not yet resolved", "name", p.Name)
		}
		return p.value, nil
	case DynamicDependent:
		if p.resolved {
			return p.value, nil
		}
		v, err := p.evalExpr(scope)
		if err != nil {
			return 0, err
		}
		p.value = v
		p.resolved = true
		return v, nil
	default:
		return 0, core.NewError(core.ErrRateExprBadParam, "unknown parameter type", "name", p.Name)
	}
}

func (p *Parameter) evalExpr(scope Scope) (int64, error) {
	if p.staticExpr == nil {
		return 0, core.NewError(core.ErrRateExprBadParam, "parameter has no expression", "name", p.Name)
	}
	return p.staticExpr.EvaluateAsInt(scope)
}

// SetValue sets a Dynamic parameter's value (only legal on Dynamic
// parameters) or binds an Inherited parameter to its resolved source value.
func (p *Parameter) SetValue(v int64) error {
	if p.kind != Dynamic && p.kind != Inherited {
		return core.NewError(core.ErrRateExprBadParam, "SetValue called on a non-dynamic, non-inherited parameter", "name", p.Name, "type", p.kind.String())
	}
	p.value = v
	p.resolved = true
	return nil
}
