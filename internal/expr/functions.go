package expr

import "math"

// buildFunctionTable enumerates the unary/binary functions recognised by
// rate and parameter expressions (§4.1).
func buildFunctionTable() map[string]function {
	unary := func(name string, f func(float64) float64) function {
		return function{name: name, arity: 1, apply: func(args []float64) float64 { return f(args[0]) }}
	}
	table := map[string]function{
		"cos":   unary("cos", math.Cos),
		"sin":   unary("sin", math.Sin),
		"tan":   unary("tan", math.Tan),
		"cosh":  unary("cosh", math.Cosh),
		"sinh":  unary("sinh", math.Sinh),
		"tanh":  unary("tanh", math.Tanh),
		"exp":   unary("exp", math.Exp),
		"log":   unary("log", math.Log),
		"log2":  unary("log2", math.Log2),
		"ceil":  unary("ceil", math.Ceil),
		"floor": unary("floor", math.Floor),
		"abs":   unary("abs", math.Abs),
		"sqrt":  unary("sqrt", math.Sqrt),
		"max": {
			name: "max", arity: 2,
			apply: func(args []float64) float64 { return math.Max(args[0], args[1]) },
		},
		"min": {
			name: "min", arity: 2,
			apply: func(args []float64) float64 { return math.Min(args[0], args[1]) },
		},
	}
	return table
}
