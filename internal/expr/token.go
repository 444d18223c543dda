package expr

// tokenKind classifies one element of the compiled postfix stream.
type tokenKind uint8

const (
	tokNumber tokenKind = iota
	tokParam
	tokOperator
	tokFunction
)

// token is one compiled instruction. Functions and operators carry the
// number of operands they pop off the evaluation stack in arity.
type token struct {
	kind  tokenKind
	num   float64
	name  string // parameter name, operator symbol, or function name
	arity int
}

// function describes one recognised call in the grammar (§4.1).
type function struct {
	name  string
	arity int
	apply func(args []float64) float64
}

var functions = buildFunctionTable()

func lookupFunction(name string) (function, bool) {
	f, ok := functions[name]
	return f, ok
}

// operator describes one infix operator's precedence and associativity.
type operatorDef struct {
	symbol     string
	precedence int
	rightAssoc bool
	unary      bool
}

// operators, ordered by ascending precedence. Exponentiation is right
// associative; everything else is left associative. Unary minus is
// represented with its own symbol ("u-") once the shunting-yard parser
// disambiguates it from binary subtraction.
var operatorTable = map[string]operatorDef{
	"+":  {symbol: "+", precedence: 2},
	"-":  {symbol: "-", precedence: 2},
	"*":  {symbol: "*", precedence: 3},
	"/":  {symbol: "/", precedence: 3},
	"%":  {symbol: "%", precedence: 3},
	"^":  {symbol: "^", precedence: 4, rightAssoc: true},
	"u-": {symbol: "u-", precedence: 5, unary: true},
}
