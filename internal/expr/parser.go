package expr

import (
	"github.com/preesm/spider2/internal/core"
)

// toPostfix runs the shunting-yard algorithm over the lexed infix stream,
// producing a RPN token stream (mirrors RPNConverter.h from the original).
func toPostfix(toks []lexTok) ([]token, error) {
	var output []token
	var opStack []string
	var arityStack []int // pending function-call arity, indexed parallel to a '(' marker

	popOperator := func(sym string) error {
		if sym == "u-" {
			output = append(output, token{kind: tokOperator, name: "u-", arity: 1})
			return nil
		}
		if f, ok := lookupFunction(sym); ok {
			output = append(output, token{kind: tokFunction, name: sym, arity: f.arity})
			return nil
		}
		output = append(output, token{kind: tokOperator, name: sym, arity: 2})
		return nil
	}

	prevSignificant := func(i int) *lexTok {
		for j := i - 1; j >= 0; j-- {
			return &toks[j]
		}
		return nil
	}

	for i, t := range toks {
		switch t.kind {
		case lexNumber:
			output = append(output, token{kind: tokNumber, num: t.num})
		case lexIdent:
			if _, ok := lookupFunction(t.text); ok {
				opStack = append(opStack, t.text)
			} else {
				output = append(output, token{kind: tokParam, name: t.text})
			}
		case lexComma:
			for len(opStack) > 0 && opStack[len(opStack)-1] != "(" {
				if err := popOperator(opStack[len(opStack)-1]); err != nil {
					return nil, err
				}
				opStack = opStack[:len(opStack)-1]
			}
		case lexOperator:
			sym := t.text
			if sym == "-" {
				prev := prevSignificant(i)
				if prev == nil || prev.kind == lexOperator || prev.kind == lexLParen || prev.kind == lexComma {
					sym = "u-"
				}
			}
			def := operatorTable[sym]
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				if top == "(" {
					break
				}
				topDef, isOp := operatorTable[top]
				_, isFn := lookupFunction(top)
				if isFn {
					if err := popOperator(top); err != nil {
						return nil, err
					}
					opStack = opStack[:len(opStack)-1]
					continue
				}
				if !isOp {
					break
				}
				if (!def.rightAssoc && def.precedence <= topDef.precedence) ||
					(def.rightAssoc && def.precedence < topDef.precedence) {
					if err := popOperator(top); err != nil {
						return nil, err
					}
					opStack = opStack[:len(opStack)-1]
					continue
				}
				break
			}
			opStack = append(opStack, sym)
		case lexLParen:
			opStack = append(opStack, "(")
			arityStack = append(arityStack, 0)
		case lexRParen:
			for len(opStack) > 0 && opStack[len(opStack)-1] != "(" {
				if err := popOperator(opStack[len(opStack)-1]); err != nil {
					return nil, err
				}
				opStack = opStack[:len(opStack)-1]
			}
			if len(opStack) == 0 {
				return nil, core.NewError(core.ErrRateExprArity, "unbalanced parentheses in expression")
			}
			opStack = opStack[:len(opStack)-1] // pop "("
			if len(arityStack) > 0 {
				arityStack = arityStack[:len(arityStack)-1]
			}
			if len(opStack) > 0 {
				if _, isFn := lookupFunction(opStack[len(opStack)-1]); isFn {
					top := opStack[len(opStack)-1]
					if err := popOperator(top); err != nil {
						return nil, err
					}
					opStack = opStack[:len(opStack)-1]
				}
			}
		}
	}
	for len(opStack) > 0 {
		top := opStack[len(opStack)-1]
		if top == "(" {
			return nil, core.NewError(core.ErrRateExprArity, "unbalanced parentheses in expression")
		}
		if err := popOperator(top); err != nil {
			return nil, err
		}
		opStack = opStack[:len(opStack)-1]
	}
	return output, nil
}
