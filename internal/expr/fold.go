package expr

// foldEntry is one element of the symbolic-folding stack: either a fully
// resolved constant, or the minimal postfix subsequence still needed to
// compute a subtree that depends on at least one parameter.
type foldEntry struct {
	isConst bool
	value   float64
	tokens  []token
}

// fold constant-folds every maximal all-static subtree of a postfix token
// stream into a single tokNumber, as the original compiler does when it
// builds an Expression from its RPN stack (Expression.cpp).
func fold(postfix []token) []token {
	var stack []foldEntry
	for _, t := range postfix {
		switch t.kind {
		case tokNumber:
			stack = append(stack, foldEntry{isConst: true, value: t.num})
		case tokParam:
			stack = append(stack, foldEntry{tokens: []token{t}})
		case tokOperator, tokFunction:
			n := t.arity
			if n == 0 {
				n = arityOf(t.name)
			}
			if n > len(stack) {
				n = len(stack)
			}
			operands := stack[len(stack)-n:]
			stack = stack[:len(stack)-n]

			allConst := true
			args := make([]float64, n)
			var merged []token
			for i, op := range operands {
				if !op.isConst {
					allConst = false
				} else {
					args[i] = op.value
				}
				merged = append(merged, op.tokens...)
			}
			if allConst {
				var v float64
				if t.kind == tokFunction {
					v = applyFunction(t.name, args)
				} else {
					v = applyOperator(t.name, args)
				}
				stack = append(stack, foldEntry{isConst: true, value: v})
			} else {
				// Re-materialise any constant operand as an explicit number
				// token so the merged subsequence stays self-contained.
				merged = merged[:0]
				for _, op := range operands {
					if op.isConst {
						merged = append(merged, token{kind: tokNumber, num: op.value})
					} else {
						merged = append(merged, op.tokens...)
					}
				}
				merged = append(merged, t)
				stack = append(stack, foldEntry{tokens: merged})
			}
		}
	}
	if len(stack) == 0 {
		return nil
	}
	final := stack[len(stack)-1]
	if final.isConst {
		return []token{{kind: tokNumber, num: final.value}}
	}
	return final.tokens
}
