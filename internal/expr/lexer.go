package expr

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/preesm/spider2/internal/core"
)

type lexTokKind uint8

const (
	lexNumber lexTokKind = iota
	lexIdent
	lexOperator
	lexLParen
	lexRParen
	lexComma
)

type lexTok struct {
	kind lexTokKind
	text string
	num  float64
}

// tokenize splits an infix rate/parameter expression into a flat sequence
// of numbers, identifiers (parameter or function names), operators and
// punctuation.
func tokenize(src string) ([]lexTok, error) {
	var out []lexTok
	runes := []rune(src)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			out = append(out, lexTok{kind: lexLParen})
			i++
		case r == ')':
			out = append(out, lexTok{kind: lexRParen})
			i++
		case r == ',':
			out = append(out, lexTok{kind: lexComma})
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			text := string(runes[i:j])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, core.NewError(core.ErrRateExprBadParam, "malformed numeric literal", "literal", text)
			}
			out = append(out, lexTok{kind: lexNumber, num: v})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			out = append(out, lexTok{kind: lexIdent, text: string(runes[i:j])})
			i = j
		case strings.ContainsRune("+-*/%^", r):
			out = append(out, lexTok{kind: lexOperator, text: string(r)})
			i++
		default:
			return nil, core.NewError(core.ErrRateExprBadParam, "unexpected character in expression", "char", string(r))
		}
	}
	return out, nil
}
