package calculator

import (
	"sort"
	"strings"

	"github.com/atadzan/calc-operation-api/internal/constants"
)

var operatorSymbols = map[rune]string{
	'+': constants.OperatorAddition,
	'-': constants.OperatorSubtraction,
	'*': constants.OperatorMultiplication,
	'/': constants.OperatorDivision,
	'^': constants.OperatorExponentiation,
	'√': constants.OperatorSquareRoot,
}

// IsRandomString reports whether expression is the random_string literal, ignoring case.
func IsRandomString(expression string) bool {
	return strings.EqualFold(expression, constants.RandomStringExpression)
}

// ExtractOperators returns the distinct operator categories used by expression,
// sorted. Unknown symbols are ignored; an expression without operators yields an
// empty slice.
func ExtractOperators(expression string) []string {
	seen := make(map[string]struct{})
	for _, ch := range expression {
		if op, ok := operatorSymbols[ch]; ok {
			seen[op] = struct{}{}
		}
	}
	if IsRandomString(expression) {
		seen[constants.OperatorRandomString] = struct{}{}
	}

	operators := make([]string, 0, len(seen))
	for op := range seen {
		operators = append(operators, op)
	}
	sort.Strings(operators)
	return operators
}
