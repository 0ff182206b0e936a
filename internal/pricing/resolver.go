// Package pricing turns an expression into the amount charged for running it.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/calculator"
	"github.com/atadzan/calc-operation-api/internal/constants"
	"github.com/atadzan/calc-operation-api/internal/models"
)

// OperationTypeFinder looks up operation types by operator code in a single call.
type OperationTypeFinder interface {
	GetByOperatorCodes(ctx context.Context, codes []string) ([]models.OperationType, error)
}

type Resolver struct {
	types OperationTypeFinder
}

func NewResolver(types OperationTypeFinder) *Resolver {
	return &Resolver{types: types}
}

// Price sums the cost of every operation type used by expression.
// Operators without a configured type cost nothing.
func (r *Resolver) Price(ctx context.Context, expression string) (decimal.Decimal, error) {
	operators := calculator.ExtractOperators(expression)
	if calculator.IsRandomString(expression) && !contains(operators, constants.OperatorRandomString) {
		operators = append(operators, constants.OperatorRandomString)
	}
	if len(operators) == 0 {
		return decimal.Zero, apperr.Validation(constants.InvalidExpression)
	}

	types, err := r.types.GetByOperatorCodes(ctx, operators)
	if err != nil {
		return decimal.Zero, fmt.Errorf("can't price expression: %w", err)
	}

	total := decimal.Zero
	for _, t := range types {
		total = total.Add(t.Cost)
	}
	return total, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
