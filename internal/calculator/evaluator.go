package calculator

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PaesslerAG/gval"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/constants"
)

// RandomStringGenerator produces the result of the random_string expression.
type RandomStringGenerator interface {
	Generate(ctx context.Context) (string, error)
}

var (
	sqrtOfNumber = regexp.MustCompile(`√\s*(\d+(?:\.\d+)?)`)
	infixPow     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\^\s*(\d+(?:\.\d+)?)`)
	prefixPow    = regexp.MustCompile(`\^\((\d+(?:\.\d+)?),\s*(\d+(?:\.\d+)?)\)`)
)

// Evaluator accepts only the priced operators: + - * / plus Pow and Sqrt.
type Evaluator struct {
	random RandomStringGenerator
	lang   gval.Language
}

func NewEvaluator(random RandomStringGenerator) *Evaluator {
	return &Evaluator{
		random: random,
		lang: gval.NewLanguage(
			gval.Base(),
			gval.InfixNumberOperator("+", func(a, b float64) (interface{}, error) { return a + b, nil }),
			gval.InfixNumberOperator("-", func(a, b float64) (interface{}, error) { return a - b, nil }),
			gval.InfixNumberOperator("*", func(a, b float64) (interface{}, error) { return a * b, nil }),
			gval.InfixNumberOperator("/", func(a, b float64) (interface{}, error) { return a / b, nil }),
			gval.Function("Pow", pow),
			gval.Function("Sqrt", sqrt),
		),
	}
}

// Evaluate computes expression and renders the result as text. Every failure,
// whether syntactic or mathematical, is reported as the same invalid-expression
// error; the cause is kept for logging only.
func (e *Evaluator) Evaluate(ctx context.Context, expression string) (string, error) {
	if strings.TrimSpace(expression) == "" {
		return "", apperr.Validation(constants.InvalidExpression)
	}

	if IsRandomString(expression) {
		s, err := e.random.Generate(ctx)
		if err != nil {
			return "", invalidExpression(err)
		}
		return strings.TrimSpace(s), nil
	}

	value, err := e.lang.Evaluate(PrepareExpression(expression), nil)
	if err != nil {
		return "", invalidExpression(err)
	}

	f, ok := value.(float64)
	if !ok {
		return "", invalidExpression(fmt.Errorf("non-numeric result %v", value))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", invalidExpression(fmt.Errorf("result is not finite"))
	}

	result := strconv.FormatFloat(f, 'f', -1, 64)
	if _, err = strconv.ParseFloat(result, 64); err != nil {
		return "", invalidExpression(err)
	}
	return result, nil
}

// PrepareExpression rewrites the √ and ^ notations into Sqrt and Pow calls.
func PrepareExpression(expression string) string {
	expression = sqrtOfNumber.ReplaceAllString(expression, "Sqrt($1)")
	expression = strings.ReplaceAll(expression, "√", "Sqrt")
	expression = infixPow.ReplaceAllString(expression, "Pow($1, $2)")
	expression = prefixPow.ReplaceAllString(expression, "Pow($1, $2)")
	return expression
}

func invalidExpression(cause error) error {
	return &apperr.Error{Kind: apperr.KindValidation, Message: constants.InvalidExpression, Err: cause}
}

func pow(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("Pow expects 2 arguments, got %d", len(args))
	}
	base, err := toFloat(args[0])
	if err != nil {
		return nil, err
	}
	exp, err := toFloat(args[1])
	if err != nil {
		return nil, err
	}
	return math.Pow(base, exp), nil
}

func sqrt(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("Sqrt expects 1 argument, got %d", len(args))
	}
	x, err := toFloat(args[0])
	if err != nil {
		return nil, err
	}
	if x < 0 {
		return nil, fmt.Errorf("square root of negative number")
	}
	return math.Sqrt(x), nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}
