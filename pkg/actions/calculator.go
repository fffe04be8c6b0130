package actions

import (
	"context"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

// calcEnv extends the expr builtins with common math functions.
var calcEnv = map[string]any{
	"pi":   math.Pi,
	"e":    math.E,
	"sqrt": math.Sqrt,
	"pow":  math.Pow,
	"log":  math.Log,
	"exp":  math.Exp,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
}

// Calculator evaluates the "expression" parameter as an arithmetic expression.
type Calculator struct{}

// NewCalculator creates a calculator action.
func NewCalculator() Calculator {
	return Calculator{}
}

// Invoke evaluates the expression.
func (Calculator) Invoke(ctx context.Context, params map[string]any) (any, error) {
	expression, _ := params["expression"].(string)
	value, err := Evaluate(expression)
	if err != nil {
		return fmt.Sprintf("Could not calculate expression: %v", err), nil
	}
	return fmt.Sprintf("Result: %v", value), nil
}

// Evaluate computes an arithmetic expression. Variables other than the math
// constants are rejected.
func Evaluate(expression string) (any, error) {
	program, err := expr.Compile(expression, expr.Env(calcEnv))
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(program, calcEnv)
	if err != nil {
		return nil, err
	}
	if f, ok := out.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return nil, fmt.Errorf("result is not a finite number: %v", f)
	}
	return out, nil
}
