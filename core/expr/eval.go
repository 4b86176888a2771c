package expr

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/huangsam/trackstat/schema"
)

// ResultVariable is the binding preferred by EvaluateResult.
const ResultVariable = "result"

// ErrDurationOverflow is returned when duration arithmetic leaves the representable range.
var ErrDurationOverflow = errors.New("duration out of range")

// Environment maps variable names to their current values.
type Environment map[string]Value

type evaluator struct {
	ctx      context.Context
	env      Environment
	lastDecl string
	last     Value
}

// Evaluate runs code with the given inputs pre-bound and returns every binding.
// The inputs map is never modified.
func Evaluate(ctx context.Context, code string, inputs map[string]Value) (Environment, error) {
	_, env, err := EvaluateResult(ctx, code, inputs)
	return env, err
}

// EvaluateResult is like Evaluate but also picks the script's result: the variable named
// "result" if bound, else the last declared variable, else the last evaluated expression.
// The result is nil when the script produced no value.
func EvaluateResult(ctx context.Context, code string, inputs map[string]Value) (Value, Environment, error) {
	prog, err := Parse(code)
	if err != nil {
		return nil, nil, err
	}
	env := make(Environment, len(inputs))
	maps.Copy(env, inputs)

	ev := &evaluator{ctx: ctx, env: env}
	for _, stmt := range prog.Statements {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := ev.exec(stmt); err != nil {
			return nil, nil, err
		}
	}

	if v, ok := env[ResultVariable]; ok {
		return v, env, nil
	}
	if ev.lastDecl != "" {
		return env[ev.lastDecl], env, nil
	}
	return ev.last, env, nil
}

func (ev *evaluator) exec(stmt Statement) error {
	switch s := stmt.(type) {
	case *VarDecl:
		if _, exists := ev.env[s.Name]; exists {
			return &RedeclaredVariableError{Name: s.Name}
		}
		v, err := ev.eval(s.Value)
		if err != nil {
			return err
		}
		ev.env[s.Name] = v
		ev.lastDecl = s.Name
		ev.last = v
	case *AssignStmt:
		if _, exists := ev.env[s.Name]; !exists {
			return &UndefinedVariableError{Name: s.Name}
		}
		v, err := ev.eval(s.Value)
		if err != nil {
			return err
		}
		ev.env[s.Name] = v
		ev.last = v
	case *ExprStmt:
		v, err := ev.eval(s.Expr)
		if err != nil {
			return err
		}
		ev.last = v
	default:
		return fmt.Errorf("unsupported statement %T", stmt)
	}
	return nil
}

func (ev *evaluator) eval(e Expr) (Value, error) {
	switch n := e.(type) {
	case *NumberLit:
		return NumberValue(n.Value), nil
	case *DurationLit:
		return TimeValue{Duration: n.Value}, nil
	case *StringLit:
		return StringValue(n.Value), nil
	case *Ident:
		v, ok := ev.env[n.Name]
		if !ok {
			return nil, &UndefinedVariableError{Name: n.Name}
		}
		return v, nil
	case *Call:
		return ev.call(n)
	case *Unary:
		operand, err := ev.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		return negate(operand)
	case *Binary:
		left, err := ev.eval(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, left, right)
	default:
		return nil, fmt.Errorf("unsupported expression %T", e)
	}
}

func (ev *evaluator) call(c *Call) (Value, error) {
	fn, ok := LookupFunction(c.Name)
	if !ok {
		return nil, &UnknownFunctionError{Name: c.Name}
	}
	args := make([]Value, len(c.Args))
	for i, arg := range c.Args {
		v, err := ev.eval(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if err := ev.ctx.Err(); err != nil {
		return nil, err
	}
	return fn.Call(args)
}

func negate(v Value) (Value, error) {
	switch x := v.(type) {
	case NumberValue:
		return -x, nil
	case TimeValue:
		return TimeValue{Duration: -x.Duration}, nil
	default:
		return nil, &TypeMismatchError{Op: "-", Left: v.Kind()}
	}
}

func binary(op TokenKind, left, right Value) (Value, error) {
	mismatch := func() error {
		rk := right.Kind()
		return &TypeMismatchError{Op: opSymbol(op), Left: left.Kind(), Right: &rk}
	}

	switch l := left.(type) {
	case NumberValue:
		switch r := right.(type) {
		case NumberValue:
			return NumberValue(applyNumber(op, float64(l), float64(r))), nil
		case TimeValue:
			if op != Star {
				return nil, mismatch()
			}
			return scaleDuration(r.Duration, float64(l))
		case DatapointsValue:
			return r.mapValues(func(v float64) float64 { return applyNumber(op, float64(l), v) }), nil
		}
	case TimeValue:
		switch r := right.(type) {
		case TimeValue:
			switch op {
			case Plus:
				return addDurations(l.Duration, r.Duration)
			case Minus:
				return addDurations(l.Duration, -r.Duration)
			case Slash:
				return NumberValue(float64(l.Duration) / float64(r.Duration)), nil
			}
		case NumberValue:
			switch op {
			case Star:
				return scaleDuration(l.Duration, float64(r))
			case Slash:
				return scaleDuration(l.Duration, 1/float64(r))
			}
		}
	case DatapointsValue:
		if r, ok := right.(NumberValue); ok {
			return l.mapValues(func(v float64) float64 { return applyNumber(op, v, float64(r)) }), nil
		}
	}
	return nil, mismatch()
}

func applyNumber(op TokenKind, a, b float64) float64 {
	switch op {
	case Plus:
		return a + b
	case Minus:
		return a - b
	case Star:
		return a * b
	default:
		return a / b
	}
}

func scaleDuration(d time.Duration, factor float64) (Value, error) {
	scaled := float64(d) * factor
	if math.IsNaN(scaled) || scaled >= math.MaxInt64 || scaled <= math.MinInt64 {
		return nil, ErrDurationOverflow
	}
	return TimeValue{Duration: time.Duration(scaled)}, nil
}

func addDurations(a, b time.Duration) (Value, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return nil, ErrDurationOverflow
	}
	return TimeValue{Duration: sum}, nil
}

func opSymbol(op TokenKind) string {
	switch op {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	default:
		return op.String()
	}
}

// ToBindings flattens an environment into name-sorted bindings for output writers.
func ToBindings(env Environment) []schema.EvalBinding {
	names := slices.Sorted(maps.Keys(env))
	out := make([]schema.EvalBinding, 0, len(names))
	for _, name := range names {
		out = append(out, ToBinding(name, env[name]))
	}
	return out
}

// ToBinding describes a single value.
func ToBinding(name string, v Value) schema.EvalBinding {
	b := schema.EvalBinding{Name: name, Kind: v.Kind().String(), Summary: v.String()}
	switch x := v.(type) {
	case NumberValue:
		n := float64(x)
		b.Number = &n
	case TimeValue:
		b.Duration = x.Duration.String()
	case StringValue:
		b.Text = string(x)
	case DatapointsValue:
		b.DataType = x.DataType.String()
		b.Points = x.Points
	}
	return b
}

// SeriesInput wraps raw points as an expression input.
func SeriesInput(points []schema.DataPoint, dataType schema.DataType, regularity schema.Regularity) DatapointsValue {
	return DatapointsValue{Points: points, DataType: dataType, Regularity: regularity}
}
