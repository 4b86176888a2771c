package expr

import (
	"fmt"
	"strings"

	"github.com/huangsam/trackstat/schema"
)

// SyntaxError reports malformed source text. Line and Col are 1-based.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// UnknownFunctionError reports a call to a function that is not registered.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function '%s'", e.Name)
}

// ArgMissingError reports a required argument that was not supplied.
type ArgMissingError struct {
	Function string
	Index    int
	Expected ValueKind
}

func (e *ArgMissingError) Error() string {
	return fmt.Sprintf("%s: missing argument %d (expected %s)", e.Function, e.Index, e.Expected)
}

// WrongArgDatatypeError reports an argument of the wrong kind.
type WrongArgDatatypeError struct {
	Function string
	Index    int
	Actual   ValueKind
	Expected []ValueKind
}

func (e *WrongArgDatatypeError) Error() string {
	names := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		names[i] = k.String()
	}
	return fmt.Sprintf("%s: argument %d is %s, expected %s", e.Function, e.Index, e.Actual, strings.Join(names, " or "))
}

// TooManyArgsError reports more arguments than the function accepts.
type TooManyArgsError struct {
	Function string
	Expected int
	Actual   int
}

func (e *TooManyArgsError) Error() string {
	return fmt.Sprintf("%s: expected %d arguments, got %d", e.Function, e.Expected, e.Actual)
}

// WrongDataTypeError reports a series whose declared data type the function does not accept.
type WrongDataTypeError struct {
	Function string
	Actual   schema.DataType
	Expected []schema.DataType
}

func (e *WrongDataTypeError) Error() string {
	names := make([]string, len(e.Expected))
	for i, t := range e.Expected {
		names[i] = t.String()
	}
	return fmt.Sprintf("%s: series is %s, expected %s", e.Function, e.Actual, strings.Join(names, " or "))
}

// UndefinedVariableError reports a read of, or assignment to, an undeclared variable.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable '%s'", e.Name)
}

// RedeclaredVariableError reports a var declaration of a name that already exists.
type RedeclaredVariableError struct {
	Name string
}

func (e *RedeclaredVariableError) Error() string {
	return fmt.Sprintf("variable '%s' already declared", e.Name)
}

// TypeMismatchError reports an operator applied to operands it does not support.
// Right is nil for unary operators.
type TypeMismatchError struct {
	Op    string
	Left  ValueKind
	Right *ValueKind
}

func (e *TypeMismatchError) Error() string {
	if e.Right == nil {
		return fmt.Sprintf("operator '%s' not defined for %s", e.Op, e.Left)
	}
	return fmt.Sprintf("operator '%s' not defined for %s and %s", e.Op, e.Left, *e.Right)
}
