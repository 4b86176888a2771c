package expr

import "time"

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

// Program is a parsed sequence of statements.
type Program struct {
	Statements []Statement
}

// Statement is a node executed for its effect on the environment.
type Statement interface {
	stmtNode()
	Position() Pos
}

// Expr is a node that evaluates to a Value.
type Expr interface {
	exprNode()
	Position() Pos
}

// VarDecl declares a new variable: var Name = Value.
type VarDecl struct {
	Pos
	Name  string
	Value Expr
}

// AssignStmt rebinds an existing variable: Name = Value.
type AssignStmt struct {
	Pos
	Name  string
	Value Expr
}

// ExprStmt evaluates an expression and discards the result.
type ExprStmt struct {
	Expr Expr
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Pos
	Value float64
}

// DurationLit is a number followed by a time unit, e.g. "2 hours".
type DurationLit struct {
	Pos
	Value time.Duration
}

// StringLit is a quoted string.
type StringLit struct {
	Pos
	Value string
}

// Ident references a variable.
type Ident struct {
	Pos
	Name string
}

// Call invokes a built-in function.
type Call struct {
	Pos
	Name string
	Args []Expr
}

// Binary applies an arithmetic operator to two operands.
type Binary struct {
	Pos
	Op    TokenKind
	Left  Expr
	Right Expr
}

// Unary applies a prefix operator.
type Unary struct {
	Pos
	Op      TokenKind
	Operand Expr
}

// Position returns the node position.
func (p Pos) Position() Pos { return p }

// Position returns the position of the wrapped expression.
func (s *ExprStmt) Position() Pos { return s.Expr.Position() }

func (*VarDecl) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}

func (*NumberLit) exprNode()   {}
func (*DurationLit) exprNode() {}
func (*StringLit) exprNode()   {}
func (*Ident) exprNode()       {}
func (*Call) exprNode()        {}
func (*Binary) exprNode()      {}
func (*Unary) exprNode()       {}
