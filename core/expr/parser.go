package expr

import (
	"fmt"
	"math"
	"time"
)

// Duration literal units, singular and plural.
var durationUnits = map[string]time.Duration{
	"second":  time.Second,
	"seconds": time.Second,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"week":    7 * 24 * time.Hour,
	"weeks":   7 * 24 * time.Hour,
}

type parser struct {
	tokens []Token
	pos    int
}

// Parse turns source text into a Program.
func Parse(code string) (*Program, error) {
	tokens, err := Lex(code)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.program()
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expected %s, found %s", kind, describe(tok))
	}
	return p.advance(), nil
}

func describe(tok Token) string {
	switch tok.Kind {
	case IdentToken:
		return fmt.Sprintf("identifier '%s'", tok.Text)
	case Number:
		return fmt.Sprintf("number %s", tok.Text)
	case String:
		return fmt.Sprintf("string %q", tok.Text)
	default:
		return tok.Kind.String()
	}
}

func isSeparator(kind TokenKind) bool {
	return kind == Newline || kind == Semicolon
}

func (p *parser) program() (*Program, error) {
	prog := &Program{}
	for {
		for isSeparator(p.peek().Kind) {
			p.advance()
		}
		if p.peek().Kind == EOF {
			return prog, nil
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)

		tok := p.peek()
		if !isSeparator(tok.Kind) && tok.Kind != EOF {
			return nil, p.errorf(tok, "expected end of statement, found %s", describe(tok))
		}
	}
}

func (p *parser) statement() (Statement, error) {
	tok := p.peek()
	switch {
	case tok.Kind == Var:
		p.advance()
		name, err := p.expect(IdentToken)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(Assign); err != nil {
			return nil, err
		}
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &VarDecl{Pos: Pos{tok.Line, tok.Col}, Name: name.Text, Value: value}, nil
	case tok.Kind == IdentToken && p.peekAt(1).Kind == Assign:
		p.advance()
		p.advance()
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Pos: Pos{tok.Line, tok.Col}, Name: tok.Text, Value: value}, nil
	default:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: e}, nil
	}
}

func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == Plus || p.peek().Kind == Minus {
		op := p.advance()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &Binary{Pos: Pos{op.Line, op.Col}, Op: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == Star || p.peek().Kind == Slash {
		op := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Pos: Pos{op.Line, op.Col}, Op: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (Expr, error) {
	if tok := p.peek(); tok.Kind == Minus {
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Pos: Pos{tok.Line, tok.Col}, Op: Minus, Operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()
	pos := Pos{tok.Line, tok.Col}
	switch tok.Kind {
	case Number:
		p.advance()
		if next := p.peek(); next.Kind == IdentToken {
			if unit, ok := durationUnits[next.Text]; ok {
				p.advance()
				d := tok.Num * float64(unit)
				if d >= math.MaxInt64 || d <= math.MinInt64 {
					return nil, p.errorf(tok, "duration %s %s out of range", tok.Text, next.Text)
				}
				return &DurationLit{Pos: pos, Value: time.Duration(d)}, nil
			}
		}
		return &NumberLit{Pos: pos, Value: tok.Num}, nil
	case String:
		p.advance()
		return &StringLit{Pos: pos, Value: tok.Text}, nil
	case IdentToken:
		p.advance()
		if p.peek().Kind != LParen {
			return &Ident{Pos: pos, Name: tok.Text}, nil
		}
		p.advance()
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		return &Call{Pos: pos, Name: tok.Text, Args: args}, nil
	case LParen:
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.errorf(tok, "unexpected %s", describe(tok))
	}
}

// args parses a comma separated argument list after the opening parenthesis.
func (p *parser) args() ([]Expr, error) {
	var args []Expr
	if p.peek().Kind == RParen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.peek()
		switch tok.Kind {
		case Comma:
			p.advance()
		case RParen:
			p.advance()
			return args, nil
		default:
			return nil, p.errorf(tok, "expected ',' or ')', found %s", describe(tok))
		}
	}
}
