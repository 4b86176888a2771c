package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TokenKind identifies a lexical token.
type TokenKind int

// All token kinds produced by the lexer.
const (
	EOF TokenKind = iota
	Newline
	Semicolon
	Number
	String
	IdentToken
	Var
	Plus
	Minus
	Star
	Slash
	LParen
	RParen
	Comma
	Assign
)

var tokenNames = map[TokenKind]string{
	EOF:        "end of input",
	Newline:    "newline",
	Semicolon:  "';'",
	Number:     "number",
	String:     "string",
	IdentToken: "identifier",
	Var:        "'var'",
	Plus:       "'+'",
	Minus:      "'-'",
	Star:       "'*'",
	Slash:      "'/'",
	LParen:     "'('",
	RParen:     "')'",
	Comma:      "','",
	Assign:     "'='",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a lexeme with its 1-based source position.
type Token struct {
	Kind TokenKind
	Text string  // identifier name or decoded string literal
	Num  float64 // value of a Number token
	Line int
	Col  int
}

var punctuation = map[rune]TokenKind{
	';': Semicolon, '+': Plus, '-': Minus, '*': Star, '/': Slash,
	'(': LParen, ')': RParen, ',': Comma, '=': Assign,
}

type lexer struct {
	src   []rune
	pos   int
	line  int
	col   int
	depth int // parenthesis nesting; newlines inside parentheses are insignificant
}

// Lex splits code into tokens, always ending with an EOF token.
func Lex(code string) ([]Token, error) {
	l := &lexer{src: []rune(code), line: 1, col: 1}
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (Token, error) {
	for l.pos < len(l.src) {
		r := l.peek(0)
		switch {
		case r == '#':
			for l.pos < len(l.src) && l.peek(0) != '\n' {
				l.advance()
			}
		case r == '\n' && l.depth == 0:
			tok := Token{Kind: Newline, Line: l.line, Col: l.col}
			l.advance()
			return tok, nil
		case unicode.IsSpace(r):
			l.advance()
		default:
			return l.token()
		}
	}
	return Token{Kind: EOF, Line: l.line, Col: l.col}, nil
}

func (l *lexer) token() (Token, error) {
	line, col := l.line, l.col
	r := l.peek(0)
	if kind, ok := punctuation[r]; ok {
		l.advance()
		switch kind {
		case LParen:
			l.depth++
		case RParen:
			if l.depth > 0 {
				l.depth--
			}
		}
		return Token{Kind: kind, Line: line, Col: col}, nil
	}

	switch {
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peek(1))):
		return l.number(line, col)
	case r == '"' || r == '\'':
		return l.str(line, col)
	case r == '_' || unicode.IsLetter(r):
		var b strings.Builder
		for l.pos < len(l.src) && (l.peek(0) == '_' || unicode.IsLetter(l.peek(0)) || unicode.IsDigit(l.peek(0))) {
			b.WriteRune(l.advance())
		}
		word := b.String()
		if word == "var" {
			return Token{Kind: Var, Text: word, Line: line, Col: col}, nil
		}
		return Token{Kind: IdentToken, Text: word, Line: line, Col: col}, nil
	default:
		return Token{}, l.errorf(line, col, "unexpected character %q", r)
	}
}

func (l *lexer) number(line, col int) (Token, error) {
	start := l.pos
	for unicode.IsDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' {
		l.advance()
		for unicode.IsDigit(l.peek(0)) {
			l.advance()
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		sign := l.peek(1)
		if unicode.IsDigit(sign) || ((sign == '+' || sign == '-') && unicode.IsDigit(l.peek(2))) {
			l.advance()
			if sign == '+' || sign == '-' {
				l.advance()
			}
			for unicode.IsDigit(l.peek(0)) {
				l.advance()
			}
		}
	}
	text := string(l.src[start:l.pos])
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, l.errorf(line, col, "invalid number %q", text)
	}
	return Token{Kind: Number, Text: text, Num: v, Line: line, Col: col}, nil
}

func (l *lexer) str(line, col int) (Token, error) {
	quote := l.advance()
	var b strings.Builder
	for {
		if l.pos >= len(l.src) || l.peek(0) == '\n' {
			return Token{}, l.errorf(line, col, "unterminated string")
		}
		r := l.advance()
		if r == quote {
			return Token{Kind: String, Text: b.String(), Line: line, Col: col}, nil
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if l.pos >= len(l.src) {
			return Token{}, l.errorf(line, col, "unterminated string")
		}
		esc := l.advance()
		switch esc {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case '\\', '"', '\'':
			b.WriteRune(esc)
		default:
			return Token{}, l.errorf(l.line, l.col-2, "invalid escape '\\%c'", esc)
		}
	}
}
