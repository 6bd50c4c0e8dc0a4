package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses expression text.
//
//	expr    := term (('+'|'-') term)*
//	term    := unary (('*'|'/'|'%') unary)*
//	unary   := '-' unary | '+' unary | primary
//	primary := number | '$rank' | '$rand' | '$' digits | '(' expr ')'
//
// A minus applied directly to a number literal is folded into a negative Const.
func Parse(src string) (Expr, error) {
	p := &exprParser{src: src}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf(0, "empty expression")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf(p.pos, "unexpected %q", p.src[p.pos])
	}
	return e, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level literals.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) eof() bool { return p.pos >= len(p.src) }

func (p *exprParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) errorf(off int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Src: p.src, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func (p *exprParser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		c := p.peek()
		if c != '+' && c != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: Op(c), X: left, Y: right}
	}
}

func (p *exprParser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		c := p.peek()
		if c != '*' && c != '/' && c != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: Op(c), X: left, Y: right}
	}
}

func (p *exprParser) parseUnary() (Expr, error) {
	p.skipSpace()
	switch p.peek() {
	case '-':
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if c, ok := x.(Const); ok && c.Value >= 0 {
			return Const{Value: -c.Value}, nil
		}
		return &Unary{Op: OpSub, X: x}, nil
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (Expr, error) {
	p.skipSpace()
	start := p.pos
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf(start, "unexpected end of expression")
	case c == '(':
		p.pos++
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errorf(p.pos, "missing ')'")
		}
		p.pos++
		return e, nil
	case c == '$':
		return p.parseVariable()
	case isDigit(c) || c == '.':
		return p.parseNumber()
	default:
		return nil, p.errorf(start, "unexpected %q", c)
	}
}

func (p *exprParser) parseVariable() (Expr, error) {
	start := p.pos
	p.pos++ // '$'
	nameStart := p.pos
	for !p.eof() && (isDigit(p.src[p.pos]) || isLetter(p.src[p.pos])) {
		p.pos++
	}
	name := p.src[nameStart:p.pos]
	switch {
	case name == "rank":
		return Rank{}, nil
	case name == "rand":
		return Rand{}, nil
	case name != "" && strings.Trim(name, "0123456789") == "":
		n, err := strconv.Atoi(name)
		if err != nil || n < 1 {
			return nil, p.errorf(start, "invalid parameter $%s", name)
		}
		return Param{Index: n}, nil
	case name == "":
		return nil, p.errorf(start, "missing variable name after '$'")
	default:
		return nil, p.errorf(start, "unknown variable $%s", name)
	}
}

func (p *exprParser) parseNumber() (Expr, error) {
	start := p.pos
	for !p.eof() && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.peek() == '.' {
		p.pos++
		for !p.eof() && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		save := p.pos
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if !isDigit(p.peek()) {
			// Not an exponent after all; leave it for the caller to reject.
			p.pos = save
		}
		for !p.eof() && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	text := p.src[start:p.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf(start, "invalid number %q", text)
	}
	return Const{Value: v}, nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' }
