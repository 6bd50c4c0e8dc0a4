package expr

import (
	"strconv"
	"strings"
)

// Op is a binary or unary arithmetic operator.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
	OpMod Op = '%'
)

// String returns the operator symbol.
func (o Op) String() string {
	return string(rune(o))
}

// precedence of binary operators; higher binds tighter.
func (o Op) precedence() int {
	switch o {
	case OpMul, OpDiv, OpMod:
		return 2
	default:
		return 1
	}
}

// Expr is a node of the expression AST.
// Only the types in this package implement it.
type Expr interface {
	String() string
	exprNode()
}

// Const is a numeric literal.
type Const struct {
	Value float64
}

// Rank is the $rank variable.
type Rank struct{}

// Rand is the $rand variable.
type Rand struct{}

// Param is a $N parameter reference. Index is 1-based.
type Param struct {
	Index int
}

// Unary is a prefix operator applied to X. Only OpSub is produced by Parse.
type Unary struct {
	Op Op
	X  Expr
}

// Binary is X Op Y.
type Binary struct {
	Op Op
	X  Expr
	Y  Expr
}

func (Const) exprNode()   {}
func (Rank) exprNode()    {}
func (Rand) exprNode()    {}
func (Param) exprNode()   {}
func (*Unary) exprNode()  {}
func (*Binary) exprNode() {}

func (c Const) String() string {
	return strconv.FormatFloat(c.Value, 'g', -1, 64)
}

func (Rank) String() string { return "$rank" }

func (Rand) String() string { return "$rand" }

func (p Param) String() string {
	return "$" + strconv.Itoa(p.Index)
}

func (u *Unary) String() string {
	var b strings.Builder
	b.WriteString(u.Op.String())
	writeOperand(&b, u.X, 3, false)
	return b.String()
}

func (e *Binary) String() string {
	var b strings.Builder
	prec := e.Op.precedence()
	writeOperand(&b, e.X, prec, false)
	b.WriteByte(' ')
	b.WriteString(e.Op.String())
	b.WriteByte(' ')
	writeOperand(&b, e.Y, prec, true)
	return b.String()
}

// writeOperand prints x, parenthesised when its own precedence is too low to
// sit in a slot of the given precedence. Right operands also need parentheses
// at equal precedence because every operator is left-associative.
func writeOperand(b *strings.Builder, x Expr, prec int, right bool) {
	p := nodePrecedence(x)
	if p < prec || (right && p == prec) {
		b.WriteByte('(')
		b.WriteString(x.String())
		b.WriteByte(')')
		return
	}
	b.WriteString(x.String())
}

func nodePrecedence(x Expr) int {
	switch n := x.(type) {
	case *Binary:
		return n.Op.precedence()
	case *Unary:
		return 3
	case Const:
		if n.Value < 0 {
			// A negative literal prints with a leading minus, like a unary node.
			return 3
		}
		return 4
	default:
		return 4
	}
}

// MaxParam returns the highest $N referenced by e, or 0 if none.
func MaxParam(e Expr) int {
	switch n := e.(type) {
	case Param:
		return n.Index
	case *Unary:
		return MaxParam(n.X)
	case *Binary:
		return max(MaxParam(n.X), MaxParam(n.Y))
	default:
		return 0
	}
}

// IsConst reports whether e contains no variables.
func IsConst(e Expr) bool {
	switch n := e.(type) {
	case Const:
		return true
	case *Unary:
		return IsConst(n.X)
	case *Binary:
		return IsConst(n.X) && IsConst(n.Y)
	default:
		return false
	}
}

// Equal reports structural equality of two expressions.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Const:
		y, ok := b.(Const)
		return ok && (x.Value == y.Value || (x.Value != x.Value && y.Value != y.Value))
	case Rank:
		_, ok := b.(Rank)
		return ok
	case Rand:
		_, ok := b.(Rand)
		return ok
	case Param:
		y, ok := b.(Param)
		return ok && x.Index == y.Index
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.Op == y.Op && Equal(x.X, y.X)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && Equal(x.X, y.X) && Equal(x.Y, y.Y)
	default:
		return a == nil && b == nil
	}
}
