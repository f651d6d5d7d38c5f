package formula

import (
	"fmt"
	"strings"

	"github.com/midbel/recalc/layout"
	"github.com/midbel/recalc/value"
	"github.com/shopspring/decimal"
)

// Expr is a parsed formula expression. String re-serializes it to valid
// formula text (without the leading equal sign), inserting parentheses
// where precedence demands them.
type Expr interface {
	fmt.Stringer
}

type Op int8

const (
	opAdd Op = iota + 1
	opSub
	opMul
	opDiv
	opConcat
	opEq
	opNe
	opLt
	opLe
	opGt
	opGe
)

func (o Op) symbol() string {
	switch o {
	case opAdd:
		return "+"
	case opSub:
		return "-"
	case opMul:
		return "*"
	case opDiv:
		return "/"
	case opConcat:
		return "&"
	case opEq:
		return "="
	case opNe:
		return "<>"
	case opLt:
		return "<"
	case opLe:
		return "<="
	case opGt:
		return ">"
	case opGe:
		return ">="
	default:
		return "?"
	}
}

func (o Op) level() int {
	switch o {
	case opEq, opNe, opLt, opLe, opGt, opGe:
		return 1
	case opConcat:
		return 2
	case opAdd, opSub:
		return 3
	case opMul, opDiv:
		return 4
	default:
		return 0
	}
}

func opFromSymbol(sym string) (Op, bool) {
	switch sym {
	case "+":
		return opAdd, true
	case "-":
		return opSub, true
	case "*":
		return opMul, true
	case "/":
		return opDiv, true
	case "&":
		return opConcat, true
	case "=", "==":
		return opEq, true
	case "<>", "!=":
		return opNe, true
	case "<":
		return opLt, true
	case "<=":
		return opLe, true
	case ">":
		return opGt, true
	case ">=":
		return opGe, true
	default:
		return 0, false
	}
}

type number struct {
	value decimal.Decimal
}

func (n number) String() string {
	return value.Num(n.value).String()
}

type literal struct {
	value string
}

func (i literal) String() string {
	return fmt.Sprintf("\"%s\"", i.value)
}

type boolean struct {
	value bool
}

func (b boolean) String() string {
	if b.value {
		return "TRUE"
	}
	return "FALSE"
}

type errLit struct {
	code value.ErrorCode
}

func (e errLit) String() string {
	return value.NewError(e.code).String()
}

type cellAddr struct {
	layout.Ref
}

type rangeAddr struct {
	startAddr cellAddr
	endAddr   cellAddr
}

func (a rangeAddr) String() string {
	return fmt.Sprintf("%s:%s", a.startAddr.String(), a.endAddr.String())
}

type binary struct {
	left  Expr
	right Expr
	op    Op
}

func (b binary) String() string {
	var (
		left  = wrap(b.left, b.op.level(), false)
		right = wrap(b.right, b.op.level(), true)
	)
	return fmt.Sprintf("%s %s %s", left, b.op.symbol(), right)
}

type unary struct {
	expr Expr
	op   Op
}

func (u unary) String() string {
	expr := u.expr.String()
	if level(u.expr) < levelUnary {
		expr = "(" + expr + ")"
	}
	return u.op.symbol() + expr
}

type call struct {
	name string
	args []Expr
}

func (c call) String() string {
	var args []string
	for i := range c.args {
		args = append(args, c.args[i].String())
	}
	return fmt.Sprintf("%s(%s)", c.name, strings.Join(args, ", "))
}

const (
	levelUnary = 5
	levelAtom  = 6
)

func level(e Expr) int {
	switch e := e.(type) {
	case binary:
		return e.op.level()
	case unary:
		return levelUnary
	default:
		return levelAtom
	}
}

func wrap(e Expr, parent int, right bool) string {
	str := e.String()
	if b, ok := e.(binary); ok {
		lvl := b.op.level()
		if lvl < parent || (lvl == parent && right) {
			return "(" + str + ")"
		}
	}
	return str
}
