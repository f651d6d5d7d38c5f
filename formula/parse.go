package formula

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ava12/llx/lexer"
	"github.com/ava12/llx/parser"
	"github.com/midbel/recalc/layout"
	"github.com/midbel/recalc/value"
	"github.com/shopspring/decimal"
)

func newNode(_ context.Context, node string, _ *lexer.Token, _ *parser.NodeContext) (parser.NodeHookInstance, error) {
	switch node {
	case "formula", "prim", "group":
		return &passNode{}, nil
	case "cmp", "cat", "sum", "mul":
		return &chainNode{}, nil
	case "una":
		return &unaryNode{}, nil
	case "term":
		return &termNode{}, nil
	case "endref":
		return &termNode{refOnly: true}, nil
	case "span":
		return &spanNode{}, nil
	case "qual":
		return &qualNode{}, nil
	case "args":
		return &argsNode{}, nil
	default:
		return nil, fmt.Errorf("%s: unexpected grammar node", node)
	}
}

// passNode forwards its single meaningful child: the formula root, a
// parenthesized group or a primary.
type passNode struct {
	expr Expr
}

func (n *passNode) NewNode(string, *lexer.Token) error {
	return nil
}

func (n *passNode) HandleNode(_ string, result any) error {
	if e, ok := result.(Expr); ok {
		n.expr = e
	}
	return nil
}

func (n *passNode) HandleToken(token *lexer.Token) error {
	switch token.TypeName() {
	case "number":
		d, err := decimal.NewFromString(token.Text())
		if err != nil {
			return fmt.Errorf("%s: invalid number", token.Text())
		}
		n.expr = number{value: d}
	case "string":
		text := token.Text()
		n.expr = literal{value: text[1 : len(text)-1]}
	case "error":
		e, ok := value.ErrorFromLiteral(token.Text())
		if !ok {
			return fmt.Errorf("%s: unknown error literal", token.Text())
		}
		n.expr = errLit{code: e.Code()}
	}
	return nil
}

func (n *passNode) EndNode() (any, error) {
	return n.expr, nil
}

// chainNode folds a left-associative operator chain into nested binary
// expressions.
type chainNode struct {
	expr   Expr
	lastOp Op
}

func (n *chainNode) NewNode(string, *lexer.Token) error {
	return nil
}

func (n *chainNode) HandleNode(_ string, result any) error {
	e, ok := result.(Expr)
	if !ok {
		return nil
	}
	if n.expr == nil {
		n.expr = e
		return nil
	}
	n.expr = binary{
		left:  n.expr,
		right: e,
		op:    n.lastOp,
	}
	return nil
}

func (n *chainNode) HandleToken(token *lexer.Token) error {
	op, ok := opFromSymbol(token.Text())
	if !ok {
		return fmt.Errorf("%s: unexpected operator", token.Text())
	}
	n.lastOp = op
	return nil
}

func (n *chainNode) EndNode() (any, error) {
	return n.expr, nil
}

type unaryNode struct {
	ops  []Op
	expr Expr
}

func (n *unaryNode) NewNode(string, *lexer.Token) error {
	return nil
}

func (n *unaryNode) HandleNode(_ string, result any) error {
	if e, ok := result.(Expr); ok {
		n.expr = e
	}
	return nil
}

func (n *unaryNode) HandleToken(token *lexer.Token) error {
	op, ok := opFromSymbol(token.Text())
	if !ok || (op != opAdd && op != opSub) {
		return fmt.Errorf("%s: unexpected sign", token.Text())
	}
	n.ops = append(n.ops, op)
	return nil
}

func (n *unaryNode) EndNode() (any, error) {
	expr := n.expr
	for i := len(n.ops) - 1; i >= 0; i-- {
		expr = unary{expr: expr, op: n.ops[i]}
	}
	return expr, nil
}

type qualResult struct {
	name string
	span *cellAddr
}

type argsResult struct {
	list []Expr
}

type spanResult struct {
	addr cellAddr
}

// termNode assembles the reference-or-call shapes: a bare identifier, a
// cell address, a sheet-qualified address, a range or a function call.
type termNode struct {
	sheet   *string
	ident   string
	tail    any
	refOnly bool
}

func (n *termNode) NewNode(string, *lexer.Token) error {
	return nil
}

func (n *termNode) HandleNode(_ string, result any) error {
	n.tail = result
	return nil
}

func (n *termNode) HandleToken(token *lexer.Token) error {
	switch token.TypeName() {
	case "qsheet":
		text := token.Text()
		name := text[1 : len(text)-1]
		n.sheet = &name
	case "ident":
		n.ident = token.Text()
	}
	return nil
}

func (n *termNode) EndNode() (any, error) {
	if n.refOnly {
		if n.sheet != nil {
			return buildRef(*n.sheet, n.ident, nil)
		}
		addr, err := cellFromIdent(n.ident)
		if err != nil {
			return nil, err
		}
		return addr, nil
	}
	if n.sheet != nil {
		return buildRef(*n.sheet, n.ident, n.tail)
	}
	switch tail := n.tail.(type) {
	case qualResult:
		var tailSpan any
		if tail.span != nil {
			tailSpan = spanResult{addr: *tail.span}
		}
		return buildRef(n.ident, tail.name, tailSpan)
	case argsResult:
		return call{name: n.ident, args: tail.list}, nil
	case spanResult:
		start, err := cellFromIdent(n.ident)
		if err != nil {
			return nil, err
		}
		return rangeAddr{startAddr: start, endAddr: tail.addr}, nil
	default:
		if strings.EqualFold(n.ident, "true") {
			return boolean{value: true}, nil
		}
		if strings.EqualFold(n.ident, "false") {
			return boolean{value: false}, nil
		}
		addr, err := cellFromIdent(n.ident)
		if err != nil {
			return nil, err
		}
		return addr, nil
	}
}

func buildRef(sheet, addr string, tail any) (any, error) {
	if sheet == "" || strings.Contains(sheet, "'") {
		return nil, fmt.Errorf("%s: invalid sheet name", sheet)
	}
	start, err := cellFromIdent(addr)
	if err != nil {
		return nil, err
	}
	start.Sheet = sheet
	if span, ok := tail.(spanResult); ok {
		return rangeAddr{startAddr: start, endAddr: span.addr}, nil
	}
	return start, nil
}

var cellIdent = regexp.MustCompile(`^\$?[A-Za-z]+\$?[1-9][0-9]*$`)

func cellFromIdent(ident string) (cellAddr, error) {
	if !cellIdent.MatchString(ident) {
		return cellAddr{}, fmt.Errorf("%s: not a cell reference", ident)
	}
	ref, err := layout.ParseAddr(ident)
	if err != nil {
		return cellAddr{}, err
	}
	return cellAddr{Ref: ref}, nil
}

type spanNode struct {
	addr *cellAddr
}

func (n *spanNode) NewNode(string, *lexer.Token) error {
	return nil
}

func (n *spanNode) HandleNode(_ string, result any) error {
	if addr, ok := result.(cellAddr); ok {
		n.addr = &addr
	}
	return nil
}

func (n *spanNode) HandleToken(*lexer.Token) error {
	return nil
}

func (n *spanNode) EndNode() (any, error) {
	if n.addr == nil {
		return nil, fmt.Errorf("range is missing its second corner")
	}
	return spanResult{addr: *n.addr}, nil
}

type qualNode struct {
	name string
	span *cellAddr
}

func (n *qualNode) NewNode(string, *lexer.Token) error {
	return nil
}

func (n *qualNode) HandleNode(_ string, result any) error {
	if span, ok := result.(spanResult); ok {
		n.span = &span.addr
	}
	return nil
}

func (n *qualNode) HandleToken(token *lexer.Token) error {
	if token.TypeName() == "ident" {
		n.name = token.Text()
	}
	return nil
}

func (n *qualNode) EndNode() (any, error) {
	return qualResult{name: n.name, span: n.span}, nil
}

type argsNode struct {
	list []Expr
}

func (n *argsNode) NewNode(string, *lexer.Token) error {
	return nil
}

func (n *argsNode) HandleNode(_ string, result any) error {
	if e, ok := result.(Expr); ok {
		n.list = append(n.list, e)
	}
	return nil
}

func (n *argsNode) HandleToken(*lexer.Token) error {
	return nil
}

func (n *argsNode) EndNode() (any, error) {
	return argsResult{list: n.list}, nil
}
