package formula

import (
	"strings"

	"github.com/midbel/recalc/builtin"
	"github.com/midbel/recalc/layout"
	"github.com/midbel/recalc/value"
)

// Context is the evaluator's read-only view of the cell store. Value
// receives canonical positions (lower-case sheet names) and returns the
// stored value of the cell, blank when the cell does not exist.
type Context interface {
	Value(pos layout.Position) value.Value
	Exists(sheet string) bool
}

// Eval walks the expression and returns its value together with the set
// of cells it observed, in first-read order. The owner position supplies
// the sheet for unqualified references. Dependencies are recorded even
// for cells of sheets that do not exist yet, so that creating the sheet
// later reaches the right dependents.
func Eval(expr Expr, owner layout.Position, ctx Context) (value.Value, []layout.Position) {
	env := env{
		ctx:   ctx,
		owner: owner,
		seen:  make(map[layout.Position]struct{}),
	}
	val := env.eval(expr)
	return val, env.deps
}

type env struct {
	ctx   Context
	owner layout.Position
	seen  map[layout.Position]struct{}
	deps  []layout.Position
}

func (e *env) eval(expr Expr) value.Value {
	switch x := expr.(type) {
	case number:
		return value.Num(x.value)
	case literal:
		return value.Text(x.value)
	case boolean:
		return value.Boolean(x.value)
	case errLit:
		return value.NewError(x.code)
	case cellAddr:
		return e.evalCell(x.Ref)
	case rangeAddr:
		// ranges are only meaningful as arguments to range functions
		return value.ErrValue
	case unary:
		return e.evalUnary(x)
	case binary:
		return e.evalBinary(x)
	case call:
		return e.evalCall(x)
	default:
		return value.ErrValue
	}
}

func (e *env) record(pos layout.Position) {
	if _, ok := e.seen[pos]; ok {
		return
	}
	e.seen[pos] = struct{}{}
	e.deps = append(e.deps, pos)
}

func (e *env) evalCell(ref layout.Ref) value.Value {
	pos := ref.Position
	if pos.Sheet == "" {
		pos.Sheet = e.owner.Sheet
	}
	if !pos.Valid() {
		return value.ErrRef
	}
	pos = pos.Canon()
	e.record(pos)
	if !e.ctx.Exists(pos.Sheet) {
		return value.ErrRef
	}
	return e.ctx.Value(pos)
}

func (e *env) evalUnary(x unary) value.Value {
	val := e.eval(x.expr)
	if value.IsError(val) {
		return val
	}
	d, err := value.CastToNumber(val)
	if err != nil {
		return value.ErrValue
	}
	if x.op == opSub {
		d = d.Neg()
	}
	return value.Num(d)
}

func (e *env) evalBinary(x binary) value.Value {
	left := e.eval(x.left)
	right := e.eval(x.right)
	if bad, ok := worstOf(left, right); ok {
		return bad
	}
	switch x.op {
	case opAdd, opSub, opMul, opDiv:
		return evalMath(x.op, left, right)
	case opConcat:
		s1, err := value.CastToText(left)
		if err != nil {
			return value.ErrValue
		}
		s2, err := value.CastToText(right)
		if err != nil {
			return value.ErrValue
		}
		return value.Text(s1 + s2)
	case opEq:
		return value.Boolean(value.Eq(left, right))
	case opNe:
		return value.Boolean(!value.Eq(left, right))
	case opLt:
		return value.Boolean(value.Less(left, right))
	case opGt:
		return value.Boolean(value.Less(right, left))
	case opLe:
		return value.Boolean(!value.Less(right, left))
	case opGe:
		return value.Boolean(!value.Less(left, right))
	default:
		return value.ErrValue
	}
}

func evalMath(op Op, left, right value.Value) value.Value {
	x, err := value.CastToNumber(left)
	if err != nil {
		return value.ErrValue
	}
	y, err := value.CastToNumber(right)
	if err != nil {
		return value.ErrValue
	}
	switch op {
	case opAdd:
		return value.Num(x.Add(y))
	case opSub:
		return value.Num(x.Sub(y))
	case opMul:
		return value.Num(x.Mul(y))
	case opDiv:
		if y.IsZero() {
			return value.ErrDiv0
		}
		return value.Num(x.Div(y))
	default:
		return value.ErrValue
	}
}

func worstOf(left, right value.Value) (value.Value, bool) {
	le, lerr := value.AsError(left)
	re, rerr := value.AsError(right)
	switch {
	case lerr && rerr:
		return value.Worst(le, re), true
	case lerr:
		return le, true
	case rerr:
		return re, true
	}
	return nil, false
}

func (e *env) evalCall(x call) value.Value {
	fn, ok := builtin.Lookup(x.name)
	if !ok {
		return value.ErrName
	}
	if !fn.AcceptsArity(len(x.args)) {
		return value.ErrValue
	}
	args := make([]builtin.Arg, len(x.args))
	for i := range x.args {
		args[i] = lazyArg{env: e, expr: x.args[i]}
	}
	return fn.Call(e, args)
}

// Deref resolves a textual reference handed to INDIRECT against the
// owner's sheet and records the resolved cell as a dependency.
func (e *env) Deref(str string) value.Value {
	ref, err := layout.ParseRef(str)
	if err != nil {
		return value.ErrRef
	}
	return e.evalCell(ref)
}

type lazyArg struct {
	env  *env
	expr Expr
}

func (a lazyArg) Eval() value.Value {
	return a.env.eval(a.expr)
}

func (a lazyArg) Range() (value.Value, bool) {
	r, ok := a.expr.(rangeAddr)
	if !ok {
		return nil, false
	}
	return a.env.evalRange(r), true
}

func (e *env) evalRange(r rangeAddr) value.Value {
	var (
		start = r.startAddr.Position
		end   = r.endAddr.Position
	)
	if start.Sheet == "" {
		start.Sheet = e.owner.Sheet
	}
	if end.Sheet == "" {
		end.Sheet = start.Sheet
	}
	if !start.Valid() || !end.Valid() || !strings.EqualFold(start.Sheet, end.Sheet) {
		return value.ErrRef
	}
	region := layout.NewRange(start.Canon(), end.Canon())
	if !e.ctx.Exists(region.Start.Sheet) {
		for _, pos := range region.Positions() {
			e.record(pos)
		}
		return value.ErrRef
	}
	arr := value.NewArray(int(region.Lines()), int(region.Columns()))
	for i, pos := range region.Positions() {
		e.record(pos)
		arr.Set(i/arr.Cols(), i%arr.Cols(), e.ctx.Value(pos))
	}
	return arr
}
