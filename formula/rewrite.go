package formula

import (
	"strings"

	"github.com/midbel/recalc/value"
)

// Shift clones the expression, moving every relative reference part by
// the given column and row deltas. A reference pushed outside the legal
// coordinate range is replaced by the #REF! error literal.
func Shift(expr Expr, cols, lines int64) Expr {
	switch x := expr.(type) {
	case cellAddr:
		x.Ref = x.Ref.Shift(cols, lines)
		if !x.Ref.Position.Valid() {
			return errLit{code: value.BadRef}
		}
		return x
	case rangeAddr:
		x.startAddr.Ref = x.startAddr.Ref.Shift(cols, lines)
		x.endAddr.Ref = x.endAddr.Ref.Shift(cols, lines)
		if !x.startAddr.Position.Valid() || !x.endAddr.Position.Valid() {
			return errLit{code: value.BadRef}
		}
		return x
	case unary:
		x.expr = Shift(x.expr, cols, lines)
		return x
	case binary:
		x.left = Shift(x.left, cols, lines)
		x.right = Shift(x.right, cols, lines)
		return x
	case call:
		args := make([]Expr, len(x.args))
		for i := range x.args {
			args[i] = Shift(x.args[i], cols, lines)
		}
		x.args = args
		return x
	default:
		return expr
	}
}

// RenameSheet clones the expression, replacing every sheet qualifier
// matching old (ignoring case) with the new display name. Quoting is
// re-derived from the new name when the expression is serialized again.
// String literals are untouched, which is the point of rewriting the
// syntax tree instead of the formula text.
func RenameSheet(expr Expr, old, name string) (Expr, bool) {
	switch x := expr.(type) {
	case cellAddr:
		if strings.EqualFold(x.Sheet, old) && x.Sheet != "" {
			x.Sheet = name
			return x, true
		}
		return x, false
	case rangeAddr:
		var changed bool
		if strings.EqualFold(x.startAddr.Sheet, old) && x.startAddr.Sheet != "" {
			x.startAddr.Sheet = name
			changed = true
		}
		if strings.EqualFold(x.endAddr.Sheet, old) && x.endAddr.Sheet != "" {
			x.endAddr.Sheet = name
			changed = true
		}
		return x, changed
	case unary:
		expr, changed := RenameSheet(x.expr, old, name)
		x.expr = expr
		return x, changed
	case binary:
		left, lc := RenameSheet(x.left, old, name)
		right, rc := RenameSheet(x.right, old, name)
		x.left, x.right = left, right
		return x, lc || rc
	case call:
		var changed bool
		args := make([]Expr, len(x.args))
		for i := range x.args {
			arg, c := RenameSheet(x.args[i], old, name)
			args[i] = arg
			changed = changed || c
		}
		x.args = args
		return x, changed
	default:
		return expr, false
	}
}

// References reports whether the expression contains a reference
// qualified by the given sheet name, ignoring case.
func References(expr Expr, sheet string) bool {
	_, changed := RenameSheet(expr, sheet, sheet)
	return changed
}
