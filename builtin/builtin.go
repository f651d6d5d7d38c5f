// Package builtin holds the worksheet functions of the engine. Every
// function is a pure computation over its arguments; laziness is
// expressed by forcing Arg thunks only when the function's logic needs
// them, so untaken branches contribute no cell dependencies.
package builtin

import (
	"strings"

	"github.com/midbel/recalc/value"
)

// Version reported by the VERSION() worksheet function.
const Version = "1.2.0"

// Arg is an unevaluated function argument. Eval forces it; Range yields
// the values of a cell range argument, reporting whether the argument
// was written as a range at all.
type Arg interface {
	Eval() value.Value
	Range() (value.Value, bool)
}

// Context gives builtins access to the evaluation environment. Deref
// resolves a textual cell reference at call time, recording it as a
// dependency of the calling cell.
type Context interface {
	Deref(ref string) value.Value
}

type Func struct {
	MinArgs int
	MaxArgs int // -1 when variadic
	Call    func(ctx Context, args []Arg) value.Value
}

var registry = map[string]Func{
	"and":      {1, -1, callAnd},
	"or":       {1, -1, callOr},
	"not":      {1, 1, callNot},
	"xor":      {1, -1, callXor},
	"exact":    {2, 2, callExact},
	"if":       {2, 3, callIf},
	"iferror":  {1, 2, callIfError},
	"choose":   {2, -1, callChoose},
	"isblank":  {1, 1, callIsBlank},
	"iserror":  {1, 1, callIsError},
	"version":  {0, 0, callVersion},
	"indirect": {1, 1, callIndirect},
	"min":      {1, -1, callMin},
	"max":      {1, -1, callMax},
	"sum":      {1, -1, callSum},
	"average":  {1, -1, callAverage},
	"hlookup":  {3, 3, callHLookup},
	"vlookup":  {3, 3, callVLookup},
}

// Lookup finds a function by name, ignoring case.
func Lookup(name string) (Func, bool) {
	fn, ok := registry[strings.ToLower(name)]
	return fn, ok
}

// AcceptsArity tells whether the function can be called with n
// arguments.
func (f Func) AcceptsArity(n int) bool {
	if n < f.MinArgs {
		return false
	}
	return f.MaxArgs < 0 || n <= f.MaxArgs
}
