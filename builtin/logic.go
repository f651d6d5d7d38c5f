package builtin

import (
	"strings"

	"github.com/midbel/recalc/value"
)

func callAnd(_ Context, args []Arg) value.Value {
	for _, a := range args {
		v := a.Eval()
		if value.IsError(v) {
			return v
		}
		ok, err := value.CastToBool(v)
		if err != nil {
			return value.ErrValue
		}
		if !ok {
			return value.Boolean(false)
		}
	}
	return value.Boolean(true)
}

func callOr(_ Context, args []Arg) value.Value {
	for _, a := range args {
		v := a.Eval()
		if value.IsError(v) {
			return v
		}
		ok, err := value.CastToBool(v)
		if err != nil {
			return value.ErrValue
		}
		if ok {
			return value.Boolean(true)
		}
	}
	return value.Boolean(false)
}

func callNot(_ Context, args []Arg) value.Value {
	v := args[0].Eval()
	if value.IsError(v) {
		return v
	}
	ok, err := value.CastToBool(v)
	if err != nil {
		return value.ErrValue
	}
	return value.Boolean(!ok)
}

func callXor(_ Context, args []Arg) value.Value {
	var result bool
	for _, a := range args {
		v := a.Eval()
		if value.IsError(v) {
			return v
		}
		ok, err := value.CastToBool(v)
		if err != nil {
			return value.ErrValue
		}
		if ok {
			result = !result
		}
	}
	return value.Boolean(result)
}

func callExact(_ Context, args []Arg) value.Value {
	left := args[0].Eval()
	if value.IsError(left) {
		return left
	}
	right := args[1].Eval()
	if value.IsError(right) {
		return right
	}
	s1, err := value.CastToText(left)
	if err != nil {
		return value.ErrValue
	}
	s2, err := value.CastToText(right)
	if err != nil {
		return value.ErrValue
	}
	return value.Boolean(s1 == s2)
}

func callIf(_ Context, args []Arg) value.Value {
	cond := args[0].Eval()
	if value.IsError(cond) {
		return cond
	}
	ok, err := value.CastToBool(cond)
	if err != nil {
		return value.ErrValue
	}
	if ok {
		return args[1].Eval()
	}
	if len(args) == 3 {
		return args[2].Eval()
	}
	return value.Boolean(false)
}

func callIfError(_ Context, args []Arg) value.Value {
	v := args[0].Eval()
	if !value.IsError(v) {
		return v
	}
	if len(args) == 2 {
		return args[1].Eval()
	}
	return value.Text("")
}

func callChoose(_ Context, args []Arg) value.Value {
	v := args[0].Eval()
	if value.IsError(v) {
		return v
	}
	d, err := value.CastToNumber(v)
	if err != nil {
		return value.ErrValue
	}
	if !d.IsInteger() {
		return value.ErrValue
	}
	ix := d.IntPart()
	if ix < 1 || ix > int64(len(args)-1) {
		return value.ErrValue
	}
	return args[ix].Eval()
}

func callIsBlank(_ Context, args []Arg) value.Value {
	v := args[0].Eval()
	return value.Boolean(value.IsBlank(v))
}

func callIsError(_ Context, args []Arg) value.Value {
	v := args[0].Eval()
	return value.Boolean(value.IsError(v))
}

func callVersion(_ Context, _ []Arg) value.Value {
	return value.Text(Version)
}

func callIndirect(ctx Context, args []Arg) value.Value {
	v := args[0].Eval()
	if value.IsError(v) {
		return v
	}
	str, err := value.CastToText(v)
	if err != nil {
		return value.ErrRef
	}
	return ctx.Deref(strings.TrimSpace(str))
}
