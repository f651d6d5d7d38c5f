package builtin

import (
	"testing"

	"github.com/midbel/recalc/value"
	"github.com/shopspring/decimal"
)

type scalarArg struct {
	v      value.Value
	forced *bool
}

func (a scalarArg) Eval() value.Value {
	if a.forced != nil {
		*a.forced = true
	}
	return a.v
}

func (a scalarArg) Range() (value.Value, bool) {
	return nil, false
}

type rangeArg struct {
	arr value.Array
}

func (a rangeArg) Eval() value.Value {
	return value.ErrValue
}

func (a rangeArg) Range() (value.Value, bool) {
	return a.arr, true
}

type noDeref struct{}

func (noDeref) Deref(string) value.Value {
	return value.ErrRef
}

func num(str string) value.Value {
	d, err := decimal.NewFromString(str)
	if err != nil {
		panic(err)
	}
	return value.Num(d)
}

func args(vs ...value.Value) []Arg {
	list := make([]Arg, len(vs))
	for i := range vs {
		list[i] = scalarArg{v: vs[i]}
	}
	return list
}

func grid(rows, cols int, vs ...value.Value) []Arg {
	arr := value.NewArray(rows, cols)
	for i, v := range vs {
		arr.Set(i/cols, i%cols, v)
	}
	return []Arg{rangeArg{arr: arr}}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	for _, name := range []string{"sum", "SUM", "Sum"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("%s should resolve", name)
		}
	}
	if _, ok := Lookup("nosuch"); ok {
		t.Errorf("unknown names should not resolve")
	}
}

func TestAndOrShortCircuit(t *testing.T) {
	var forced bool
	list := []Arg{
		scalarArg{v: value.Boolean(false)},
		scalarArg{v: num("1"), forced: &forced},
	}
	if got := callAnd(noDeref{}, list); !value.Same(value.Boolean(false), got) {
		t.Errorf("AND(FALSE, ...) is FALSE, got %s", got)
	}
	if forced {
		t.Errorf("AND must not force arguments after the decisive one")
	}

	forced = false
	list = []Arg{
		scalarArg{v: value.Boolean(true)},
		scalarArg{v: num("1"), forced: &forced},
	}
	if got := callOr(noDeref{}, list); !value.Same(value.Boolean(true), got) {
		t.Errorf("OR(TRUE, ...) is TRUE, got %s", got)
	}
	if forced {
		t.Errorf("OR must not force arguments after the decisive one")
	}
}

func TestLogicCoercions(t *testing.T) {
	if got := callAnd(noDeref{}, args(num("1"), value.Text("true"))); !value.Same(value.Boolean(true), got) {
		t.Errorf("AND coerces numbers and text, got %s", got)
	}
	if got := callAnd(noDeref{}, args(value.Text("nope"))); !value.Same(value.ErrValue, got) {
		t.Errorf("uncoercible argument reads as #VALUE!, got %s", got)
	}
	if got := callNot(noDeref{}, args(num("0"))); !value.Same(value.Boolean(true), got) {
		t.Errorf("NOT(0) is TRUE, got %s", got)
	}
	if got := callXor(noDeref{}, args(value.Boolean(true), value.Boolean(true), value.Boolean(true))); !value.Same(value.Boolean(true), got) {
		t.Errorf("XOR of an odd number of TRUE is TRUE, got %s", got)
	}
	if got := callExact(noDeref{}, args(value.Text("Case"), value.Text("case"))); !value.Same(value.Boolean(false), got) {
		t.Errorf("EXACT is case sensitive, got %s", got)
	}
}

func TestIfFamily(t *testing.T) {
	if got := callIf(noDeref{}, args(value.Boolean(true), num("1"), num("2"))); !value.Same(num("1"), got) {
		t.Errorf("IF takes the first branch, got %s", got)
	}
	if got := callIf(noDeref{}, args(value.Boolean(false), num("1"))); !value.Same(value.Boolean(false), got) {
		t.Errorf("IF without an else yields FALSE, got %s", got)
	}
	if got := callIfError(noDeref{}, args(value.ErrDiv0, num("9"))); !value.Same(num("9"), got) {
		t.Errorf("IFERROR falls back on errors, got %s", got)
	}
	if got := callIfError(noDeref{}, args(num("3"), num("9"))); !value.Same(num("3"), got) {
		t.Errorf("IFERROR passes clean values, got %s", got)
	}
	if got := callChoose(noDeref{}, args(num("2"), value.Text("a"), value.Text("b"))); !value.Same(value.Text("b"), got) {
		t.Errorf("CHOOSE indexes its tail, got %s", got)
	}
	if got := callChoose(noDeref{}, args(num("0"), value.Text("a"))); !value.Same(value.ErrValue, got) {
		t.Errorf("CHOOSE rejects indexes out of range, got %s", got)
	}
	if got := callChoose(noDeref{}, args(num("1.5"), value.Text("a"))); !value.Same(value.ErrValue, got) {
		t.Errorf("CHOOSE rejects fractional indexes, got %s", got)
	}
}

func TestPredicates(t *testing.T) {
	if got := callIsBlank(noDeref{}, args(value.Empty())); !value.Same(value.Boolean(true), got) {
		t.Errorf("ISBLANK on blank, got %s", got)
	}
	if got := callIsBlank(noDeref{}, args(num("0"))); !value.Same(value.Boolean(false), got) {
		t.Errorf("ISBLANK on zero, got %s", got)
	}
	if got := callIsError(noDeref{}, args(value.ErrDiv0)); !value.Same(value.Boolean(true), got) {
		t.Errorf("ISERROR consumes the error, got %s", got)
	}
	if got := callVersion(noDeref{}, nil); !value.Same(value.Text(Version), got) {
		t.Errorf("VERSION, got %s", got)
	}
}

func TestReducers(t *testing.T) {
	if got := callSum(noDeref{}, grid(2, 2, num("1"), num("2"), value.Text("x"), value.Empty())); !value.Same(num("3"), got) {
		t.Errorf("SUM keeps only numbers inside ranges, got %s", got)
	}
	if got := callSum(noDeref{}, args(value.Text("4"), value.Boolean(true))); !value.Same(num("5"), got) {
		t.Errorf("SUM coerces scalar arguments, got %s", got)
	}
	if got := callMin(noDeref{}, grid(1, 3, num("5"), num("-2"), num("7"))); !value.Same(num("-2"), got) {
		t.Errorf("MIN, got %s", got)
	}
	if got := callMax(noDeref{}, grid(1, 3, num("5"), num("-2"), num("7"))); !value.Same(num("7"), got) {
		t.Errorf("MAX, got %s", got)
	}
	if got := callMin(noDeref{}, grid(1, 2, value.Text("a"), value.Empty())); !value.Same(num("0"), got) {
		t.Errorf("MIN of nothing numeric is zero, got %s", got)
	}
	if got := callAverage(noDeref{}, grid(1, 3, num("1"), num("2"), num("3"))); !value.Same(num("2"), got) {
		t.Errorf("AVERAGE, got %s", got)
	}
	if got := callAverage(noDeref{}, grid(1, 1, value.Empty())); !value.Same(value.ErrDiv0, got) {
		t.Errorf("AVERAGE of an empty range divides by zero, got %s", got)
	}
	if got := callSum(noDeref{}, grid(1, 2, num("1"), value.ErrCircRef)); !value.Same(value.ErrCircRef, got) {
		t.Errorf("errors inside ranges propagate, got %s", got)
	}
}

func TestLookups(t *testing.T) {
	table := append([]Arg{scalarArg{v: value.Text("beta")}},
		append(grid(3, 2,
			value.Text("alpha"), num("1"),
			value.Text("beta"), num("2"),
			value.Text("gamma"), num("3"),
		), scalarArg{v: num("2")})...)
	if got := callVLookup(noDeref{}, table); !value.Same(num("2"), got) {
		t.Errorf("VLOOKUP exact match, got %s", got)
	}

	missing := append([]Arg{scalarArg{v: value.Text("delta")}},
		append(grid(1, 2, value.Text("alpha"), num("1")), scalarArg{v: num("2")})...)
	if got := callVLookup(noDeref{}, missing); !value.Same(value.ErrValue, got) {
		t.Errorf("VLOOKUP without a match fails, got %s", got)
	}

	wide := append([]Arg{scalarArg{v: num("20")}},
		append(grid(2, 3,
			num("10"), num("20"), num("30"),
			value.Text("a"), value.Text("b"), value.Text("c"),
		), scalarArg{v: num("2")})...)
	if got := callHLookup(noDeref{}, wide); !value.Same(value.Text("b"), got) {
		t.Errorf("HLOOKUP exact match, got %s", got)
	}
}
