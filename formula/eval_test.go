package formula

import (
	"testing"

	"github.com/midbel/recalc/layout"
	"github.com/midbel/recalc/value"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	sheets map[string]struct{}
	cells  map[layout.Position]value.Value
}

func newStore(sheets ...string) *fakeStore {
	fs := fakeStore{
		sheets: make(map[string]struct{}),
		cells:  make(map[layout.Position]value.Value),
	}
	for _, s := range sheets {
		fs.sheets[s] = struct{}{}
	}
	return &fs
}

func (fs *fakeStore) set(sheet string, col, line int64, v value.Value) {
	fs.cells[layout.Position{Sheet: sheet, Column: col, Line: line}] = v
}

func (fs *fakeStore) Value(pos layout.Position) value.Value {
	if v, ok := fs.cells[pos]; ok {
		return v
	}
	return value.Empty()
}

func (fs *fakeStore) Exists(sheet string) bool {
	_, ok := fs.sheets[sheet]
	return ok
}

func num(str string) value.Value {
	d, err := decimal.NewFromString(str)
	if err != nil {
		panic(err)
	}
	return value.Num(d)
}

func owner() layout.Position {
	return layout.Position{Sheet: "s1", Column: 26, Line: 100}
}

func evalString(t *testing.T, src string, ctx Context) (value.Value, []layout.Position) {
	t.Helper()
	expr, err := Parse(src)
	if err != nil {
		t.Fatalf("%s: fail to parse: %s", src, err)
	}
	return Eval(expr, owner(), ctx)
}

func TestEvalScalars(t *testing.T) {
	store := newStore("s1")
	tests := []struct {
		Expr string
		Want value.Value
	}{
		{Expr: "1+2", Want: num("3")},
		{Expr: "\"5\"*2", Want: num("10")},
		{Expr: "TRUE+1", Want: num("2")},
		{Expr: "-\"3\"", Want: num("-3")},
		{Expr: "0.1+0.2", Want: num("0.3")},
		{Expr: "1/0", Want: value.ErrDiv0},
		{Expr: "\"a\"+1", Want: value.ErrValue},
		{Expr: "\"a\"&\"b\"", Want: value.Text("ab")},
		{Expr: "1.50&\"x\"", Want: value.Text("1.5x")},
		{Expr: "TRUE&\"!\"", Want: value.Text("TRUE!")},
		{Expr: "1=1.0", Want: value.Boolean(true)},
		{Expr: "\"BLUE\"=\"blue\"", Want: value.Boolean(true)},
		{Expr: "\"a\"<\"b\"", Want: value.Boolean(true)},
		{Expr: "TRUE>\"z\"", Want: value.Boolean(true)},
		{Expr: "\"z\">99", Want: value.Boolean(true)},
		{Expr: "1<>2", Want: value.Boolean(true)},
		{Expr: "#REF!+1", Want: value.ErrRef},
	}
	for _, c := range tests {
		got, _ := evalString(t, c.Expr, store)
		if !value.Same(c.Want, got) {
			t.Errorf("%s: want %s, got %s", c.Expr, c.Want, got)
		}
	}
}

func TestEvalEmptyCells(t *testing.T) {
	store := newStore("s1")
	tests := []struct {
		Expr string
		Want value.Value
	}{
		{Expr: "B1+1", Want: num("1")},
		{Expr: "B1&\"x\"", Want: value.Text("x")},
		{Expr: "B1=0", Want: value.Boolean(true)},
		{Expr: "B1=\"\"", Want: value.Boolean(true)},
		{Expr: "B1=FALSE", Want: value.Boolean(true)},
	}
	for _, c := range tests {
		got, _ := evalString(t, c.Expr, store)
		if !value.Same(c.Want, got) {
			t.Errorf("%s: want %s, got %s", c.Expr, c.Want, got)
		}
	}
}

func TestEvalReferences(t *testing.T) {
	store := newStore("s1", "other")
	store.set("s1", 2, 1, num("2"))
	store.set("other", 1, 1, value.Text("far"))

	got, deps := evalString(t, "B1*3", store)
	if !value.Same(num("6"), got) {
		t.Fatalf("B1*3: got %s", got)
	}
	if len(deps) != 1 || deps[0] != (layout.Position{Sheet: "s1", Column: 2, Line: 1}) {
		t.Errorf("dependency set mismatched: %v", deps)
	}

	got, deps = evalString(t, "Other!A1", store)
	if !value.Same(value.Text("far"), got) {
		t.Errorf("qualified reference: got %s", got)
	}
	if len(deps) != 1 || deps[0].Sheet != "other" {
		t.Errorf("qualified dependency should be canonical: %v", deps)
	}

	got, deps = evalString(t, "Missing!A1", store)
	if !value.Same(value.ErrRef, got) {
		t.Errorf("unknown sheet reads as #REF!, got %s", got)
	}
	if len(deps) != 1 {
		t.Errorf("unknown sheet references still count as dependencies")
	}

	got, _ = evalString(t, "ZZZZZ1", store)
	if !value.Same(value.ErrRef, got) {
		t.Errorf("out of bounds reference reads as #REF!, got %s", got)
	}
}

func TestEvalErrorPriority(t *testing.T) {
	store := newStore("s1")
	store.set("s1", 1, 1, value.ErrDiv0)
	store.set("s1", 2, 1, value.ErrCircRef)

	got, _ := evalString(t, "A1+B1", store)
	e, ok := value.AsError(got)
	if !ok || e.Code() != value.CircRef {
		t.Errorf("the strongest error wins, got %s", got)
	}
}

func TestEvalLazyBranches(t *testing.T) {
	store := newStore("s1")
	store.set("s1", 1, 2, num("10"))

	// the branch not taken contributes no dependencies
	_, deps := evalString(t, "IF(TRUE, 1, A2)", store)
	if len(deps) != 0 {
		t.Errorf("untaken branch leaked dependencies: %v", deps)
	}
	got, deps := evalString(t, "IF(FALSE, 1, A2)", store)
	if !value.Same(num("10"), got) || len(deps) != 1 {
		t.Errorf("taken branch evaluates and depends: %s %v", got, deps)
	}
	_, deps = evalString(t, "AND(FALSE, A2)", store)
	if len(deps) != 0 {
		t.Errorf("AND short circuits: %v", deps)
	}
	_, deps = evalString(t, "CHOOSE(1, 5, A2)", store)
	if len(deps) != 0 {
		t.Errorf("CHOOSE forces only the chosen argument: %v", deps)
	}
}

func TestEvalIndirect(t *testing.T) {
	store := newStore("s1", "other")
	store.set("other", 1, 1, num("7"))

	got, deps := evalString(t, "INDIRECT(\"Other!A1\")", store)
	if !value.Same(num("7"), got) {
		t.Fatalf("INDIRECT: got %s", got)
	}
	if len(deps) != 1 || deps[0].Sheet != "other" {
		t.Errorf("INDIRECT records the resolved cell: %v", deps)
	}

	got, _ = evalString(t, "INDIRECT(\"not a ref\")", store)
	if !value.Same(value.ErrRef, got) {
		t.Errorf("unparsable INDIRECT argument reads as #REF!, got %s", got)
	}
}

func TestEvalRanges(t *testing.T) {
	store := newStore("s1")
	store.set("s1", 1, 1, num("1"))
	store.set("s1", 1, 2, num("2"))
	store.set("s1", 2, 1, num("3"))
	store.set("s1", 2, 2, value.Text("skip"))

	got, deps := evalString(t, "SUM(A1:B2)", store)
	if !value.Same(num("6"), got) {
		t.Errorf("SUM over range: got %s", got)
	}
	if len(deps) != 4 {
		t.Errorf("every range cell is a dependency: %v", deps)
	}

	got, _ = evalString(t, "SUM(B2:A1)", store)
	if !value.Same(num("6"), got) {
		t.Errorf("corners normalize: got %s", got)
	}

	got, _ = evalString(t, "A1:B2", store)
	if !value.Same(value.ErrValue, got) {
		t.Errorf("a bare range is not a value: got %s", got)
	}

	got, _ = evalString(t, "AVERAGE(A1:B2)", store)
	if !value.Same(num("2"), got) {
		t.Errorf("AVERAGE skips non numbers: got %s", got)
	}
}

func TestEvalUnknownFunction(t *testing.T) {
	store := newStore("s1")
	got, _ := evalString(t, "NOSUCH(1)", store)
	if !value.Same(value.ErrName, got) {
		t.Errorf("unknown function reads as #NAME?, got %s", got)
	}
	got, _ = evalString(t, "NOT(1, 2)", store)
	if !value.Same(value.ErrValue, got) {
		t.Errorf("arity mismatch reads as #VALUE!, got %s", got)
	}
}
