package engine

import (
	"strings"

	"github.com/midbel/recalc/formula"
	"github.com/midbel/recalc/layout"
	"github.com/midbel/recalc/value"
	"github.com/shopspring/decimal"
)

// Cell is one stored cell: its location, the raw contents it was set to,
// the parsed syntax tree when the contents are a formula, the value
// computed by the last recalculation and the cells that value read.
type Cell struct {
	pos      layout.Position
	contents string
	expr     formula.Expr
	value    value.Value
	deps     []layout.Position
}

func newCell(pos layout.Position, contents string) *Cell {
	cell := Cell{
		pos:      pos,
		contents: contents,
	}
	cell.expr, cell.value = classify(contents)
	return &cell
}

func (c *Cell) Contents() string {
	return c.contents
}

func (c *Cell) Value() value.Value {
	return c.value
}

func (c *Cell) isFormula() bool {
	return c.expr != nil
}

// classify interprets freshly set, already trimmed, non-empty cell
// contents: a leading apostrophe forces text, a leading equal sign marks
// a formula, then error literals, numbers and booleans are tried before
// falling back to text. Formula cells get a blank placeholder value; the
// scheduler computes the real one.
func classify(contents string) (formula.Expr, value.Value) {
	if strings.HasPrefix(contents, "'") {
		return nil, value.Text(contents[1:])
	}
	if strings.HasPrefix(contents, "=") {
		expr, err := formula.Parse(contents[1:])
		if err != nil {
			return nil, value.ErrParse
		}
		return expr, value.Empty()
	}
	if e, ok := value.ErrorFromLiteral(contents); ok {
		return nil, e
	}
	if d, err := decimal.NewFromString(contents); err == nil {
		return nil, value.Num(d)
	}
	switch strings.ToLower(contents) {
	case "true":
		return nil, value.Boolean(true)
	case "false":
		return nil, value.Boolean(false)
	}
	return nil, value.Text(contents)
}
