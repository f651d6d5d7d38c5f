package engine

import (
	"sort"

	"github.com/midbel/recalc/layout"
)

type coord struct {
	line int64
	col  int64
}

// Sheet maps coordinates to cells. The display name keeps the case it
// was created with; lookups across the workbook ignore case.
type Sheet struct {
	name  string
	cells map[coord]*Cell
}

func newSheet(name string) *Sheet {
	return &Sheet{
		name:  name,
		cells: make(map[coord]*Cell),
	}
}

func (s *Sheet) Name() string {
	return s.name
}

func (s *Sheet) cell(pos layout.Position) (*Cell, bool) {
	c, ok := s.cells[coord{line: pos.Line, col: pos.Column}]
	return c, ok
}

func (s *Sheet) put(c *Cell) {
	s.cells[coord{line: c.pos.Line, col: c.pos.Column}] = c
}

func (s *Sheet) remove(pos layout.Position) {
	delete(s.cells, coord{line: pos.Line, col: pos.Column})
}

// Extent is the smallest rectangle from A1 that contains every non
// empty cell: (max column, max row), both zero for an empty sheet.
func (s *Sheet) Extent() (int64, int64) {
	var cols, lines int64
	for at := range s.cells {
		if at.col > cols {
			cols = at.col
		}
		if at.line > lines {
			lines = at.line
		}
	}
	return cols, lines
}

// positions lists every non empty cell, rows first. The order is stable
// so that bulk operations and serialization are deterministic.
func (s *Sheet) positions() []layout.Position {
	list := make([]layout.Position, 0, len(s.cells))
	for _, c := range s.cells {
		list = append(list, c.pos)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Line != list[j].Line {
			return list[i].Line < list[j].Line
		}
		return list[i].Column < list[j].Column
	})
	return list
}
