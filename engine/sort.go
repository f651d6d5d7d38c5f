package engine

import (
	"fmt"
	"sort"

	"github.com/midbel/recalc/formula"
	"github.com/midbel/recalc/layout"
	"github.com/midbel/recalc/value"
	log "github.com/sirupsen/logrus"
)

// SortRegion reorders the rows of the rectangle between the two corner
// locations. Keys are 1-based column offsets inside the region, negated
// for descending order; rows comparing equal keep their original order.
// Formulas moving with a row have their relative references shifted by
// the row displacement, like a copy; references from outside the region
// keep pointing at locations, not at moving cells. The permutation is
// committed as one batch.
func (b *Book) SortRegion(sheet, start, end string, keys []int) error {
	sh, first, err := b.resolve(sheet, start)
	if err != nil {
		return err
	}
	_, second, err := b.resolve(sheet, end)
	if err != nil {
		return err
	}
	region := layout.NewRange(first, second)
	width := int(region.Columns())
	if len(keys) == 0 {
		return fmt.Errorf("%w: no sort column given", ErrSortKey)
	}
	seen := make(map[int]struct{})
	for _, k := range keys {
		col := k
		if col < 0 {
			col = -col
		}
		if col == 0 || col > width {
			return fmt.Errorf("%w: sort column %d outside region", ErrSortKey, k)
		}
		if _, ok := seen[col]; ok {
			return fmt.Errorf("%w: sort column %d given twice", ErrSortKey, k)
		}
		seen[col] = struct{}{}
	}

	count := int(region.Lines())
	rows := make([][]value.Value, count)
	for i := range rows {
		rows[i] = make([]value.Value, len(keys))
		for j, k := range keys {
			col := k
			if col < 0 {
				col = -col
			}
			pos := layout.Position{
				Sheet:  sh.name,
				Column: region.Start.Column + int64(col) - 1,
				Line:   region.Start.Line + int64(i),
			}
			var v value.Value = value.Empty()
			if cell, ok := sh.cell(pos); ok && cell.value != nil {
				v = cell.value
			}
			rows[i][j] = v
		}
	}

	perm := make([]int, count)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		var (
			left  = rows[perm[i]]
			right = rows[perm[j]]
		)
		for k := range keys {
			ord := value.Order(left[k], right[k])
			if keys[k] < 0 {
				ord = -ord
			}
			if ord != 0 {
				return ord < 0
			}
		}
		return false
	})

	var staged []stagedChange
	for dest, source := range perm {
		if dest == source {
			continue
		}
		shift := int64(dest - source)
		for col := region.Start.Column; col <= region.End.Column; col++ {
			var (
				from = layout.Position{
					Sheet:  sh.name,
					Column: col,
					Line:   region.Start.Line + int64(source),
				}
				at = layout.Position{
					Sheet:  sh.name,
					Column: col,
					Line:   region.Start.Line + int64(dest),
				}
				contents string
			)
			if cell, ok := sh.cell(from); ok {
				contents = cell.contents
				if cell.expr != nil {
					contents = "=" + formula.Shift(cell.expr, 0, shift).String()
				}
			}
			staged = append(staged, stagedChange{pos: at, contents: contents})
		}
	}
	log.Debugf("sort %s %s:%s on %v: %d row(s), %d cell(s) rewritten", sh.name, start, end, keys, count, len(staged))
	b.applyStaged(staged)
	return nil
}
