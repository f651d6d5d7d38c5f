package engine

import (
	"fmt"
	"strings"

	"github.com/midbel/recalc/formula"
	"github.com/midbel/recalc/layout"
	log "github.com/sirupsen/logrus"
)

// CopyCells copies the rectangle between the two corner locations to
// the area whose top left corner is target, optionally on another
// sheet. Relative reference parts shift by the displacement; references
// leaving the legal coordinate range become #REF! literals in the
// rewritten formula. The full set of target contents is materialized
// before anything is written, so overlapping areas are safe.
func (b *Book) CopyCells(sheet, start, end, target string, targetSheet string) error {
	return b.transfer(sheet, start, end, target, targetSheet, false)
}

// MoveCells is CopyCells plus clearing every source cell that is not
// inside the target rectangle.
func (b *Book) MoveCells(sheet, start, end, target string, targetSheet string) error {
	return b.transfer(sheet, start, end, target, targetSheet, true)
}

func (b *Book) transfer(sheet, start, end, target string, targetSheet string, move bool) error {
	src, first, err := b.resolve(sheet, start)
	if err != nil {
		return err
	}
	_, second, err := b.resolve(sheet, end)
	if err != nil {
		return err
	}
	if targetSheet == "" {
		targetSheet = sheet
	}
	dst, to, err := b.resolve(targetSheet, target)
	if err != nil {
		return err
	}
	var (
		region = layout.NewRange(first, second)
		dcols  = to.Column - region.Start.Column
		dlines = to.Line - region.Start.Line
		far    = layout.Position{
			Column: region.End.Column + dcols,
			Line:   region.End.Line + dlines,
		}
	)
	if !far.Valid() {
		return fmt.Errorf("%w: target area extends outside the sheet", ErrLocation)
	}
	targetRegion := layout.NewRange(
		layout.Position{Sheet: dst.name, Column: to.Column, Line: to.Line},
		layout.Position{Sheet: dst.name, Column: far.Column, Line: far.Line},
	)

	var staged []stagedChange
	if move {
		sameSheet := strings.EqualFold(src.name, dst.name)
		for _, pos := range region.Positions() {
			if sameSheet && targetRegion.Contains(pos) {
				continue
			}
			at := pos
			at.Sheet = src.name
			staged = append(staged, stagedChange{pos: at})
		}
	}
	for _, pos := range region.Positions() {
		at := layout.Position{
			Sheet:  dst.name,
			Column: pos.Column + dcols,
			Line:   pos.Line + dlines,
		}
		var contents string
		if cell, ok := src.cell(pos); ok {
			contents = cell.contents
			if cell.expr != nil {
				contents = "=" + formula.Shift(cell.expr, dcols, dlines).String()
			}
		}
		staged = append(staged, stagedChange{pos: at, contents: contents})
	}
	log.Debugf("%s %s:%s to %s!%s: %d cell(s)", verb(move), start, end, dst.name, target, len(staged))
	b.applyStaged(staged)
	return nil
}

func verb(move bool) string {
	if move {
		return "move"
	}
	return "copy"
}
