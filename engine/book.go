package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/midbel/recalc/formula"
	"github.com/midbel/recalc/internal/graph"
	"github.com/midbel/recalc/layout"
	"github.com/midbel/recalc/value"
	log "github.com/sirupsen/logrus"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrSheetExists   = errors.New("sheet already exists")
	ErrSheetName     = errors.New("invalid sheet name")
	ErrLocation      = errors.New("invalid cell location")
	ErrIndex         = errors.New("index out of range")
	ErrSortKey       = errors.New("invalid sort column")
	ErrDocument      = errors.New("malformed workbook document")
)

// CellRef names a cell for notification callbacks: the display sheet
// name and an A1-style location.
type CellRef struct {
	Sheet    string
	Location string
}

// NotifyFunc receives the deduplicated change set of a batch, in the
// order each cell first changed. A panicking callback is isolated; it
// cannot corrupt the engine or starve other callbacks.
type NotifyFunc func(book *Book, changed []CellRef)

// Book is a workbook: an ordered collection of sheets plus the cell
// dependency graph that drives recalculation. A Book is not safe for
// concurrent use; callers wanting concurrency serialize outside.
type Book struct {
	order  []string
	sheets map[string]*Sheet
	deps   *graph.Directed[layout.Position]
	notify []NotifyFunc
}

func New() *Book {
	return &Book{
		sheets: make(map[string]*Sheet),
		deps:   graph.New[layout.Position](),
	}
}

func (b *Book) NumSheets() int {
	return len(b.order)
}

// ListSheets returns the display names in workbook order. The slice is
// the caller's to mutate.
func (b *Book) ListSheets() []string {
	list := make([]string, len(b.order))
	copy(list, b.order)
	return list
}

var sheetName = regexp.MustCompile(`^[A-Za-z0-9 .?!,:;@#$%^&*()\-_]+$`)

func validateSheetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name can not be empty", ErrSheetName)
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: name can not start or end with whitespace", ErrSheetName)
	}
	if !sheetName.MatchString(name) {
		return fmt.Errorf("%w: improper character in %q", ErrSheetName, name)
	}
	return nil
}

// NewSheet adds a sheet. An empty name asks for a generated one:
// Sheet1, Sheet2 and so on, skipping names already taken. Uniqueness is
// case-insensitive, the given case is preserved. Returns the zero-based
// index of the new sheet and its name.
func (b *Book) NewSheet(name string) (int, string, error) {
	if name == "" {
		for i := 1; ; i++ {
			name = "Sheet" + strconv.Itoa(i)
			if _, ok := b.sheets[strings.ToLower(name)]; !ok {
				break
			}
		}
	} else {
		if err := validateSheetName(name); err != nil {
			return 0, "", err
		}
		if _, ok := b.sheets[strings.ToLower(name)]; ok {
			return 0, "", fmt.Errorf("%w: %s", ErrSheetExists, name)
		}
	}
	lower := strings.ToLower(name)
	b.order = append(b.order, name)
	b.sheets[lower] = newSheet(name)
	// cells that referenced the name while it did not exist resolve now
	b.applyStaged(b.dependentsOf(lower, nil))
	return len(b.order) - 1, name, nil
}

// DelSheet removes a sheet. Cells of other sheets that referenced it
// re-evaluate to #REF!.
func (b *Book) DelSheet(name string) error {
	sh, err := b.sheet(name)
	if err != nil {
		return err
	}
	lower := strings.ToLower(sh.name)
	for _, pos := range sh.positions() {
		b.deps.RemoveSource(pos.Canon())
	}
	for i, n := range b.order {
		if n == sh.name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	delete(b.sheets, lower)
	b.applyStaged(b.dependentsOf(lower, nil))
	return nil
}

// MoveSheet removes the sheet from the listing order and reinserts it
// at the given zero-based index.
func (b *Book) MoveSheet(name string, index int) error {
	sh, err := b.sheet(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(b.order) {
		return fmt.Errorf("%w: %d", ErrIndex, index)
	}
	for i, n := range b.order {
		if n == sh.name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.order = append(b.order[:index], append([]string{sh.name}, b.order[index:]...)...)
	return nil
}

// CopySheet duplicates a sheet at the end of the workbook. The copy is
// named by appending _1, _2, ... to the original name until the result
// is unique. Contents are copied verbatim as one batch.
func (b *Book) CopySheet(name string) (int, string, error) {
	sh, err := b.sheet(name)
	if err != nil {
		return 0, "", err
	}
	var copyName string
	for i := 1; ; i++ {
		copyName = fmt.Sprintf("%s_%d", sh.name, i)
		if _, ok := b.sheets[strings.ToLower(copyName)]; !ok {
			break
		}
	}
	index, copyName, err := b.NewSheet(copyName)
	if err != nil {
		return 0, "", err
	}
	var list []stagedChange
	for _, pos := range sh.positions() {
		cell, _ := sh.cell(pos)
		at := pos
		at.Sheet = copyName
		list = append(list, stagedChange{pos: at, contents: cell.contents})
	}
	b.applyStaged(list)
	return index, copyName, nil
}

// RenameSheet renames a sheet and rewrites, from the syntax tree, every
// formula referencing it so that the qualifier uses the new name, quoted
// only when the name requires quoting. Values are preserved; the batch
// that follows the rewrite settles dependents of the new name.
func (b *Book) RenameSheet(name, newName string) error {
	sh, err := b.sheet(name)
	if err != nil {
		return err
	}
	if err := validateSheetName(newName); err != nil {
		return err
	}
	if _, ok := b.sheets[strings.ToLower(newName)]; ok {
		return fmt.Errorf("%w: %s", ErrSheetExists, newName)
	}
	var (
		oldName  = sh.name
		oldLower = strings.ToLower(oldName)
		newLower = strings.ToLower(newName)
		staged   []stagedChange
		rewrote  = make(map[layout.Position]struct{})
	)
	// stage rewritten contents before touching any state
	for _, display := range b.order {
		other := b.sheets[strings.ToLower(display)]
		for _, pos := range other.positions() {
			cell, _ := other.cell(pos)
			if cell.expr == nil {
				continue
			}
			expr, changed := formula.RenameSheet(cell.expr, oldName, newName)
			if !changed {
				continue
			}
			at := cell.pos
			if strings.EqualFold(at.Sheet, oldName) {
				at.Sheet = newName
			}
			staged = append(staged, stagedChange{pos: at, contents: "=" + expr.String()})
			key := at.Canon()
			rewrote[key] = struct{}{}
		}
	}
	log.Debugf("rename sheet %s to %s: %d formula(s) rewritten", oldName, newName, len(staged))

	for i, n := range b.order {
		if n == oldName {
			b.order[i] = newName
			break
		}
	}
	sh.name = newName
	delete(b.sheets, oldLower)
	b.sheets[newLower] = sh
	for _, cell := range sh.cells {
		cell.pos.Sheet = newName
	}
	b.remapGraph(oldLower, newLower)

	staged = append(staged, b.dependentsOf(newLower, rewrote)...)
	b.applyStaged(staged)
	return nil
}

// remapGraph rebuilds the dependency graph after a sheet rename, moving
// every node of the old sheet name to the new one on both edge ends.
func (b *Book) remapGraph(oldLower, newLower string) {
	remap := func(pos layout.Position) layout.Position {
		if pos.Sheet == oldLower {
			pos.Sheet = newLower
		}
		return pos
	}
	fresh := graph.New[layout.Position]()
	for _, sh := range b.sheets {
		for _, cell := range sh.cells {
			for i := range cell.deps {
				cell.deps[i] = remap(cell.deps[i])
			}
			if len(cell.deps) > 0 {
				fresh.SetEdges(cell.pos.Canon(), cell.deps)
			}
		}
	}
	b.deps = fresh
}

// dependentsOf stages a re-apply of every cell holding an edge into the
// given sheet, skipping positions already staged by the caller.
func (b *Book) dependentsOf(sheetLower string, skip map[layout.Position]struct{}) []stagedChange {
	var (
		list []stagedChange
		seen = make(map[layout.Position]struct{})
	)
	for _, node := range b.deps.Nodes() {
		if node.Sheet != sheetLower {
			continue
		}
		for _, src := range b.deps.In(node) {
			if _, ok := seen[src]; ok {
				continue
			}
			seen[src] = struct{}{}
			if skip != nil {
				if _, ok := skip[src]; ok {
					continue
				}
			}
			if cell, ok := b.cellAt(src); ok {
				list = append(list, stagedChange{pos: cell.pos, contents: cell.contents})
			}
		}
	}
	return list
}

// SheetExtent reports (columns, rows) of the smallest rectangle holding
// every non empty cell of the sheet.
func (b *Book) SheetExtent(name string) (int64, int64, error) {
	sh, err := b.sheet(name)
	if err != nil {
		return 0, 0, err
	}
	cols, lines := sh.Extent()
	return cols, lines, nil
}

// SetCellContents sets one cell: a batch of one. Contents are trimmed;
// empty or blank contents clear the cell.
func (b *Book) SetCellContents(sheet, location, contents string) error {
	return b.Apply([]Change{
		{
			Sheet:    sheet,
			Location: location,
			Contents: contents,
		},
	})
}

// GetCellContents returns the trimmed contents the cell was set to, or
// the empty string for an empty cell.
func (b *Book) GetCellContents(sheet, location string) (string, error) {
	sh, pos, err := b.resolve(sheet, location)
	if err != nil {
		return "", err
	}
	cell, ok := sh.cell(pos)
	if !ok {
		return "", nil
	}
	return cell.contents, nil
}

// GetCellValue returns the current value of the cell; empty cells read
// as blank.
func (b *Book) GetCellValue(sheet, location string) (value.Value, error) {
	sh, pos, err := b.resolve(sheet, location)
	if err != nil {
		return nil, err
	}
	cell, ok := sh.cell(pos)
	if !ok {
		return value.Empty(), nil
	}
	return cell.value, nil
}

// NotifyCellsChanged registers a callback for batch change sets.
// Registering a function twice makes it fire twice.
func (b *Book) NotifyCellsChanged(fn NotifyFunc) {
	b.notify = append(b.notify, fn)
}

func (b *Book) sheet(name string) (*Sheet, error) {
	sh, ok := b.sheets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	return sh, nil
}

func (b *Book) resolve(sheet, location string) (*Sheet, layout.Position, error) {
	sh, err := b.sheet(sheet)
	if err != nil {
		return nil, layout.Position{}, err
	}
	ref, err := layout.ParseAddr(strings.TrimSpace(location))
	if err != nil {
		return nil, layout.Position{}, fmt.Errorf("%w: %s", ErrLocation, location)
	}
	pos := layout.Position{
		Sheet:  sh.name,
		Line:   ref.Line,
		Column: ref.Column,
	}
	if !pos.Valid() {
		return nil, layout.Position{}, fmt.Errorf("%w: %s", ErrLocation, location)
	}
	return sh, pos, nil
}

func (b *Book) cellAt(pos layout.Position) (*Cell, bool) {
	sh, ok := b.sheets[pos.Sheet]
	if !ok {
		return nil, false
	}
	return sh.cell(pos)
}

// Value implements formula.Context over canonical positions.
func (b *Book) Value(pos layout.Position) value.Value {
	cell, ok := b.cellAt(pos)
	if !ok || cell.value == nil {
		return value.Empty()
	}
	return cell.value
}

// Exists implements formula.Context.
func (b *Book) Exists(sheet string) bool {
	_, ok := b.sheets[strings.ToLower(sheet)]
	return ok
}
