package engine

import (
	"strings"

	"github.com/midbel/recalc/formula"
	"github.com/midbel/recalc/layout"
	"github.com/midbel/recalc/value"
	log "github.com/sirupsen/logrus"
)

// Change is one entry of a batch: a cell location and its new contents.
// Blank contents clear the cell.
type Change struct {
	Sheet    string
	Location string
	Contents string
}

type stagedChange struct {
	pos      layout.Position
	contents string
}

// Apply performs a batch of content changes as a single transaction:
// every location is validated before anything mutates, then the whole
// batch settles with one recalculation pass and one notification.
func (b *Book) Apply(changes []Change) error {
	staged := make([]stagedChange, 0, len(changes))
	for _, c := range changes {
		_, pos, err := b.resolve(c.Sheet, c.Location)
		if err != nil {
			return err
		}
		staged = append(staged, stagedChange{
			pos:      pos,
			contents: strings.TrimSpace(c.Contents),
		})
	}
	b.applyStaged(staged)
	return nil
}

// applyStaged is the update scheduler. Directly changed cells are
// parsed and evaluated first; their transitive dependents are collected
// through the reverse graph, cycles are settled to #CIRCREF!, and the
// remaining cells recompute in topological order so that every formula
// reads up-to-date inputs.
func (b *Book) applyStaged(list []stagedChange) {
	if len(list) == 0 {
		return
	}
	var (
		seeds []layout.Position
		batch = make(map[layout.Position]stagedChange)
		pre   = make(map[layout.Position]value.Value)
		order []layout.Position
		inOrd = make(map[layout.Position]struct{})
	)
	for _, sc := range list {
		key := sc.pos.Canon()
		if _, ok := batch[key]; !ok {
			seeds = append(seeds, key)
		}
		batch[key] = sc
	}
	remember := func(key layout.Position) {
		if _, ok := pre[key]; !ok {
			if cell, ok := b.cellAt(key); ok && cell.value != nil {
				pre[key] = cell.value
			} else {
				pre[key] = value.Empty()
			}
		}
	}
	assign := func(key layout.Position, v value.Value) {
		if _, ok := inOrd[key]; !ok && !value.Same(pre[key], v) {
			inOrd[key] = struct{}{}
			order = append(order, key)
		}
	}

	// apply contents and evaluate the directly changed cells
	for _, key := range seeds {
		sc := batch[key]
		sh := b.sheets[key.Sheet]
		remember(key)
		if sc.contents == "" {
			sh.remove(key)
			b.deps.RemoveSource(key)
			assign(key, value.Empty())
			continue
		}
		cell := newCell(sc.pos, sc.contents)
		sh.put(cell)
		if cell.expr == nil {
			cell.deps = nil
			b.deps.SetEdges(key, nil)
			assign(key, cell.value)
			continue
		}
		v, deps := b.evalFormula(cell)
		cell.value = v
		cell.deps = deps
		b.deps.SetEdges(key, deps)
		assign(key, v)
	}

	// all transitive dependents, the changed cells included
	affected := b.deps.ReachableReverse(seeds)
	for _, key := range seeds {
		affected[key] = struct{}{}
	}

	sub := b.deps.Induced(affected)
	cyclic := make(map[layout.Position]struct{})
	for _, component := range sub.StronglyConnected() {
		if len(component) == 1 && !sub.HasEdge(component[0], component[0]) {
			continue
		}
		for _, key := range component {
			cyclic[key] = struct{}{}
			if cell, ok := b.cellAt(key); ok {
				remember(key)
				cell.value = value.ErrCircRef
				assign(key, cell.value)
			}
		}
	}

	// remaining cells form a DAG; recompute them dependencies first
	dag := make(map[layout.Position]struct{})
	for key := range affected {
		if _, ok := cyclic[key]; !ok {
			dag[key] = struct{}{}
		}
	}
	var depsDirty bool
	for _, key := range sub.Induced(dag).Topological() {
		cell, ok := b.cellAt(key)
		if !ok || cell.expr == nil {
			continue
		}
		remember(key)
		v, deps := b.evalFormula(cell)
		if !samePositions(cell.deps, deps) {
			cell.deps = deps
			b.deps.SetEdges(key, deps)
			depsDirty = true
		}
		cell.value = v
		assign(key, v)
	}

	// INDIRECT can rewire edges while recomputing; one more component
	// pass catches cycles introduced that way
	if depsDirty {
		again := b.deps.Induced(affected)
		for _, component := range again.StronglyConnected() {
			if len(component) == 1 && !again.HasEdge(component[0], component[0]) {
				continue
			}
			for _, key := range component {
				if cell, ok := b.cellAt(key); ok {
					remember(key)
					cell.value = value.ErrCircRef
					assign(key, cell.value)
				}
			}
		}
	}

	changed := make([]CellRef, 0, len(order))
	for _, key := range order {
		var current value.Value = value.Empty()
		if cell, ok := b.cellAt(key); ok && cell.value != nil {
			current = cell.value
		}
		if value.Same(pre[key], current) {
			continue
		}
		changed = append(changed, b.cellRef(key))
	}
	log.Debugf("batch: %d change(s) staged, %d affected, %d cyclic, %d changed", len(seeds), len(affected), len(cyclic), len(changed))
	if len(changed) == 0 {
		return
	}
	for _, fn := range b.notify {
		b.dispatch(fn, changed)
	}
}

// dispatch shields the scheduler from observers: a panicking callback
// is swallowed and the remaining callbacks still fire.
func (b *Book) dispatch(fn NotifyFunc, changed []CellRef) {
	defer func() {
		if err := recover(); err != nil {
			log.Debugf("notify: callback panicked: %v", err)
		}
	}()
	fn(b, changed)
}

// evalFormula evaluates one formula cell against current stored values.
// A runtime fault inside a builtin turns into #VALUE! instead of
// halting the batch.
func (b *Book) evalFormula(cell *Cell) (v value.Value, deps []layout.Position) {
	defer func() {
		if err := recover(); err != nil {
			log.Debugf("eval %s: recovered: %v", cell.pos, err)
			v, deps = value.ErrValue, nil
		}
	}()
	v, deps = formula.Eval(cell.expr, cell.pos, b)
	return v, deps
}

func (b *Book) cellRef(key layout.Position) CellRef {
	name := key.Sheet
	if sh, ok := b.sheets[key.Sheet]; ok {
		name = sh.name
	}
	loc := layout.Position{Line: key.Line, Column: key.Column}
	return CellRef{
		Sheet:    name,
		Location: loc.Addr(),
	}
}

func samePositions(left, right []layout.Position) bool {
	if len(left) != len(right) {
		return false
	}
	set := make(map[layout.Position]struct{}, len(left))
	for _, p := range left {
		set[p] = struct{}{}
	}
	for _, p := range right {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}
