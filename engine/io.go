package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

type sheetDocument struct {
	Name  string            `json:"name"`
	Cells map[string]string `json:"cell-contents"`
}

type document struct {
	Sheets []sheetDocument `json:"sheets"`
}

// Save writes the workbook as JSON: sheets in workbook order, each with
// its name and the exact contents string of every non empty cell.
func (b *Book) Save(w io.Writer) error {
	doc := document{
		Sheets: make([]sheetDocument, 0, len(b.order)),
	}
	for _, name := range b.order {
		sh := b.sheets[strings.ToLower(name)]
		sd := sheetDocument{
			Name:  sh.name,
			Cells: make(map[string]string, len(sh.cells)),
		}
		for _, pos := range sh.positions() {
			cell, _ := sh.cell(pos)
			loc := pos
			loc.Sheet = ""
			sd.Cells[loc.Addr()] = cell.contents
		}
		doc.Sheets = append(doc.Sheets, sd)
	}
	return json.NewEncoder(w).Encode(doc)
}

// Load reads a workbook saved by Save. Sheets are created in the listed
// order and each sheet's cells are applied as a single batch. A
// malformed document, a duplicate sheet name or a bad cell location
// fails the load; no partially loaded workbook is ever returned.
func Load(r io.Reader) (*Book, error) {
	var raw struct {
		Sheets *[]json.RawMessage `json:"sheets"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDocument, err)
	}
	if raw.Sheets == nil {
		return nil, fmt.Errorf("%w: missing sheets list", ErrDocument)
	}
	book := New()
	for i, msg := range *raw.Sheets {
		var sd struct {
			Name  *string            `json:"name"`
			Cells *map[string]string `json:"cell-contents"`
		}
		if err := json.Unmarshal(msg, &sd); err != nil {
			return nil, fmt.Errorf("%w: sheet #%d: %s", ErrDocument, i, err)
		}
		if sd.Name == nil {
			return nil, fmt.Errorf("%w: sheet #%d: missing name", ErrDocument, i)
		}
		if sd.Cells == nil {
			return nil, fmt.Errorf("%w: %s: missing cell-contents", ErrDocument, *sd.Name)
		}
		if _, _, err := book.NewSheet(*sd.Name); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrDocument, err)
		}
		locs := make([]string, 0, len(*sd.Cells))
		for loc := range *sd.Cells {
			locs = append(locs, loc)
		}
		sort.Strings(locs)
		changes := make([]Change, 0, len(locs))
		for _, loc := range locs {
			changes = append(changes, Change{
				Sheet:    *sd.Name,
				Location: loc,
				Contents: (*sd.Cells)[loc],
			})
		}
		if err := book.Apply(changes); err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrDocument, *sd.Name, err)
		}
	}
	return book, nil
}
