package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const dollar = '$'

// Ref is a cell reference as written in a formula: a position plus the
// absolute markers for its column and row parts.
type Ref struct {
	Position
	AbsCols bool
	AbsLine bool
}

func (r Ref) String() string {
	var parts []string
	if r.Sheet != "" {
		parts = append(parts, QuoteSheet(r.Sheet))
		parts = append(parts, "!")
	}
	if r.AbsCols {
		parts = append(parts, "$")
	}
	parts = append(parts, IndexToString(r.Column))
	if r.AbsLine {
		parts = append(parts, "$")
	}
	parts = append(parts, strconv.FormatInt(r.Line, 10))
	return strings.Join(parts, "")
}

// Shift moves the relative parts of the reference by the given column
// and row deltas. Absolute parts stay put.
func (r Ref) Shift(cols, lines int64) Ref {
	if !r.AbsCols {
		r.Column += cols
	}
	if !r.AbsLine {
		r.Line += lines
	}
	return r
}

// ParseAddr decodes a cell address with optional absolute markers, as in
// B12, $B12, B$12 or $B$12. The sheet part is not part of the syntax.
func ParseAddr(addr string) (Ref, error) {
	var (
		ref    Ref
		offset int
	)
	if addr == "" {
		return ref, fmt.Errorf("empty cell address")
	}
	if addr[offset] == dollar {
		ref.AbsCols = true
		offset++
	}
	var size int
	ref.Column, size = ParseIndex(addr[offset:])
	if size == 0 {
		return ref, fmt.Errorf("%s: invalid cell address - missing column", addr)
	}
	offset += size
	if offset >= len(addr) {
		return ref, fmt.Errorf("%s: invalid cell address - missing row", addr)
	}
	if addr[offset] == dollar {
		ref.AbsLine = true
		offset++
	}
	if offset >= len(addr) || addr[offset] == '0' {
		return ref, fmt.Errorf("%s: invalid cell address - invalid row number", addr)
	}
	line, err := strconv.ParseInt(addr[offset:], 10, 64)
	if err != nil {
		return ref, fmt.Errorf("%s: invalid cell address - invalid row number", addr)
	}
	ref.Line = line
	return ref, nil
}

// ParseRef decodes a possibly sheet-qualified cell reference, as read
// back by INDIRECT: A1, $A$1, Sheet!A1 or 'My Sheet'!A1.
func ParseRef(str string) (Ref, error) {
	var sheet string
	if name, rest, ok := strings.Cut(str, "!"); ok {
		if strings.HasPrefix(name, "'") {
			if len(name) < 2 || !strings.HasSuffix(name, "'") {
				return Ref{}, fmt.Errorf("%s: invalid sheet name", str)
			}
			name = name[1 : len(name)-1]
		}
		if name == "" || strings.Contains(name, "'") {
			return Ref{}, fmt.Errorf("%s: invalid sheet name", str)
		}
		sheet, str = name, rest
	}
	ref, err := ParseAddr(str)
	if err != nil {
		return ref, err
	}
	ref.Sheet = sheet
	return ref, nil
}

var identName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NeedsQuote tells whether a sheet name must be single-quoted when it
// appears as a formula qualifier.
func NeedsQuote(name string) bool {
	return !identName.MatchString(name)
}

func QuoteSheet(name string) string {
	if NeedsQuote(name) {
		return "'" + name + "'"
	}
	return name
}
