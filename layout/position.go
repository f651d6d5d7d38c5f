package layout

import (
	"strconv"
	"strings"
)

// Largest addressable cell: column ZZZZ, row 9999999. References beyond
// either bound are syntactically valid but unresolvable.
const (
	MaxColumn int64 = 475254
	MaxLine   int64 = 9999999
)

type Position struct {
	Sheet  string
	Line   int64
	Column int64
}

func (p Position) Equal(other Position) bool {
	return p.Line == other.Line && p.Column == other.Column &&
		strings.EqualFold(p.Sheet, other.Sheet)
}

func (p Position) Valid() bool {
	return p.Column >= 1 && p.Column <= MaxColumn && p.Line >= 1 && p.Line <= MaxLine
}

// Canon lowers the sheet part; two positions naming the same cell always
// share the same canonical form.
func (p Position) Canon() Position {
	p.Sheet = strings.ToLower(p.Sheet)
	return p
}

func (p Position) Addr() string {
	var parts []string
	if p.Sheet != "" {
		parts = append(parts, p.Sheet)
		parts = append(parts, "!")
	}
	parts = append(parts, IndexToString(p.Column))
	parts = append(parts, strconv.FormatInt(p.Line, 10))
	return strings.Join(parts, "")
}

func (p Position) String() string {
	return p.Addr()
}

// IsAddress tells whether addr has the shape of a plain cell location:
// letters then digits, no leading zero, case insensitive.
func IsAddress(addr string) bool {
	size := len(addr)
	if size < 2 {
		return false
	}
	var offset int
	for offset < size {
		c := addr[offset]
		if c >= 'a' && c <= 'z' {
			c = c - 'a' + 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		offset++
	}
	if offset == 0 || offset >= size || addr[offset] == '0' {
		return false
	}
	for offset < size {
		c := addr[offset]
		if c < '0' || c > '9' {
			return false
		}
		offset++
	}
	return offset == size
}

// ParseIndex decodes a column index from its leading letters and returns
// the index with the number of bytes consumed.
func ParseIndex(str string) (int64, int) {
	if len(str) == 0 {
		return 0, 0
	}
	var (
		offset int
		index  int64
	)
	for offset < len(str) && isLetter(rune(str[offset])) {
		delta := byte('A')
		if isLower(rune(str[offset])) {
			delta = 'a'
		}
		index = index*26 + int64(str[offset]-delta+1)
		offset++
	}
	return index, offset
}

func IndexToString(ix int64) string {
	var result string
	for ix > 0 {
		ix--
		result = string(rune('A')+rune(ix%26)) + result
		ix /= 26
	}
	return result
}

func isLower(c rune) bool {
	return c >= 'a' && c <= 'z'
}

func isUpper(c rune) bool {
	return c >= 'A' && c <= 'Z'
}

func isLetter(c rune) bool {
	return isLower(c) || isUpper(c)
}
