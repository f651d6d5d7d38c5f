package layout

import "testing"

func TestParseAddr(t *testing.T) {
	tests := []struct {
		Input   string
		Column  int64
		Line    int64
		AbsCols bool
		AbsLine bool
		Fail    bool
	}{
		{Input: "A1", Column: 1, Line: 1},
		{Input: "b12", Column: 2, Line: 12},
		{Input: "$C3", Column: 3, AbsCols: true, Line: 3},
		{Input: "D$4", Column: 4, Line: 4, AbsLine: true},
		{Input: "$E$5", Column: 5, Line: 5, AbsCols: true, AbsLine: true},
		{Input: "AA10", Column: 27, Line: 10},
		{Input: "ZZZZ9999999", Column: 475254, Line: 9999999},
		{Input: "A0", Fail: true},
		{Input: "A01", Fail: true},
		{Input: "1A", Fail: true},
		{Input: "A", Fail: true},
		{Input: "", Fail: true},
	}
	for _, c := range tests {
		ref, err := ParseAddr(c.Input)
		if c.Fail {
			if err == nil {
				t.Errorf("%s: expected parse failure", c.Input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		if ref.Column != c.Column || ref.Line != c.Line {
			t.Errorf("%s: want (%d, %d), got (%d, %d)", c.Input, c.Column, c.Line, ref.Column, ref.Line)
		}
		if ref.AbsCols != c.AbsCols || ref.AbsLine != c.AbsLine {
			t.Errorf("%s: absolute markers mismatched", c.Input)
		}
	}
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("Sheet1!B2")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if ref.Sheet != "Sheet1" || ref.Column != 2 || ref.Line != 2 {
		t.Errorf("Sheet1!B2 parsed wrong: %+v", ref)
	}
	ref, err = ParseRef("'My Sheet'!$A$1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if ref.Sheet != "My Sheet" || !ref.AbsCols || !ref.AbsLine {
		t.Errorf("quoted sheet reference parsed wrong: %+v", ref)
	}
	if _, err = ParseRef("''!A1"); err == nil {
		t.Errorf("empty quoted sheet name should fail")
	}
	if _, err = ParseRef("!A1"); err == nil {
		t.Errorf("empty sheet name should fail")
	}
}

func TestRefString(t *testing.T) {
	tests := []struct {
		Ref  Ref
		Want string
	}{
		{Ref: Ref{Position: Position{Column: 1, Line: 1}}, Want: "A1"},
		{Ref: Ref{Position: Position{Column: 2, Line: 3}, AbsCols: true}, Want: "$B3"},
		{Ref: Ref{Position: Position{Column: 2, Line: 3}, AbsLine: true}, Want: "B$3"},
		{Ref: Ref{Position: Position{Sheet: "S1", Column: 1, Line: 1}}, Want: "S1!A1"},
		{Ref: Ref{Position: Position{Sheet: "My Sheet", Column: 1, Line: 1}}, Want: "'My Sheet'!A1"},
	}
	for _, c := range tests {
		if got := c.Ref.String(); got != c.Want {
			t.Errorf("want %s, got %s", c.Want, got)
		}
	}
}

func TestRefShift(t *testing.T) {
	ref, _ := ParseAddr("$B$2")
	if moved := ref.Shift(3, 3); moved.Column != 2 || moved.Line != 2 {
		t.Errorf("absolute reference should not move")
	}
	ref, _ = ParseAddr("B$2")
	if moved := ref.Shift(3, 3); moved.Column != 5 || moved.Line != 2 {
		t.Errorf("mixed reference should move its relative part only")
	}
	ref, _ = ParseAddr("A1")
	if moved := ref.Shift(-1, 0); moved.Position.Valid() {
		t.Errorf("shifting before column A leaves the valid range")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	tests := []struct {
		Index int64
		Want  string
	}{
		{Index: 1, Want: "A"},
		{Index: 26, Want: "Z"},
		{Index: 27, Want: "AA"},
		{Index: 52, Want: "AZ"},
		{Index: 702, Want: "ZZ"},
		{Index: 475254, Want: "ZZZZ"},
	}
	for _, c := range tests {
		if got := IndexToString(c.Index); got != c.Want {
			t.Errorf("%d: want %s, got %s", c.Index, c.Want, got)
		}
		ix, n := ParseIndex(c.Want)
		if ix != c.Index || n != len(c.Want) {
			t.Errorf("%s: want %d, got %d", c.Want, c.Index, ix)
		}
	}
}

func TestIsAddress(t *testing.T) {
	for _, ok := range []string{"A1", "zz99", "B10"} {
		if !IsAddress(ok) {
			t.Errorf("%s is an address", ok)
		}
	}
	for _, bad := range []string{"", "A", "1", "A0", "A1B", "$A1"} {
		if IsAddress(bad) {
			t.Errorf("%s is not an address", bad)
		}
	}
}

func TestNeedsQuote(t *testing.T) {
	if NeedsQuote("Sheet1") || NeedsQuote("_tmp") {
		t.Errorf("identifier-shaped names need no quoting")
	}
	if !NeedsQuote("My Sheet") || !NeedsQuote("1st") || !NeedsQuote("a-b") {
		t.Errorf("non identifier names need quoting")
	}
}

func TestRangeNormalize(t *testing.T) {
	r := NewRange(Position{Sheet: "s", Column: 4, Line: 9}, Position{Sheet: "s", Column: 2, Line: 3})
	if r.Start.Column != 2 || r.Start.Line != 3 || r.End.Column != 4 || r.End.Line != 9 {
		t.Errorf("corners should normalize to min/max: %+v", r)
	}
	if r.Columns() != 3 || r.Lines() != 7 {
		t.Errorf("extent mismatched: %dx%d", r.Columns(), r.Lines())
	}
	if !r.Contains(Position{Column: 3, Line: 5}) || r.Contains(Position{Column: 5, Line: 5}) {
		t.Errorf("containment mismatched")
	}
	if n := len(r.Positions()); n != 21 {
		t.Errorf("want 21 positions, got %d", n)
	}
}
