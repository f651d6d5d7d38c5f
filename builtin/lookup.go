package builtin

import "github.com/midbel/recalc/value"

func lookupParts(args []Arg) (value.Value, value.Array, int64, value.Value) {
	key := args[0].Eval()
	if value.IsError(key) {
		return nil, value.Array{}, 0, key
	}
	rv, ok := args[1].Range()
	if !ok {
		return nil, value.Array{}, 0, value.ErrValue
	}
	if value.IsError(rv) {
		return nil, value.Array{}, 0, rv
	}
	iv := args[2].Eval()
	if value.IsError(iv) {
		return nil, value.Array{}, 0, iv
	}
	d, err := value.CastToNumber(iv)
	if err != nil || !d.IsInteger() {
		return nil, value.Array{}, 0, value.ErrValue
	}
	return key, rv.(value.Array), d.IntPart(), nil
}

func matches(key, cell value.Value) bool {
	if value.IsError(cell) {
		return false
	}
	if value.IsBlank(key) != value.IsBlank(cell) {
		return false
	}
	if !value.IsBlank(key) && key.Kind() != cell.Kind() {
		return false
	}
	return value.Eq(key, cell)
}

// callVLookup searches the first column of the range for an exact match
// of the key and returns the cell of the matching row at the given
// 1-based column index.
func callVLookup(_ Context, args []Arg) value.Value {
	key, arr, ix, bad := lookupParts(args)
	if bad != nil {
		return bad
	}
	if ix < 1 || ix > int64(arr.Cols()) {
		return value.ErrValue
	}
	for row := 0; row < arr.Rows(); row++ {
		if matches(key, arr.At(row, 0)) {
			return arr.At(row, int(ix)-1)
		}
	}
	return value.ErrValue
}

// callHLookup searches the first row of the range and returns the cell
// of the matching column at the given 1-based row index.
func callHLookup(_ Context, args []Arg) value.Value {
	key, arr, ix, bad := lookupParts(args)
	if bad != nil {
		return bad
	}
	if ix < 1 || ix > int64(arr.Rows()) {
		return value.ErrValue
	}
	for col := 0; col < arr.Cols(); col++ {
		if matches(key, arr.At(0, col)) {
			return arr.At(int(ix)-1, col)
		}
	}
	return value.ErrValue
}
