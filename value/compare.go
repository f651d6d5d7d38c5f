package value

import "strings"

// Category ranking for comparisons between values of different kinds:
// boolean sorts above text, text above numbers. Blank takes the zero
// value of the other side's category.
func rank(v Value) int {
	switch v.Kind() {
	case KindNumber:
		return 0
	case KindText:
		return 1
	case KindBool:
		return 2
	default:
		return 0
	}
}

// Eq compares two non-error values for equality. Text comparison ignores
// case; values of different categories are never equal.
func Eq(left, right Value) bool {
	left, right = substitute(left, right)
	if left.Kind() != right.Kind() {
		return false
	}
	switch lv := left.(type) {
	case Number:
		return lv.Dec().Cmp(right.(Number).Dec()) == 0
	case Text:
		return strings.EqualFold(string(lv), string(right.(Text)))
	case Boolean:
		return lv == right.(Boolean)
	default:
		return true
	}
}

// Less orders two non-error values: same category by that category's
// order, different categories by rank.
func Less(left, right Value) bool {
	left, right = substitute(left, right)
	if left.Kind() != right.Kind() {
		return rank(left) < rank(right)
	}
	switch lv := left.(type) {
	case Number:
		return lv.Dec().Cmp(right.(Number).Dec()) < 0
	case Text:
		return strings.ToLower(string(lv)) < strings.ToLower(string(right.(Text)))
	case Boolean:
		return !bool(lv) && bool(right.(Boolean))
	default:
		return false
	}
}

func substitute(left, right Value) (Value, Value) {
	if IsBlank(left) && IsBlank(right) {
		return Text(""), Text("")
	}
	if IsBlank(left) {
		left = zeroOf(right)
	} else if IsBlank(right) {
		right = zeroOf(left)
	}
	return left, right
}

func zeroOf(v Value) Value {
	switch v.Kind() {
	case KindText:
		return Text("")
	case KindBool:
		return Boolean(false)
	default:
		return NumFromInt(0)
	}
}

// Order gives a total ordering suitable for sorting cell values: blanks
// first, then numbers, text, booleans, errors last (errors ordered by
// code). Returns a negative, zero or positive integer.
func Order(left, right Value) int {
	var (
		lb = IsBlank(left)
		rb = IsBlank(right)
	)
	switch {
	case lb && rb:
		return 0
	case lb:
		return -1
	case rb:
		return 1
	}
	le, lerr := AsError(left)
	re, rerr := AsError(right)
	switch {
	case lerr && rerr:
		return int(le.Code()) - int(re.Code())
	case lerr:
		return 1
	case rerr:
		return -1
	}
	if Eq(left, right) {
		return 0
	}
	if Less(left, right) {
		return -1
	}
	return 1
}

// Same reports strict equality, the notion used for change detection:
// kinds must match, text is case sensitive, numbers compare numerically.
func Same(left, right Value) bool {
	if IsBlank(left) || IsBlank(right) {
		return IsBlank(left) && IsBlank(right)
	}
	if left.Kind() != right.Kind() {
		return false
	}
	switch lv := left.(type) {
	case Number:
		return lv.Dec().Cmp(right.(Number).Dec()) == 0
	case Text:
		return lv == right.(Text)
	case Boolean:
		return lv == right.(Boolean)
	case Error:
		return lv.Code() == right.(Error).Code()
	default:
		return true
	}
}
