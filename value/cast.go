package value

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CastToNumber applies the implicit numeric coercions: blank reads as
// zero, booleans as 1/0, text is parsed as a decimal. Error values pass
// through unchanged; anything else that does not convert yields #VALUE!.
func CastToNumber(v Value) (decimal.Decimal, error) {
	switch v := v.(type) {
	case nil, Blank:
		return decimal.Zero, nil
	case Number:
		return v.Dec(), nil
	case Boolean:
		if v {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case Text:
		d, err := decimal.NewFromString(strings.TrimSpace(string(v)))
		if err != nil {
			return decimal.Zero, ErrValue
		}
		return d, nil
	case Error:
		return decimal.Zero, v
	default:
		return decimal.Zero, ErrValue
	}
}

// CastToText renders a value the way concatenation sees it.
func CastToText(v Value) (string, error) {
	switch v := v.(type) {
	case nil, Blank:
		return "", nil
	case Text:
		return string(v), nil
	case Number, Boolean:
		return v.String(), nil
	case Error:
		return "", v
	default:
		return "", ErrValue
	}
}

// CastToBool applies the boolean coercions: TRUE/FALSE text ignoring
// case, numbers by comparison with zero, blank as false.
func CastToBool(v Value) (bool, error) {
	switch v := v.(type) {
	case nil, Blank:
		return false, nil
	case Boolean:
		return bool(v), nil
	case Number:
		return !v.Dec().IsZero(), nil
	case Text:
		switch strings.ToLower(string(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, ErrValue
	case Error:
		return false, v
	default:
		return false, ErrValue
	}
}

// AsError reports the error value carried by v, if any.
func AsError(v Value) (Error, bool) {
	e, ok := v.(Error)
	return e, ok
}
