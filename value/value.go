package value

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind int8

const (
	KindBlank Kind = 1 << iota
	KindNumber
	KindText
	KindBool
	KindError
	KindArray
)

// Value is what a cell evaluates to: blank, number, text, boolean or an
// error code. Arrays only exist transiently, as range arguments to
// builtin functions.
type Value interface {
	Kind() Kind
	fmt.Stringer
}

type Blank struct{}

func Empty() Value {
	return Blank{}
}

func (Blank) Kind() Kind {
	return KindBlank
}

func (Blank) String() string {
	return ""
}

type Number decimal.Decimal

func Num(d decimal.Decimal) Number {
	return Number(d)
}

func NumFromInt(n int64) Number {
	return Number(decimal.NewFromInt(n))
}

func (n Number) Dec() decimal.Decimal {
	return decimal.Decimal(n)
}

func (Number) Kind() Kind {
	return KindNumber
}

// String renders the canonical decimal text: no trailing zeros after the
// point, no dangling point.
func (n Number) String() string {
	str := decimal.Decimal(n).String()
	if strings.ContainsRune(str, '.') {
		str = strings.TrimRight(str, "0")
		str = strings.TrimSuffix(str, ".")
	}
	return str
}

type Text string

func (Text) Kind() Kind {
	return KindText
}

func (t Text) String() string {
	return string(t)
}

type Boolean bool

func (Boolean) Kind() Kind {
	return KindBool
}

func (b Boolean) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func IsError(v Value) bool {
	return v != nil && v.Kind() == KindError
}

func IsBlank(v Value) bool {
	return v == nil || v.Kind() == KindBlank
}
