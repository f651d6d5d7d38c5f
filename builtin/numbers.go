package builtin

import (
	"github.com/midbel/recalc/value"
	"github.com/shopspring/decimal"
)

// gather collects the numeric inputs of a reducer. Non blank scalar
// arguments are coerced to numbers and blank ones are skipped; inside
// range arguments only numbers count while blanks, text and booleans
// are skipped. Any error input wins over the
// result, strongest code first.
func gather(args []Arg) ([]decimal.Decimal, value.Value) {
	var (
		nums []decimal.Decimal
		bad  *value.Error
	)
	keep := func(e value.Error) {
		if bad == nil {
			bad = &e
		} else {
			worst := value.Worst(*bad, e)
			bad = &worst
		}
	}
	for _, a := range args {
		if rv, ok := a.Range(); ok {
			if e, isErr := value.AsError(rv); isErr {
				keep(e)
				continue
			}
			arr := rv.(value.Array)
			for _, cell := range arr.All() {
				if e, isErr := value.AsError(cell); isErr {
					keep(e)
					continue
				}
				if n, isNum := cell.(value.Number); isNum {
					nums = append(nums, n.Dec())
				}
			}
			continue
		}
		v := a.Eval()
		if e, isErr := value.AsError(v); isErr {
			keep(e)
			continue
		}
		if value.IsBlank(v) {
			continue
		}
		d, err := value.CastToNumber(v)
		if err != nil {
			keep(value.ErrValue)
			continue
		}
		nums = append(nums, d)
	}
	if bad != nil {
		return nil, *bad
	}
	return nums, nil
}

func callSum(_ Context, args []Arg) value.Value {
	nums, bad := gather(args)
	if bad != nil {
		return bad
	}
	total := decimal.Zero
	for _, d := range nums {
		total = total.Add(d)
	}
	return value.Num(total)
}

func callMin(_ Context, args []Arg) value.Value {
	nums, bad := gather(args)
	if bad != nil {
		return bad
	}
	if len(nums) == 0 {
		return value.NumFromInt(0)
	}
	min := nums[0]
	for _, d := range nums[1:] {
		if d.Cmp(min) < 0 {
			min = d
		}
	}
	return value.Num(min)
}

func callMax(_ Context, args []Arg) value.Value {
	nums, bad := gather(args)
	if bad != nil {
		return bad
	}
	if len(nums) == 0 {
		return value.NumFromInt(0)
	}
	max := nums[0]
	for _, d := range nums[1:] {
		if d.Cmp(max) > 0 {
			max = d
		}
	}
	return value.Num(max)
}

func callAverage(_ Context, args []Arg) value.Value {
	nums, bad := gather(args)
	if bad != nil {
		return bad
	}
	if len(nums) == 0 {
		return value.ErrDiv0
	}
	total := decimal.Zero
	for _, d := range nums {
		total = total.Add(d)
	}
	return value.Num(total.Div(decimal.NewFromInt(int64(len(nums)))))
}
