package stdlib

import (
	"github.com/thomasrohde/whispy/pkg/evaluator"
	"github.com/thomasrohde/whispy/pkg/value"
)

// numbers unpacks numeric arguments. Any float among them makes the whole
// result a float.
func numbers(name string, args []value.Value) (ints []int64, floats []float64, isFloat bool, err error) {
	for _, a := range args {
		switch n := a.(type) {
		case value.Int:
			ints = append(ints, n.Value)
			floats = append(floats, float64(n.Value))
		case value.Float:
			isFloat = true
			floats = append(floats, n.Value)
		default:
			return nil, nil, false, evalErr("%s: expected numbers, got %s", name, a.TypeName())
		}
	}
	return ints, floats, isFloat, nil
}

// (sum n...) → number; (sum) is 0
func builtinSum(_ *value.Call, args []value.Value) (value.Value, error) {
	ints, floats, isFloat, err := numbers("sum", args)
	if err != nil {
		return nil, err
	}
	if isFloat {
		total := 0.0
		for _, f := range floats {
			total += f
		}
		return value.NewFloat(total), nil
	}
	var total int64
	for _, n := range ints {
		var ok bool
		if total, ok = evaluator.AddInt(total, n); !ok {
			return nil, evalErr("sum: integer overflow")
		}
	}
	return value.NewInt(total), nil
}

// (sub n m...) → n - m - ...
func builtinSub(_ *value.Call, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, evalErr("sub: needs at least one argument")
	}
	ints, floats, isFloat, err := numbers("sub", args)
	if err != nil {
		return nil, err
	}
	if isFloat {
		total := floats[0]
		for _, f := range floats[1:] {
			total -= f
		}
		return value.NewFloat(total), nil
	}
	total := ints[0]
	for _, n := range ints[1:] {
		var ok bool
		if total, ok = evaluator.SubInt(total, n); !ok {
			return nil, evalErr("sub: integer overflow")
		}
	}
	return value.NewInt(total), nil
}
