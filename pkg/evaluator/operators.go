package evaluator

import (
	"math"

	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/value"
)

type opKind int

const (
	// foldOp reduces its operands left to right.
	foldOp opKind = iota
	// chainOp compares each adjacent pair and yields #t only if all hold.
	chainOp
	// unaryOp takes exactly one operand.
	unaryOp
)

// unaryPolicy decides what a fold or chain operator does with one operand.
type unaryPolicy int

const (
	// noDefault rejects a lone operand.
	noDefault unaryPolicy = iota
	// neutralDefault folds the type's neutral element with the operand.
	neutralDefault
	// selfDefault applies the operator to the operand and itself.
	selfDefault
)

// opDef describes one operator: the host primitive per operand type and
// the default used when it is given a single operand.
type opDef struct {
	name    string
	kind    opKind
	unary   unaryPolicy
	ints    func(a, b int64) (value.Value, error)
	floats  func(a, b float64) (value.Value, error)
	strings func(a, b string) (value.Value, error)
	bools   func(a, b bool) (value.Value, error)
	symbols func(a, b string) (value.Value, error)
	// neutral is the left operand folded with a lone argument, by type.
	neutral map[string]value.Value

	int1  func(a int64) value.Value
	bool1 func(a bool) value.Value
}

var (
	vTrue  = value.NewBool(true)
	vFalse = value.NewBool(false)
)

func boolean(b bool) (value.Value, error) { return value.NewBool(b), nil }

func divByZero(name string) error {
	return &diagnostics.EvaluationError{Message: name + ": division by zero"}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

func floatMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

func operatorTable() []*opDef {
	return []*opDef{
		{
			name:    "+",
			unary:   neutralDefault,
			ints:    checkedInts("+", AddInt),
			floats:  func(a, b float64) (value.Value, error) { return value.NewFloat(a + b), nil },
			strings: func(a, b string) (value.Value, error) { return value.NewString(a + b), nil },
			bools:   func(a, b bool) (value.Value, error) { return boolean(a || b) },
			neutral: map[string]value.Value{
				"int": value.NewInt(0), "float": value.NewFloat(0), "string": value.NewString(""), "bool": vTrue,
			},
		},
		{
			name:    "-",
			unary:   neutralDefault,
			ints:    checkedInts("-", SubInt),
			floats:  func(a, b float64) (value.Value, error) { return value.NewFloat(a - b), nil },
			neutral: map[string]value.Value{"int": value.NewInt(0), "float": value.NewFloat(0)},
		},
		{
			name:    "*",
			unary:   neutralDefault,
			ints:    checkedInts("*", MulInt),
			floats:  func(a, b float64) (value.Value, error) { return value.NewFloat(a * b), nil },
			bools:   func(a, b bool) (value.Value, error) { return boolean(a && b) },
			neutral: map[string]value.Value{"int": value.NewInt(1), "float": value.NewFloat(1), "bool": vTrue},
		},
		{
			name: "**",
			ints: func(a, b int64) (value.Value, error) {
				if b < 0 {
					return nil, &diagnostics.EvaluationError{Message: "**: negative int exponent, use a float base"}
				}
				n, ok := intPow(a, b)
				return checked("**", n, ok)
			},
			floats: func(a, b float64) (value.Value, error) { return value.NewFloat(math.Pow(a, b)), nil },
		},
		{
			name: "/",
			ints: func(a, b int64) (value.Value, error) {
				if b == 0 {
					return nil, divByZero("/")
				}
				if a == math.MinInt64 && b == -1 {
					return nil, overflow("/")
				}
				if a%b == 0 {
					return value.NewInt(a / b), nil
				}
				return value.NewFloat(float64(a) / float64(b)), nil
			},
			floats: func(a, b float64) (value.Value, error) {
				if b == 0 {
					return nil, divByZero("/")
				}
				return value.NewFloat(a / b), nil
			},
		},
		{
			name: "//",
			ints: func(a, b int64) (value.Value, error) {
				if b == 0 {
					return nil, divByZero("//")
				}
				if a == math.MinInt64 && b == -1 {
					return nil, overflow("//")
				}
				return value.NewInt(floorDiv(a, b)), nil
			},
			floats: func(a, b float64) (value.Value, error) {
				if b == 0 {
					return nil, divByZero("//")
				}
				return value.NewFloat(math.Floor(a / b)), nil
			},
		},
		{
			name: "%",
			ints: func(a, b int64) (value.Value, error) {
				if b == 0 {
					return nil, divByZero("%")
				}
				return value.NewInt(floorMod(a, b)), nil
			},
			floats: func(a, b float64) (value.Value, error) {
				if b == 0 {
					return nil, divByZero("%")
				}
				return value.NewFloat(floatMod(a, b)), nil
			},
		},
		equality("="),
		equality("=="),
		{
			name:    "!=",
			kind:    chainOp,
			ints:    func(a, b int64) (value.Value, error) { return boolean(a != b) },
			floats:  func(a, b float64) (value.Value, error) { return boolean(a != b) },
			strings: func(a, b string) (value.Value, error) { return boolean(a != b) },
			bools:   func(a, b bool) (value.Value, error) { return boolean(a != b) },
			symbols: func(a, b string) (value.Value, error) { return boolean(a != b) },
		},
		ordering("<", func(c int) bool { return c < 0 }),
		ordering("<=", func(c int) bool { return c <= 0 }),
		ordering(">", func(c int) bool { return c > 0 }),
		ordering(">=", func(c int) bool { return c >= 0 }),
		{
			name: "<<",
			ints: func(a, b int64) (value.Value, error) {
				if b < 0 {
					return nil, &diagnostics.EvaluationError{Message: "<<: negative shift count"}
				}
				n, ok := shiftLeft(a, b)
				return checked("<<", n, ok)
			},
		},
		{
			name: ">>",
			ints: func(a, b int64) (value.Value, error) {
				if b < 0 {
					return nil, &diagnostics.EvaluationError{Message: ">>: negative shift count"}
				}
				return value.NewInt(a >> uint64(b)), nil
			},
		},
		{
			name:  "&",
			ints:  func(a, b int64) (value.Value, error) { return value.NewInt(a & b), nil },
			bools: func(a, b bool) (value.Value, error) { return boolean(a && b) },
		},
		{
			name:  "|",
			ints:  func(a, b int64) (value.Value, error) { return value.NewInt(a | b), nil },
			bools: func(a, b bool) (value.Value, error) { return boolean(a || b) },
		},
		{
			name:  "^",
			ints:  func(a, b int64) (value.Value, error) { return value.NewInt(a ^ b), nil },
			bools: func(a, b bool) (value.Value, error) { return boolean(a != b) },
		},
		{name: "and", bools: func(a, b bool) (value.Value, error) { return boolean(a && b) }},
		{name: "or", bools: func(a, b bool) (value.Value, error) { return boolean(a || b) }},
		{name: "xor", bools: func(a, b bool) (value.Value, error) { return boolean(a != b) }},
		{name: "eqv", bools: func(a, b bool) (value.Value, error) { return boolean(a == b) }},
		{name: "~", kind: unaryOp, int1: func(a int64) value.Value { return value.NewInt(^a) }},
		{name: "not", kind: unaryOp, bool1: func(a bool) value.Value { return value.NewBool(!a) }},
	}
}

func equality(name string) *opDef {
	return &opDef{
		name:    name,
		kind:    chainOp,
		unary:   selfDefault,
		ints:    func(a, b int64) (value.Value, error) { return boolean(a == b) },
		floats:  func(a, b float64) (value.Value, error) { return boolean(a == b) },
		strings: func(a, b string) (value.Value, error) { return boolean(a == b) },
		bools:   func(a, b bool) (value.Value, error) { return boolean(a == b) },
		symbols: func(a, b string) (value.Value, error) { return boolean(a == b) },
	}
}

func ordering(name string, holds func(c int) bool) *opDef {
	return &opDef{
		name: name,
		kind: chainOp,
		ints: func(a, b int64) (value.Value, error) {
			switch {
			case a < b:
				return boolean(holds(-1))
			case a > b:
				return boolean(holds(1))
			}
			return boolean(holds(0))
		},
		floats: func(a, b float64) (value.Value, error) {
			switch {
			case a < b:
				return boolean(holds(-1))
			case a > b:
				return boolean(holds(1))
			case a == b:
				return boolean(holds(0))
			}
			// NaN compares false with everything
			return vFalse, nil
		},
		strings: func(a, b string) (value.Value, error) {
			switch {
			case a < b:
				return boolean(holds(-1))
			case a > b:
				return boolean(holds(1))
			}
			return boolean(holds(0))
		},
	}
}

// RegisterOperators defines every operator in omni under its own text.
func RegisterOperators(omni *value.Omni) {
	for _, def := range operatorTable() {
		d := def
		omni.Define(d.name, &value.Builtin{Name: d.name, Fn: d.call})
	}
}

// OperatorNames lists the operators RegisterOperators defines.
func OperatorNames() []string {
	table := operatorTable()
	names := make([]string, len(table))
	for i, d := range table {
		names[i] = d.name
	}
	return names
}

func (d *opDef) call(c *value.Call, args []value.Value) (value.Value, error) {
	span := &c.Span
	if d.kind == unaryOp {
		if len(args) != 1 {
			return nil, diagnostics.Evalf(span, "%s takes exactly one argument, got %d", d.name, len(args))
		}
		switch a := args[0].(type) {
		case value.Int:
			if d.int1 != nil {
				return d.int1(a.Value), nil
			}
		case value.Bool:
			if d.bool1 != nil {
				return d.bool1(a.Value), nil
			}
		}
		return nil, diagnostics.Evalf(span, "%s does not support %s", d.name, args[0].TypeName())
	}

	if len(args) == 0 {
		return nil, diagnostics.Evalf(span, "%s needs at least one argument", d.name)
	}
	typ, args, err := unify(d.name, args)
	if err != nil {
		err.(*diagnostics.EvaluationError).Span = span
		return nil, err
	}
	if !d.supports(typ) {
		return nil, diagnostics.Evalf(span, "%s does not support %s", d.name, typ)
	}

	if len(args) == 1 {
		switch d.unary {
		case selfDefault:
			return d.combine(typ, args[0], args[0])
		case neutralDefault:
			if n, ok := d.neutral[typ]; ok {
				return d.combine(typ, n, args[0])
			}
		}
		return nil, diagnostics.Evalf(span, "%s needs at least two arguments", d.name)
	}

	if d.kind == chainOp {
		for i := 0; i < len(args)-1; i++ {
			r, err := d.combine(typ, args[i], args[i+1])
			if err != nil {
				return nil, err
			}
			if b, ok := r.(value.Bool); ok && !b.Value {
				return vFalse, nil
			}
		}
		return vTrue, nil
	}

	acc := args[0]
	for _, a := range args[1:] {
		acc, err = d.combine(typ, acc, a)
		if err != nil {
			return nil, err
		}
		// int / int may yield a float mid-fold
		typ = acc.TypeName()
	}
	return acc, nil
}

func (d *opDef) supports(typ string) bool {
	switch typ {
	case "int":
		return d.ints != nil
	case "float":
		return d.floats != nil
	case "string":
		return d.strings != nil
	case "bool":
		return d.bools != nil
	case "symbol":
		return d.symbols != nil
	}
	return false
}

func (d *opDef) combine(typ string, a, b value.Value) (value.Value, error) {
	switch typ {
	case "int":
		return d.ints(a.(value.Int).Value, b.(value.Int).Value)
	case "float":
		return d.floats(toFloat(a), toFloat(b))
	case "string":
		return d.strings(a.(value.String).Value, b.(value.String).Value)
	case "bool":
		return d.bools(a.(value.Bool).Value, b.(value.Bool).Value)
	case "symbol":
		return d.symbols(a.(value.Symbol).Name, b.(value.Symbol).Name)
	}
	return nil, &diagnostics.EvaluationError{Message: d.name + " does not support " + typ}
}

// unify checks that every operand shares one type. Ints mixed with floats
// are promoted to float.
func unify(name string, args []value.Value) (string, []value.Value, error) {
	typ := args[0].TypeName()
	numeric := typ == "int" || typ == "float"
	for _, a := range args[1:] {
		t := a.TypeName()
		if t == typ {
			continue
		}
		if numeric && (t == "int" || t == "float") {
			typ = "float"
			continue
		}
		return "", nil, &diagnostics.EvaluationError{
			Message: name + ": operands must share a type, got " + args[0].TypeName() + " and " + t,
		}
	}
	if typ == "float" {
		args = promote(args)
	}
	return typ, args, nil
}

func promote(args []value.Value) []value.Value {
	out := make([]value.Value, len(args))
	for i, a := range args {
		if n, ok := a.(value.Int); ok {
			out[i] = value.NewFloat(float64(n.Value))
		} else {
			out[i] = a
		}
	}
	return out
}

func toFloat(v value.Value) float64 {
	switch n := v.(type) {
	case value.Int:
		return float64(n.Value)
	case value.Float:
		return n.Value
	}
	return math.NaN()
}
