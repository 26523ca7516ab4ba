// Package value implements the whispy runtime values and the scope chain
// they are bound in.
package value

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/lexer"
)

// Value is the interface for all runtime values. String returns the display
// form used by print and the REPL.
type Value interface {
	TypeName() string
	String() string
}

// Int is a 64-bit signed integer.
type Int struct {
	Value int64
}

// Float is a 64-bit floating point number.
type Float struct {
	Value float64
}

// Bool is #t or #f.
type Bool struct {
	Value bool
}

// String is an immutable text value.
type String struct {
	Value string
}

// Symbol is a name. Symbols compare and hash by name and key every scope.
type Symbol struct {
	Name string
}

// List is an ordered sequence of values.
type List struct {
	Items []Value
}

// Function is a user-defined function or lambda together with the scope it
// was defined in.
type Function struct {
	Name    string
	Params  []Symbol
	Body    ast.Node
	Closure *Scope
}

// Call carries what a builtin needs from the evaluator.
type Call struct {
	// Eval evaluates a node in the given scope.
	Eval   func(n ast.Node, s *Scope) (Value, error)
	Scope  *Scope
	Span   ast.Span
	Stdout io.Writer
	Stdin  *bufio.Reader
}

// Builtin is a host function. Fn receives evaluated arguments. Special, when
// set, replaces Fn and receives the argument nodes unevaluated.
type Builtin struct {
	Name    string
	Fn      func(c *Call, args []Value) (Value, error)
	Special func(c *Call, nodes []ast.Node) (Value, error)
}

type nothing struct{}

// Nothing is the no-value marker returned by assignments, print and
// conditions without a matching clause.
var Nothing Value = nothing{}

func (Int) TypeName() string       { return "int" }
func (Float) TypeName() string     { return "float" }
func (Bool) TypeName() string      { return "bool" }
func (String) TypeName() string    { return "string" }
func (Symbol) TypeName() string    { return "symbol" }
func (List) TypeName() string      { return "list" }
func (*Function) TypeName() string { return "function" }
func (*Builtin) TypeName() string  { return "builtin" }
func (nothing) TypeName() string   { return "nothing" }

func (v Int) String() string   { return strconv.FormatInt(v.Value, 10) }
func (v Float) String() string { return FormatFloat(v.Value) }
func (v String) String() string {
	return v.Value
}
func (v Symbol) String() string { return v.Name }
func (nothing) String() string  { return "" }

func (v Bool) String() string {
	if v.Value {
		return "#t"
	}
	return "#f"
}

func (v List) String() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = Repr(item)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (f *Function) String() string {
	return "<function " + f.Name + ">"
}

func (b *Builtin) String() string {
	return "<builtin " + b.Name + ">"
}

// NewInt creates an integer value.
func NewInt(n int64) Value { return Int{Value: n} }

// NewFloat creates a float value.
func NewFloat(f float64) Value { return Float{Value: f} }

// NewBool creates a boolean value.
func NewBool(b bool) Value { return Bool{Value: b} }

// NewString creates a string value.
func NewString(s string) Value { return String{Value: s} }

// NewSymbol creates a symbol value.
func NewSymbol(name string) Symbol { return Symbol{Name: name} }

// NewList creates a list value.
func NewList(items []Value) Value { return List{Items: items} }

// FormatFloat prints f so that it always reads back as a float.
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Repr returns the source form of v: strings are quoted, everything else
// prints as its display form.
func Repr(v Value) string {
	if s, ok := v.(String); ok {
		return `"` + lexer.Escape(s.Value) + `"`
	}
	return v.String()
}

// IsNothing reports whether v is the no-value marker.
func IsNothing(v Value) bool {
	_, ok := v.(nothing)
	return ok
}

// Equal compares two values structurally. Functions and builtins compare by
// identity. Int and Float never compare equal to each other.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case List:
		y, ok := b.(List)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Function:
		y, ok := b.(*Function)
		return ok && x == y
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x == y
	default:
		return a == b
	}
}
