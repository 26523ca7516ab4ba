package stdlib

import (
	"fmt"

	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/value"
)

// RegisterDefaults adds all default builtins.
func RegisterDefaults(r *Registry) {
	// Math
	r.Register(&value.Builtin{Name: "sum", Fn: builtinSum})
	r.Register(&value.Builtin{Name: "sub", Fn: builtinSub})

	// IO
	r.Register(&value.Builtin{Name: "print", Fn: builtinPrint})
	r.Register(&value.Builtin{Name: "simple_input", Fn: builtinSimpleInput})
	r.Register(&value.Builtin{Name: "quit", Fn: builtinQuit})

	// Lists
	r.Register(&value.Builtin{Name: "quote", Special: builtinQuote})
	r.Register(&value.Builtin{Name: "list", Fn: builtinList})
	r.Register(&value.Builtin{Name: "car", Fn: builtinCar})
	r.Register(&value.Builtin{Name: "cdr", Fn: builtinCdr})
	r.Register(&value.Builtin{Name: "cons", Fn: builtinCons})
	r.Register(&value.Builtin{Name: "len", Fn: builtinLen})
}

// ExitRequest is returned by quit. Hosts end the session and exit the
// process with Code.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("quit with exit code %d", e.Code)
}

func evalErr(format string, args ...any) error {
	return &diagnostics.EvaluationError{Message: fmt.Sprintf(format, args...)}
}
