// Package runtime provides the top-level whispy runtime orchestrator.
package runtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/evaluator"
	"github.com/thomasrohde/whispy/pkg/formatter"
	"github.com/thomasrohde/whispy/pkg/parser"
	"github.com/thomasrohde/whispy/pkg/stdlib"
	"github.com/thomasrohde/whispy/pkg/validator"
	"github.com/thomasrohde/whispy/pkg/value"
)

// Result holds the outcome of a program execution.
type Result struct {
	Value value.Value
	Calls int64
}

// Runtime wires together all whispy components. It keeps one session scope
// across calls to Run.
type Runtime struct {
	registry *stdlib.Registry
	omni     *value.Omni
	scope    *value.Scope
	ev       *evaluator.Evaluator
	stdout   io.Writer
	stdin    io.Reader
	budget   evaluator.Budget
	runID    string
	trace    func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithRegistry sets the builtin registry.
func WithRegistry(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.registry = r
	}
}

// WithStdout sets where print and quit write.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithStdin sets where simple_input reads from.
func WithStdin(r io.Reader) Option {
	return func(rt *Runtime) {
		rt.stdin = r
	}
}

// WithMaxDepth sets the nested call limit.
func WithMaxDepth(n int) Option {
	return func(rt *Runtime) {
		rt.budget.MaxDepth = n
	}
}

// WithTimeBudget limits each Run to ms milliseconds. Zero means unlimited.
func WithTimeBudget(ms int64) Option {
	return func(rt *Runtime) {
		rt.budget.TimeMs = ms
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default, the default builtins are registered and the process's standard
// streams are used.
func New(opts ...Option) *Runtime {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	rt := &Runtime{
		registry: reg,
		stdout:   os.Stdout,
		stdin:    os.Stdin,
		runID:    "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}

	rt.omni = rt.registry.Omni()
	rt.scope = value.NewScope(rt.omni)
	rt.ev = evaluator.New(evaluator.Options{
		Stdout: rt.stdout,
		Stdin:  bufio.NewReader(rt.stdin),
		Trace:  rt.trace,
		RunID:  rt.runID,
		Budget: rt.budget,
	})
	return rt
}

// Scope returns the session scope.
func (rt *Runtime) Scope() *value.Scope {
	return rt.scope
}

// Reset discards every session binding.
func (rt *Runtime) Reset() {
	rt.scope = value.NewScope(rt.omni)
}

// Names returns the builtin and operator names visible in every scope.
func (rt *Runtime) Names() []string {
	return rt.omni.Names()
}

// Run parses, validates, and evaluates source in the session scope.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	root, err := parser.Parse(source, filename)
	if err != nil {
		return nil, err
	}

	if vDiags := validator.Validate(root); len(vDiags) > 0 {
		return nil, &DiagnosticError{Diagnostics: vDiags}
	}

	v, err := rt.ev.Run(ctx, root, rt.scope)
	calls := rt.ev.Tracker().Calls
	if err != nil {
		return &Result{Calls: calls}, err
	}
	return &Result{Value: v, Calls: calls}, nil
}

// Check parses and validates a whispy program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	root, err := parser.Parse(source, filename)
	if err != nil {
		if de, ok := err.(diagnostics.Error); ok {
			return []diagnostics.Diagnostic{de.Diagnostic()}
		}
		return []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ESyntax, err.Error(), nil, "")}
	}
	return validator.Validate(root)
}

// Format parses and formats a whispy program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	root, err := parser.Parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(root), nil
}

// DiagnosticError wraps validator diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// Diagnostic returns the first diagnostic.
func (e *DiagnosticError) Diagnostic() diagnostics.Diagnostic {
	if len(e.Diagnostics) == 0 {
		return diagnostics.MakeDiag(diagnostics.EForm, "invalid program", nil, "")
	}
	return e.Diagnostics[0]
}
