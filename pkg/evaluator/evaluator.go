// Package evaluator implements the whispy tree-walking evaluator.
package evaluator

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/value"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart   TraceEventType = "run_start"
	TraceRunEnd     TraceEventType = "run_end"
	TraceFormStart  TraceEventType = "form_start"
	TraceFormEnd    TraceEventType = "form_end"
	TraceCallStart  TraceEventType = "call_start"
	TraceCallEnd    TraceEventType = "call_end"
	TraceAssign     TraceEventType = "assign"
	TraceCondBranch TraceEventType = "cond_branch"
)

// TraceEvent represents a single trace event emitted during evaluation.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Span      *ast.Span      `json:"span,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Options configures an Evaluator.
type Options struct {
	Stdout io.Writer
	Stdin  *bufio.Reader
	Trace  func(event TraceEvent)
	RunID  string
	Budget Budget
}

// Evaluator walks AST nodes against a scope. It keeps call-depth state and
// must not be shared between goroutines.
type Evaluator struct {
	ctx        context.Context
	opts       Options
	tracker    BudgetTracker
	startHires int64
}

// New creates an Evaluator. Missing streams default to the process's own.
func New(opts Options) *Evaluator {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = bufio.NewReader(os.Stdin)
	}
	return &Evaluator{
		ctx:        context.Background(),
		opts:       opts,
		tracker:    BudgetTracker{MaxDepth: opts.Budget.maxDepth()},
		startHires: hiresNow(),
	}
}

// Tracker returns the resource counters of the last evaluation.
func (ev *Evaluator) Tracker() BudgetTracker {
	return ev.tracker
}

func (ev *Evaluator) emit(event TraceEventType, span *ast.Span, data map[string]any) {
	if ev.opts.Trace != nil {
		ev.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     ev.opts.RunID,
			Event:     event,
			Span:      span,
			Data:      data,
		})
	}
}

func (ev *Evaluator) begin(ctx context.Context) context.CancelFunc {
	cancel := context.CancelFunc(func() {})
	if ev.opts.Budget.TimeMs > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(ev.opts.Budget.TimeMs)*time.Millisecond)
	}
	ev.ctx = ctx
	ev.tracker.Depth = 0
	ev.tracker.Calls = 0
	ev.startHires = hiresNow()
	return cancel
}

// Run evaluates the top-level forms of root in order and returns the value
// of the last one. Forms that completed before an error keep their effects
// on scope.
func (ev *Evaluator) Run(ctx context.Context, root *ast.Root, scope *value.Scope) (value.Value, error) {
	cancel := ev.begin(ctx)
	defer cancel()

	span := root.Span
	ev.emit(TraceRunStart, &span, nil)

	result := value.Nothing
	var err error
	for i, form := range root.Children {
		formSpan := form.NodeSpan()
		ev.emit(TraceFormStart, &formSpan, map[string]any{"index": i, "kind": form.Kind()})
		result, err = ev.eval(form, scope)
		if err != nil {
			ev.emit(TraceFormEnd, &formSpan, map[string]any{"index": i, "error": err.Error()})
			break
		}
		ev.emit(TraceFormEnd, &formSpan, map[string]any{"index": i, "type": result.TypeName()})
	}

	ev.emit(TraceRunEnd, &span, map[string]any{
		"calls":      ev.tracker.Calls,
		"durationNs": hiresSinceNs(ev.startHires),
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Evaluate evaluates a single node in scope.
func (ev *Evaluator) Evaluate(ctx context.Context, n ast.Node, scope *value.Scope) (value.Value, error) {
	cancel := ev.begin(ctx)
	defer cancel()
	return ev.eval(n, scope)
}

func (ev *Evaluator) eval(n ast.Node, s *value.Scope) (value.Value, error) {
	switch node := n.(type) {
	case *ast.Literal:
		v, ok := node.Value.(value.Value)
		if !ok {
			return nil, diagnostics.Evalf(spanOf(node), "literal holds a non-value %T", node.Value)
		}
		return v, nil

	case *ast.Symbol:
		v, err := value.Lookup(s, value.NewSymbol(node.Name))
		if err != nil {
			var ue *diagnostics.UnboundSymbolError
			if errors.As(err, &ue) && ue.Span == nil {
				ue.Span = spanOf(node)
			}
			return nil, err
		}
		return v, nil

	case *ast.Operator:
		if op, ok := s.Omni().Get(value.NewSymbol(node.Op)); ok {
			return op, nil
		}
		return nil, &diagnostics.UnboundSymbolError{Name: node.Op, Span: spanOf(node)}

	case *ast.Keyword:
		return nil, diagnostics.Evalf(spanOf(node), "%s may only appear at the head of a form", node.Word)

	case *ast.QuoteShorthand:
		return nil, diagnostics.Evalf(spanOf(node), "' must be followed by an expression")

	case *ast.Apply:
		return ev.evalApply(node, s)

	case *ast.Assign:
		return ev.evalAssign(node, s)

	case *ast.Condition:
		return ev.evalCondition(node, s)

	case *ast.Lambda:
		params, body, err := functionParts(node.Params(), node.Body(), len(node.Children), node)
		if err != nil {
			return nil, err
		}
		return &value.Function{Name: "lambda", Params: params, Body: body, Closure: s}, nil

	case ast.Container:
		return ev.evalSequence(node.Nodes(), s)
	}
	return nil, diagnostics.Evalf(spanOf(n), "cannot evaluate %s node", n.Kind())
}

// evalSequence evaluates nodes in order and returns the last value.
func (ev *Evaluator) evalSequence(nodes []ast.Node, s *value.Scope) (value.Value, error) {
	result := value.Nothing
	for _, n := range nodes {
		v, err := ev.eval(n, s)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (ev *Evaluator) evalApply(node *ast.Apply, s *value.Scope) (value.Value, error) {
	if len(node.Children) == 0 {
		return value.NewList(nil), nil
	}
	callee, err := ev.eval(node.Callee(), s)
	if err != nil {
		return nil, err
	}

	if b, ok := callee.(*value.Builtin); ok && b.Special != nil {
		return ev.callBuiltin(b, node, s, nil)
	}

	args := make([]value.Value, 0, len(node.Args()))
	for _, a := range node.Args() {
		v, err := ev.eval(a, s)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	switch fn := callee.(type) {
	case *value.Builtin:
		return ev.callBuiltin(fn, node, s, args)
	case *value.Function:
		return ev.callFunction(fn, node, s, args)
	}
	return nil, diagnostics.Evalf(spanOf(node), "%s is not a function", value.Repr(callee))
}

func (ev *Evaluator) callBuiltin(b *value.Builtin, site *ast.Apply, s *value.Scope, args []value.Value) (value.Value, error) {
	call := &value.Call{
		Eval:   ev.eval,
		Scope:  s,
		Span:   site.Span,
		Stdout: ev.opts.Stdout,
		Stdin:  ev.opts.Stdin,
	}
	var (
		v   value.Value
		err error
	)
	if b.Special != nil {
		v, err = b.Special(call, site.Args())
	} else {
		v, err = b.Fn(call, args)
	}
	if err != nil {
		var ee *diagnostics.EvaluationError
		if errors.As(err, &ee) && ee.Span == nil {
			ee.Span = spanOf(site)
		}
		return nil, err
	}
	if v == nil {
		v = value.Nothing
	}
	return v, nil
}

func (ev *Evaluator) callFunction(fn *value.Function, site *ast.Apply, s *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, diagnostics.Evalf(spanOf(site), "%s expects %d %s, got %d",
			fn.Name, len(fn.Params), plural(len(fn.Params), "argument", "arguments"), len(args))
	}
	if err := ev.checkBudget(fn, site); err != nil {
		return nil, err
	}

	// Caller locals stay invisible: only the defining scope is searched.
	callScope := value.NewCallScope(nil, fn.Closure)
	for i, p := range fn.Params {
		value.Bind(callScope, p, args[i])
	}

	ev.tracker.Depth++
	ev.tracker.Calls++
	defer func() { ev.tracker.Depth-- }()

	span := spanOf(site)
	tracing := ev.opts.Trace != nil
	var start int64
	if tracing {
		start = hiresNow()
		ev.emit(TraceCallStart, span, map[string]any{"name": fn.Name, "depth": ev.tracker.Depth})
	}
	v, err := ev.eval(fn.Body, callScope)
	if tracing {
		data := map[string]any{"name": fn.Name, "depth": ev.tracker.Depth, "durationNs": hiresSinceNs(start)}
		if err != nil {
			data["error"] = err.Error()
		}
		ev.emit(TraceCallEnd, span, data)
	}
	return v, err
}

func (ev *Evaluator) checkBudget(fn *value.Function, site *ast.Apply) error {
	if ev.tracker.Depth >= ev.tracker.MaxDepth {
		return &RecursionError{Limit: ev.tracker.MaxDepth, Name: fn.Name, Span: spanOf(site)}
	}
	if err := ev.ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ev.opts.Budget.TimeMs > 0 {
			return &BudgetError{TimeMs: ev.opts.Budget.TimeMs, Span: spanOf(site)}
		}
		return err
	}
	return nil
}

func (ev *Evaluator) evalAssign(node *ast.Assign, s *value.Scope) (value.Value, error) {
	if len(node.Children) != 2 {
		return nil, diagnostics.Evalf(spanOf(node), "%s expects a target and a value, got %d %s",
			node.Keyword, len(node.Children), plural(len(node.Children), "form", "forms"))
	}

	switch target := node.Target().(type) {
	case *ast.Symbol:
		v, err := ev.eval(node.Value(), s)
		if err != nil {
			return nil, err
		}
		value.Bind(s, value.NewSymbol(target.Name), v)
		ev.emit(TraceAssign, spanOf(node), map[string]any{"name": target.Name, "type": v.TypeName()})
		return value.Nothing, nil

	case *ast.Apply:
		if len(target.Children) == 0 {
			return nil, diagnostics.Evalf(spanOf(target), "%s target list needs a function name", node.Keyword)
		}
		name, ok := target.Children[0].(*ast.Symbol)
		if !ok {
			return nil, diagnostics.Evalf(spanOf(target.Children[0]), "function name must be a symbol, got %s", target.Children[0].Kind())
		}
		params, err := symbols(target.Children[1:])
		if err != nil {
			return nil, err
		}
		fn := &value.Function{Name: name.Name, Params: params, Body: node.Value(), Closure: s}
		value.Bind(s, value.NewSymbol(name.Name), fn)
		ev.emit(TraceAssign, spanOf(node), map[string]any{"name": name.Name, "type": fn.TypeName()})
		return value.Nothing, nil
	}
	return nil, diagnostics.Evalf(spanOf(node.Target()), "cannot assign to %s", node.Target().Kind())
}

func (ev *Evaluator) evalCondition(node *ast.Condition, s *value.Scope) (value.Value, error) {
	for i, c := range node.Children {
		clause, ok := c.(*ast.Apply)
		if !ok || len(clause.Children) != 2 {
			return nil, diagnostics.Evalf(spanOf(c), "%s clause must be (predicate result)", node.Keyword)
		}
		p, err := ev.eval(clause.Children[0], s)
		if err != nil {
			return nil, err
		}
		b, ok := p.(value.Bool)
		if !ok {
			return nil, diagnostics.Evalf(spanOf(clause.Children[0]), "%s predicate must be a bool, got %s", node.Keyword, p.TypeName())
		}
		if b.Value {
			ev.emit(TraceCondBranch, spanOf(clause), map[string]any{"clause": i})
			return ev.eval(clause.Children[1], s)
		}
	}
	return value.Nothing, nil
}

// functionParts validates the (params) body pair of a lambda.
func functionParts(params, body ast.Node, count int, at ast.Node) ([]value.Symbol, ast.Node, error) {
	if count != 2 {
		return nil, nil, diagnostics.Evalf(spanOf(at), "lambda expects a parameter list and a body, got %d %s",
			count, plural(count, "form", "forms"))
	}
	list, ok := params.(*ast.Apply)
	if !ok {
		return nil, nil, diagnostics.Evalf(spanOf(params), "lambda parameters must be a list, got %s", params.Kind())
	}
	syms, err := symbols(list.Children)
	if err != nil {
		return nil, nil, err
	}
	return syms, body, nil
}

func symbols(nodes []ast.Node) ([]value.Symbol, error) {
	out := make([]value.Symbol, len(nodes))
	for i, n := range nodes {
		sym, ok := n.(*ast.Symbol)
		if !ok {
			return nil, diagnostics.Evalf(spanOf(n), "parameter must be a symbol, got %s", n.Kind())
		}
		out[i] = value.NewSymbol(sym.Name)
	}
	return out, nil
}

func spanOf(n ast.Node) *ast.Span {
	if n == nil {
		return nil
	}
	span := n.NodeSpan()
	return &span
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
