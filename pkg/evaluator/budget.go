package evaluator

import (
	"fmt"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
)

// DefaultMaxDepth is the nested call limit used when Budget.MaxDepth is zero.
const DefaultMaxDepth = 1000

// Budget holds the resource limits for an evaluation.
type Budget struct {
	// MaxDepth bounds nested function calls. Zero means DefaultMaxDepth.
	MaxDepth int
	// TimeMs bounds wall-clock time per Run. Zero means unlimited.
	TimeMs int64
}

func (b Budget) maxDepth() int {
	if b.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return b.MaxDepth
}

// RecursionError is raised when nested calls exceed the depth limit. It is
// not a diagnostics.Error: hosts do not recover from it.
type RecursionError struct {
	Limit int
	Name  string
	Span  *ast.Span
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("maximum recursion depth exceeded (%d) calling %s", e.Limit, e.Name)
}

// Report renders the error as a diagnostic for display.
func (e *RecursionError) Report() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.ERecursion, e.Error(), e.Span, "check the base case of the recursive function")
}

// BudgetError is raised when an evaluation runs past its time budget.
type BudgetError struct {
	TimeMs int64
	Span   *ast.Span
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("time budget exceeded (%dms)", e.TimeMs)
}

// Report renders the error as a diagnostic for display.
func (e *BudgetError) Report() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EBudget, e.Error(), e.Span, "")
}

// BudgetTracker tracks resource consumption during a Run.
type BudgetTracker struct {
	Depth    int
	MaxDepth int
	Calls    int64
}
