package diagnostics

import (
	"fmt"

	"github.com/thomasrohde/whispy/pkg/ast"
)

// Error is the base of the language error taxonomy. Hosts recover from any
// Error (print it and carry on); anything else propagates.
type Error interface {
	error
	Diagnostic() Diagnostic
}

// SyntaxError reports a lexing or parsing failure at a source offset.
type SyntaxError struct {
	Source  string
	Offset  int
	Message string
	Span    ast.Span
}

// NewSyntaxError creates a SyntaxError, computing line and column from offset.
func NewSyntaxError(source, filename string, offset int, msg string) *SyntaxError {
	line, col := Locate(source, offset)
	return &SyntaxError{
		Source:  source,
		Offset:  offset,
		Message: msg,
		Span: ast.Span{
			File:      filename,
			Offset:    offset,
			StartLine: line,
			StartCol:  col,
			EndLine:   line,
			EndCol:    col + 1,
		},
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Span.StartLine, e.Span.StartCol)
}

// Diagnostic implements Error.
func (e *SyntaxError) Diagnostic() Diagnostic {
	span := e.Span
	return MakeDiag(ESyntax, e.Message, &span, "")
}

// Pointer renders the offending line with a caret under the error offset.
func (e *SyntaxError) Pointer() string {
	return Caret(e.Source, e.Offset)
}

// UnboundSymbolError reports a lookup miss across the whole scope chain.
type UnboundSymbolError struct {
	Name string
	Span *ast.Span
}

func (e *UnboundSymbolError) Error() string {
	return fmt.Sprintf("symbol %q can't be found in scope", e.Name)
}

// Diagnostic implements Error.
func (e *UnboundSymbolError) Diagnostic() Diagnostic {
	return MakeDiag(EUnbound, e.Error(), e.Span, "")
}

// EvaluationError reports a semantic failure during evaluation, such as
// incompatible operand types or calling a non-function.
type EvaluationError struct {
	Message string
	Span    *ast.Span
}

// Evalf creates an EvaluationError with a formatted message.
func Evalf(span *ast.Span, format string, args ...any) *EvaluationError {
	return &EvaluationError{Message: fmt.Sprintf(format, args...), Span: span}
}

func (e *EvaluationError) Error() string {
	return e.Message
}

// Diagnostic implements Error.
func (e *EvaluationError) Diagnostic() Diagnostic {
	return MakeDiag(EEval, e.Message, e.Span, "")
}
