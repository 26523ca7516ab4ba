// Package diagnostics defines whispy diagnostic types for syntax, form and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/whispy/pkg/ast"
)

// Diagnostic code constants.
const (
	ESyntax    = "E_SYNTAX"
	EForm      = "E_FORM"
	EUnbound   = "E_UNBOUND"
	EEval      = "E_EVAL"
	ERecursion = "E_RECURSION"
	EBudget    = "E_BUDGET"
	EIO        = "E_IO"
	EConfig    = "E_CONFIG"
)

// Diagnostic represents a syntax, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		file := d.Span.File
		if file == "" {
			file = "<input>"
		}
		loc = fmt.Sprintf("%s:%d:%d", file, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}

// FormatError renders a language error. Syntax errors get a caret pointer
// under the offending source line in pretty mode.
func FormatError(err Error, pretty bool) string {
	out := FormatDiagnostic(err.Diagnostic(), pretty)
	if se, ok := err.(*SyntaxError); ok && pretty {
		if ptr := se.Pointer(); ptr != "" {
			out += "\n" + ptr
		}
	}
	return out
}
