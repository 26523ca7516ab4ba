package diagnostics_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.wl", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.MakeDiag(diagnostics.EForm, "def requires a target", span, "write (def name value)")

	if d.Code != diagnostics.EForm {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EForm)
	}
	if d.Message != "def requires a target" {
		t.Errorf("got Message = %q", d.Message)
	}
	if d.Span != span {
		t.Error("span not kept")
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.wl", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.MakeDiag(diagnostics.EUnbound, `symbol "x" can't be found in scope`, span, "did you mean 'y'?")

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "error[E_UNBOUND]") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "test.wl:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticNoSpan(t *testing.T) {
	out := diagnostics.FormatDiagnostic(diagnostics.MakeDiag(diagnostics.EIO, "read failed", nil, ""), true)
	if !strings.Contains(out, "<unknown>") {
		t.Errorf("expected unknown location, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ESyntax, "bad token", nil, "")
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.Contains(out, `"code":"E_SYNTAX"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
	if strings.Contains(out, "span") || strings.Contains(out, "hint") {
		t.Errorf("empty fields should be omitted, got: %s", out)
	}
}

func TestFormatDiagnostics(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EForm, "first", nil, ""),
		diagnostics.MakeDiag(diagnostics.EForm, "second", nil, ""),
	}
	pretty := diagnostics.FormatDiagnostics(diags, true)
	if strings.Count(pretty, "error[E_FORM]") != 2 {
		t.Errorf("expected two entries, got: %s", pretty)
	}
	js := diagnostics.FormatDiagnostics(diags, false)
	if !strings.HasPrefix(js, "[") {
		t.Errorf("expected a JSON array, got: %s", js)
	}
}

func TestSyntaxError(t *testing.T) {
	src := "(def x 1)\n(print @)"
	err := diagnostics.NewSyntaxError(src, "main.wl", strings.Index(src, "@"), "unrecognized character '@'")

	if err.Span.StartLine != 2 || err.Span.StartCol != 8 {
		t.Errorf("got line %d col %d, want 2:8", err.Span.StartLine, err.Span.StartCol)
	}
	if got := err.Error(); got != "unrecognized character '@' (line 2, column 8)" {
		t.Errorf("Error() = %q", got)
	}
	if d := err.Diagnostic(); d.Code != diagnostics.ESyntax || d.Span.File != "main.wl" {
		t.Errorf("unexpected diagnostic %+v", d)
	}

	var taxonomy diagnostics.Error
	if !errors.As(error(err), &taxonomy) {
		t.Error("SyntaxError should be a diagnostics.Error")
	}
}

func TestFormatErrorAddsCaret(t *testing.T) {
	src := "(print @)"
	err := diagnostics.NewSyntaxError(src, "main.wl", 7, "unrecognized character '@'")

	pretty := diagnostics.FormatError(err, true)
	want := "    (print @)\n    " + strings.Repeat(" ", 7) + "^"
	if !strings.HasSuffix(pretty, want) {
		t.Errorf("expected caret block, got:\n%s", pretty)
	}

	plain := diagnostics.FormatError(err, false)
	if strings.Contains(plain, "^") {
		t.Errorf("JSON output should not carry a caret: %s", plain)
	}
}

func TestUnboundAndEvaluationErrors(t *testing.T) {
	ue := &diagnostics.UnboundSymbolError{Name: "foo"}
	if ue.Error() != `symbol "foo" can't be found in scope` {
		t.Errorf("got %q", ue.Error())
	}
	if ue.Diagnostic().Code != diagnostics.EUnbound {
		t.Errorf("got code %s", ue.Diagnostic().Code)
	}

	span := &ast.Span{File: "m.wl", StartLine: 1, StartCol: 2}
	ee := diagnostics.Evalf(span, "cannot apply %s", "int")
	if ee.Error() != "cannot apply int" {
		t.Errorf("got %q", ee.Error())
	}
	if d := ee.Diagnostic(); d.Code != diagnostics.EEval || d.Span != span {
		t.Errorf("unexpected diagnostic %+v", d)
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		offset int
		line   int
		col    int
	}{
		{"start", "abc", 0, 1, 1},
		{"middle", "abc", 2, 1, 3},
		{"second line", "ab\ncd", 4, 2, 2},
		{"past end", "ab", 10, 1, 3},
		{"negative", "ab", -1, 1, 1},
		{"runes", "é(x", 2, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col := diagnostics.Locate(tt.source, tt.offset)
			if line != tt.line || col != tt.col {
				t.Errorf("Locate(%q, %d) = %d:%d, want %d:%d", tt.source, tt.offset, line, col, tt.line, tt.col)
			}
		})
	}
}

func TestCaretWideRunes(t *testing.T) {
	src := `(print "日本" @)`
	off := strings.Index(src, "@")
	got := diagnostics.Caret(src, off)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", got)
	}
	// "(print \"" is 8 cells, the two CJK runes are 4, then "\" " is 2.
	if want := "    " + strings.Repeat(" ", 14) + "^"; lines[1] != want {
		t.Errorf("caret line = %q, want %q", lines[1], want)
	}
	if diagnostics.Caret("", 0) != "" {
		t.Error("empty source should give no caret")
	}
}
