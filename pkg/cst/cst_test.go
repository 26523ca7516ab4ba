package cst_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/cst"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/lexer"
)

func mustParse(t *testing.T, source string) *cst.Node {
	t.Helper()
	root, err := cst.Parse(source, "test.wl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return root
}

func syntaxError(t *testing.T, source string) *diagnostics.SyntaxError {
	t.Helper()
	_, err := cst.Parse(source, "test.wl")
	var se *diagnostics.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *diagnostics.SyntaxError for %q, got %v", source, err)
	}
	return se
}

func TestNesting(t *testing.T) {
	root := mustParse(t, "(def a 3)\n(f (g 1) 2)\n8")
	if !root.IsRoot() {
		t.Fatal("expected root node")
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d", len(root.Children))
	}
	second := root.Children[1]
	if second.IsLeaf() || len(second.Children) != 3 {
		t.Fatalf("expected (f (g 1) 2) container, got %s", second)
	}
	if second.Children[1].IsLeaf() {
		t.Error("expected nested (g 1) container")
	}
	if !root.Children[2].IsLeaf() || root.Children[2].Token.Value != int64(8) {
		t.Errorf("expected leaf 8, got %s", root.Children[2])
	}
}

func TestStringRendersSource(t *testing.T) {
	src := "(def (f x) (+ x 1))\n(print \"b\" #t 2.5)"
	if got := mustParse(t, src).String(); got != src {
		t.Errorf("String() = %q, want %q", got, src)
	}
}

func TestEmptyListAndEmptySource(t *testing.T) {
	root := mustParse(t, "()")
	if len(root.Children) != 1 || root.Children[0].IsLeaf() || len(root.Children[0].Children) != 0 {
		t.Errorf("expected one empty container, got %s", root)
	}
	if root := mustParse(t, "  ; nothing\n"); len(root.Children) != 0 {
		t.Errorf("expected empty root, got %d children", len(root.Children))
	}
}

func TestOperatorFlag(t *testing.T) {
	root := mustParse(t, "(+ a)")
	list := root.Children[0]
	if !list.Children[0].IsOperator() {
		t.Error("expected + to be flagged as operator")
	}
	if list.Children[1].IsOperator() {
		t.Error("did not expect a to be flagged as operator")
	}
}

func TestBalanced(t *testing.T) {
	for _, src := range []string{"", "()", "(())", "(a (b (c)) d)", "(a)(b)", "((((x))))"} {
		if _, err := cst.Parse(src, "test.wl"); err != nil {
			t.Errorf("%q: unexpected error %v", src, err)
		}
	}
}

func TestTooManyClosing(t *testing.T) {
	se := syntaxError(t, "(a b))")
	if se.Offset != 5 {
		t.Errorf("offset = %d, want 5", se.Offset)
	}
	if !strings.Contains(se.Message, "too many closing") {
		t.Errorf("unexpected message %q", se.Message)
	}

	se = syntaxError(t, ")(")
	if se.Offset != 0 {
		t.Errorf("offset = %d, want 0", se.Offset)
	}
}

func TestMissingClosingReportsEndOfInput(t *testing.T) {
	src := "(a b"
	se := syntaxError(t, src)
	if se.Offset != len(src) {
		t.Errorf("offset = %d, want %d", se.Offset, len(src))
	}
	if !strings.Contains(se.Message, "end of input") {
		t.Errorf("message %q does not mention end of input", se.Message)
	}
	if !strings.Contains(se.Message, "1 unclosed") {
		t.Errorf("message %q does not count unclosed parens", se.Message)
	}
}

func TestRootNotEqualToList(t *testing.T) {
	a := mustParse(t, "x")
	b := cst.List(ast.Span{}, a.Children...)
	if a.Equal(b) {
		t.Error("root must not equal a plain container")
	}
	if !a.Equal(mustParse(t, "  x ")) {
		t.Error("expected equal trees")
	}
}

func TestBuildWithoutEOF(t *testing.T) {
	tokens := []lexer.Token{
		{Type: lexer.TokOpen, Text: "("},
		{Type: lexer.TokSymbol, Text: "a", Value: "a", Offset: 1},
		{Type: lexer.TokClose, Text: ")", Offset: 2},
	}
	root, err := cst.Build(tokens, "(a)", "test.wl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.String() != "(a)" {
		t.Errorf("got %s", root)
	}
}
