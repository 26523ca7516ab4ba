package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/cst"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/parser"
	"github.com/thomasrohde/whispy/pkg/value"
)

var ignoreSpans = cmpopts.IgnoreTypes(ast.Span{})

// helper: parse source and fail on error
func mustParse(t *testing.T, source string) *ast.Root {
	t.Helper()
	root, err := parser.Parse(source, "test.wl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return root
}

// helper: parse a single top-level expression
func single(t *testing.T, source string) ast.Node {
	t.Helper()
	root := mustParse(t, source)
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(root.Children))
	}
	return root.Children[0]
}

func mustFail(t *testing.T, source string) *diagnostics.SyntaxError {
	t.Helper()
	_, err := parser.Parse(source, "test.wl")
	var se *diagnostics.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *diagnostics.SyntaxError for %q, got %v", source, err)
	}
	return se
}

func sym(name string) *ast.Symbol      { return &ast.Symbol{Name: name} }
func op(text string) *ast.Operator     { return &ast.Operator{Op: text} }
func lit(v value.Value) *ast.Literal   { return &ast.Literal{Value: v} }
func int_(n int64) *ast.Literal        { return lit(value.NewInt(n)) }
func apply(children ...ast.Node) *ast.Apply {
	return &ast.Apply{Children: children}
}
func quote(n ast.Node) *ast.Apply { return apply(sym("quote"), n) }

func assertTree(t *testing.T, got, want ast.Node) {
	t.Helper()
	if diff := cmp.Diff(want, got, ignoreSpans); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		source string
		want   ast.Node
	}{
		{"42", int_(42)},
		{"2.5", lit(value.NewFloat(2.5))},
		{"#t", lit(value.NewBool(true))},
		{"#f", lit(value.NewBool(false))},
		{`"hi"`, lit(value.NewString("hi"))},
		{"x", sym("x")},
		{"+", op("+")},
		{"and", op("and")},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assertTree(t, single(t, tt.source), tt.want)
		})
	}
}

func TestApply(t *testing.T) {
	assertTree(t, single(t, "(sum a (sub 3 1))"),
		apply(sym("sum"), sym("a"), apply(sym("sub"), int_(3), int_(1))))
	assertTree(t, single(t, "((f 1) 2)"), apply(apply(sym("f"), int_(1)), int_(2)))
	assertTree(t, single(t, "()"), apply())
}

func TestApplyHelpers(t *testing.T) {
	a := single(t, "(f 1 2)").(*ast.Apply)
	if a.Callee().(*ast.Symbol).Name != "f" || len(a.Args()) != 2 {
		t.Errorf("unexpected callee/args: %v %v", a.Callee(), a.Args())
	}
}

func TestAssignVariable(t *testing.T) {
	got := single(t, "(def x 1)")
	assertTree(t, got, &ast.Assign{Keyword: "def", Children: []ast.Node{sym("x"), int_(1)}})
}

func TestAssignFunction(t *testing.T) {
	got := single(t, "(define (add a b) (+ a b))")
	want := &ast.Assign{Keyword: "define", Children: []ast.Node{
		apply(sym("add"), sym("a"), sym("b")),
		apply(op("+"), sym("a"), sym("b")),
	}}
	assertTree(t, got, want)
}

func TestConditionInsideAssign(t *testing.T) {
	got := single(t, "(def (fact n) (cond ((= n 1) 1) (#t (* n (fact (sub n 1))))))")
	want := &ast.Assign{Keyword: "def", Children: []ast.Node{
		apply(sym("fact"), sym("n")),
		&ast.Condition{Keyword: "cond", Children: []ast.Node{
			apply(apply(op("="), sym("n"), int_(1)), int_(1)),
			apply(lit(value.NewBool(true)),
				apply(op("*"), sym("n"), apply(sym("fact"), apply(sym("sub"), sym("n"), int_(1))))),
		}},
	}}
	assertTree(t, got, want)
}

func TestIfAlias(t *testing.T) {
	got := single(t, "(if (#f 1) (#t 2))")
	if c, ok := got.(*ast.Condition); !ok || c.Keyword != "if" || len(c.Children) != 2 {
		t.Fatalf("expected if Condition with 2 clauses, got %#v", got)
	}
}

func TestLambda(t *testing.T) {
	got := single(t, "(def (f x) (lambda (y) (sum x y)))")
	want := &ast.Assign{Keyword: "def", Children: []ast.Node{
		apply(sym("f"), sym("x")),
		&ast.Lambda{Children: []ast.Node{
			apply(sym("y")),
			apply(sym("sum"), sym("x"), sym("y")),
		}},
	}}
	assertTree(t, got, want)
}

func TestKeywordOutsideHeadStaysMarker(t *testing.T) {
	got := single(t, "(f def)")
	a := got.(*ast.Apply)
	if kw, ok := a.Children[1].(*ast.Keyword); !ok || kw.Role != ast.RoleAssign {
		t.Errorf("expected Keyword marker, got %#v", a.Children[1])
	}
}

func TestQuoteDesugaring(t *testing.T) {
	tests := []struct {
		source string
		want   ast.Node
	}{
		{"'x", quote(sym("x"))},
		{"'(1 2)", quote(apply(int_(1), int_(2)))},
		{"''x", quote(quote(sym("x")))},
		{"(f 'a b)", apply(sym("f"), quote(sym("a")), sym("b"))},
		{"('(g 'h) 1)", apply(quote(apply(sym("g"), quote(sym("h")))), int_(1))},
		{"'+", quote(op("+"))},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assertTree(t, single(t, tt.source), tt.want)
		})
	}
}

func TestNoShorthandRemains(t *testing.T) {
	root := mustParse(t, "(def q '(a 'b ''c))\n(print 'x (car '(1 2)))")
	ast.Walk(root, func(n ast.Node) bool {
		if _, ok := n.(*ast.QuoteShorthand); ok {
			t.Errorf("QuoteShorthand left at %+v", n.NodeSpan())
		}
		return true
	})
}

func TestDesugarWithoutShorthandIsIdentity(t *testing.T) {
	src := "(def (f x) (cond ((= x 1) \"one\") (#t (quote x))))\n(f 2)"
	tree, err := cst.Parse(src, "test.wl")
	if err != nil {
		t.Fatal(err)
	}
	b := &parser.Builder{Source: src, Filename: "test.wl"}
	root, err := b.OneToOne(tree)
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.DesugarQuotes(root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ast.Node(root), got); diff != "" {
		t.Errorf("desugaring changed a tree without shorthand:\n%s", diff)
	}
}

func TestPullUpOnlyTouchesRole(t *testing.T) {
	src := "(def x (lambda (y) y))"
	tree, err := cst.Parse(src, "test.wl")
	if err != nil {
		t.Fatal(err)
	}
	b := &parser.Builder{Source: src}
	root, err := b.OneToOne(tree)
	if err != nil {
		t.Fatal(err)
	}
	n := parser.PullUp(root, ast.RoleAssign)
	assign := n.(*ast.Root).Children[0].(*ast.Assign)
	if _, ok := assign.Value().(*ast.Apply); !ok {
		t.Errorf("lambda pulled up during assign pass: %T", assign.Value())
	}
	n = parser.PullUp(n, ast.RoleLambda)
	assign = n.(*ast.Root).Children[0].(*ast.Assign)
	if _, ok := assign.Value().(*ast.Lambda); !ok {
		t.Errorf("expected Lambda after lambda pass, got %T", assign.Value())
	}
}

func TestSpansSurvive(t *testing.T) {
	root := mustParse(t, "(def x 1)\n  (print x)")
	call := root.Children[1]
	span := call.NodeSpan()
	if span.StartLine != 2 || span.StartCol != 3 || span.File != "test.wl" {
		t.Errorf("unexpected span %+v", span)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		source string
		msg    string
	}{
		{"(a b", "end of input"},
		{"(a))", "too many closing"},
		{"(f ')", "' must be followed"},
		{"'", "' must be followed"},
		{"(a $)", "unrecognized character"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			se := mustFail(t, tt.source)
			if !strings.Contains(se.Message, tt.msg) {
				t.Errorf("message %q does not contain %q", se.Message, tt.msg)
			}
		})
	}
}

func TestMissingCloseReportsEndOfInput(t *testing.T) {
	se := mustFail(t, "(a b")
	if se.Offset != 4 {
		t.Errorf("offset = %d, want 4", se.Offset)
	}
}
