package ast_test

import (
	"testing"

	"github.com/thomasrohde/whispy/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.Root{},
		&ast.Apply{},
		&ast.Assign{},
		&ast.Condition{},
		&ast.Lambda{},
		&ast.Symbol{Name: "x"},
		&ast.Literal{},
		&ast.Operator{Op: "+"},
		&ast.QuoteShorthand{},
		&ast.Keyword{Word: "def"},
	}

	expected := []string{
		"Root", "Apply", "Assign", "Condition", "Lambda",
		"Symbol", "Literal", "Operator", "QuoteShorthand", "Keyword",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestAlikeKeepsVariant(t *testing.T) {
	span := ast.Span{StartLine: 2, StartCol: 3}
	assign := &ast.Assign{Span: span, Keyword: "define"}
	got := assign.Alike([]ast.Node{&ast.Symbol{Name: "x"}})

	a, ok := got.(*ast.Assign)
	if !ok {
		t.Fatalf("expected *ast.Assign, got %T", got)
	}
	if a.Keyword != "define" || a.Span != span {
		t.Errorf("Alike lost fields: %+v", a)
	}
	if len(a.Children) != 1 {
		t.Errorf("got %d children, want 1", len(a.Children))
	}
}

func TestIsLeaf(t *testing.T) {
	if !ast.IsLeaf(&ast.Symbol{Name: "x"}) {
		t.Error("symbol should be a leaf")
	}
	if !ast.IsLeaf(&ast.Apply{}) {
		t.Error("empty apply should be a leaf")
	}
	if ast.IsLeaf(&ast.Apply{Children: []ast.Node{&ast.Symbol{Name: "f"}}}) {
		t.Error("non-empty apply should not be a leaf")
	}
}

func TestWalkVisitsDepthFirst(t *testing.T) {
	tree := &ast.Root{Children: []ast.Node{
		&ast.Apply{Children: []ast.Node{
			&ast.Symbol{Name: "f"},
			&ast.Symbol{Name: "a"},
		}},
		&ast.Symbol{Name: "b"},
	}}

	var names []string
	ast.Walk(tree, func(n ast.Node) bool {
		if s, ok := n.(*ast.Symbol); ok {
			names = append(names, s.Name)
		}
		return true
	})

	want := []string{"f", "a", "b"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("got %v, want %v", names, want)
		}
	}
}

func TestSpanTo(t *testing.T) {
	start := ast.Span{File: "a.wl", Offset: 4, StartLine: 1, StartCol: 5, EndLine: 1, EndCol: 6}
	end := ast.Span{File: "a.wl", Offset: 20, StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 2}
	got := start.To(end)
	if got.StartLine != 1 || got.StartCol != 5 || got.EndLine != 3 || got.EndCol != 2 || got.Offset != 4 {
		t.Errorf("unexpected span %+v", got)
	}
}
