// Package parser turns a concrete syntax tree into the whispy AST: a
// one-to-one classification pass followed by structural rewrites.
package parser

import (
	"fmt"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/cst"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/lexer"
	"github.com/thomasrohde/whispy/pkg/value"
)

// Keywords maps each special-form word to the form it heads.
var Keywords = map[string]ast.Role{
	"def":    ast.RoleAssign,
	"define": ast.RoleAssign,
	"cond":   ast.RoleCondition,
	"if":     ast.RoleCondition,
	"lambda": ast.RoleLambda,
}

// QuoteName is the builtin the ' shorthand expands to.
const QuoteName = "quote"

// Builder converts trees for one source text. Source and Filename are used
// for error reporting.
type Builder struct {
	Source   string
	Filename string
}

// Parse tokenizes, nests and builds source into an AST.
func Parse(source, filename string) (*ast.Root, error) {
	tree, err := cst.Parse(source, filename)
	if err != nil {
		return nil, err
	}
	b := &Builder{Source: source, Filename: filename}
	return b.Build(tree)
}

// Build runs the one-to-one translation and then the rewrites in order:
// quote desugaring, then pull-up of Assign, Condition and Lambda.
func (b *Builder) Build(tree *cst.Node) (*ast.Root, error) {
	root, err := b.OneToOne(tree)
	if err != nil {
		return nil, err
	}
	var n ast.Node = root
	if n, err = b.DesugarQuotes(n); err != nil {
		return nil, err
	}
	for _, role := range []ast.Role{ast.RoleAssign, ast.RoleCondition, ast.RoleLambda} {
		n = PullUp(n, role)
	}
	return n.(*ast.Root), nil
}

// OneToOne translates every CST node into its AST counterpart.
func (b *Builder) OneToOne(tree *cst.Node) (*ast.Root, error) {
	n, err := b.Classify(tree)
	if err != nil {
		return nil, err
	}
	root, ok := n.(*ast.Root)
	if !ok {
		return nil, b.errorAt(tree.Span, "expected a root node")
	}
	return root, nil
}

// Classify maps one CST node (and its subtree) to an AST node. Checks run
// in fixed order: root, container, then leaves by token.
func (b *Builder) Classify(n *cst.Node) (ast.Node, error) {
	switch {
	case n.IsRoot():
		children, err := b.classifyAll(n.Children)
		if err != nil {
			return nil, err
		}
		return &ast.Root{Span: n.Span, Children: children}, nil
	case !n.IsLeaf():
		children, err := b.classifyAll(n.Children)
		if err != nil {
			return nil, err
		}
		return &ast.Apply{Span: n.Span, Children: children}, nil
	}

	tok := n.Token
	switch tok.Type {
	case lexer.TokString:
		return &ast.Literal{Span: n.Span, Value: value.NewString(tok.Value.(string))}, nil
	case lexer.TokBool:
		return &ast.Literal{Span: n.Span, Value: value.NewBool(tok.Value.(bool))}, nil
	case lexer.TokInt:
		return &ast.Literal{Span: n.Span, Value: value.NewInt(tok.Value.(int64))}, nil
	case lexer.TokFloat:
		return &ast.Literal{Span: n.Span, Value: value.NewFloat(tok.Value.(float64))}, nil
	}
	if n.IsOperator() {
		return &ast.Operator{Span: n.Span, Op: tok.Text}, nil
	}
	switch tok.Type {
	case lexer.TokQuote:
		return &ast.QuoteShorthand{Span: n.Span}, nil
	case lexer.TokSymbol:
		if role, ok := Keywords[tok.Text]; ok {
			return &ast.Keyword{Span: n.Span, Word: tok.Text, Role: role}, nil
		}
		return &ast.Symbol{Span: n.Span, Name: tok.Text}, nil
	}
	return nil, b.errorAt(n.Span, fmt.Sprintf("cannot classify %s token %q", tok.Type, tok.Text))
}

func (b *Builder) classifyAll(nodes []*cst.Node) ([]ast.Node, error) {
	out := make([]ast.Node, len(nodes))
	for i, c := range nodes {
		n, err := b.Classify(c)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// DesugarQuotes rewrites every ' X in a sibling sequence into (quote X).
// The quoted element is desugared first, so nested lists and repeated
// quotes expand inside out. A tree without shorthand comes back unchanged.
func (b *Builder) DesugarQuotes(n ast.Node) (ast.Node, error) {
	c, ok := n.(ast.Container)
	if !ok {
		return n, nil
	}
	children := c.Nodes()
	out := make([]ast.Node, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		child, err := b.DesugarQuotes(children[i])
		if err != nil {
			return nil, err
		}
		q, isQuote := child.(*ast.QuoteShorthand)
		if !isQuote {
			out = append(out, child)
			continue
		}
		if len(out) == 0 {
			return nil, b.errorAt(q.Span, "' must be followed by an expression")
		}
		quoted := out[len(out)-1]
		out[len(out)-1] = &ast.Apply{
			Span:     q.Span.To(quoted.NodeSpan()),
			Children: []ast.Node{&ast.Symbol{Span: q.Span, Name: QuoteName}, quoted},
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return c.Alike(out), nil
}

// PullUp replaces every Apply whose first child is a keyword of role with
// the dedicated node for that role, holding the remaining children.
func PullUp(n ast.Node, role ast.Role) ast.Node {
	c, ok := n.(ast.Container)
	if !ok {
		return n
	}
	children := c.Nodes()
	rewritten := make([]ast.Node, len(children))
	for i, child := range children {
		rewritten[i] = PullUp(child, role)
	}

	apply, isApply := n.(*ast.Apply)
	if !isApply || len(rewritten) == 0 {
		return c.Alike(rewritten)
	}
	kw, isKeyword := rewritten[0].(*ast.Keyword)
	if !isKeyword || kw.Role != role {
		return c.Alike(rewritten)
	}
	rest := rewritten[1:]
	switch role {
	case ast.RoleAssign:
		return &ast.Assign{Span: apply.Span, Keyword: kw.Word, Children: rest}
	case ast.RoleCondition:
		return &ast.Condition{Span: apply.Span, Keyword: kw.Word, Children: rest}
	default:
		return &ast.Lambda{Span: apply.Span, Children: rest}
	}
}

func (b *Builder) errorAt(span ast.Span, msg string) error {
	filename := span.File
	if filename == "" {
		filename = b.Filename
	}
	return diagnostics.NewSyntaxError(b.Source, filename, span.Offset, msg)
}
