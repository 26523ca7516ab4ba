// Package cst builds the concrete syntax tree: the parenthesis structure of a
// token stream, before any classification.
package cst

import (
	"fmt"
	"strings"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/lexer"
)

// Node is either a leaf holding exactly one token or a container of child
// nodes. The root container holds the top-level expressions of a source.
type Node struct {
	Token    lexer.Token
	Children []*Node
	Span     ast.Span

	root bool
	leaf bool
}

// Leaf wraps a single token.
func Leaf(tok lexer.Token) *Node {
	return &Node{Token: tok, Span: tok.Span, leaf: true}
}

// List creates a non-root container.
func List(span ast.Span, children ...*Node) *Node {
	return &Node{Children: children, Span: span}
}

// IsRoot reports whether n is the top of a tree.
func (n *Node) IsRoot() bool { return n.root }

// IsLeaf reports whether n wraps a token rather than child nodes.
func (n *Node) IsLeaf() bool { return n.leaf }

// IsOperator reports whether n is a leaf holding an operator token.
func (n *Node) IsOperator() bool { return n.leaf && n.Token.Type == lexer.TokOperator }

// Equal compares two trees structurally by token type and value. A root is
// never equal to a non-root container with the same children.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.root != o.root || n.leaf != o.leaf {
		return false
	}
	if n.leaf {
		return n.Token.Type == o.Token.Type && n.Token.Value == o.Token.Value
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the tree back to source using token text.
func (n *Node) String() string {
	if n.leaf {
		return n.Token.Text
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	if n.root {
		return strings.Join(parts, "\n")
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type frame struct {
	open     lexer.Token
	children []*Node
}

// Build nests a token stream into a tree. source and filename are used only
// for error reporting.
func Build(tokens []lexer.Token, source, filename string) (*Node, error) {
	stack := []frame{{}}
	var last lexer.Token

	for _, tok := range tokens {
		last = tok
		switch tok.Type {
		case lexer.TokEOF:
			continue
		case lexer.TokOpen:
			stack = append(stack, frame{open: tok})
		case lexer.TokClose:
			if len(stack) == 1 {
				return nil, diagnostics.NewSyntaxError(source, filename, tok.Offset, "too many closing parentheses")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			node := List(top.open.Span.To(tok.Span), top.children...)
			parent := &stack[len(stack)-1]
			parent.children = append(parent.children, node)
		default:
			parent := &stack[len(stack)-1]
			parent.children = append(parent.children, Leaf(tok))
		}
	}

	if open := len(stack) - 1; open > 0 {
		offset := len(source)
		if last.Type == lexer.TokEOF {
			offset = last.Offset
		}
		return nil, diagnostics.NewSyntaxError(source, filename, offset,
			fmt.Sprintf("unexpected end of input: %d unclosed opening %s", open, plural(open, "parenthesis", "parentheses")))
	}

	root := &Node{Children: stack[0].children, root: true}
	if len(tokens) > 0 {
		root.Span = tokens[0].Span.To(last.Span)
	} else {
		root.Span = ast.Span{File: filename, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
	}
	return root, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Parse tokenizes source and builds its tree.
func Parse(source, filename string) (*Node, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	return Build(tokens, source, filename)
}
