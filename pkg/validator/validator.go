// Package validator implements static form checks of whispy programs.
package validator

import (
	"fmt"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/parser"
)

type validator struct {
	diags []diagnostics.Diagnostic
}

// Validate checks the shape of every special form in root and returns one
// E_FORM diagnostic per problem, in source order. Quoted data is skipped.
func Validate(root *ast.Root) []diagnostics.Diagnostic {
	v := &validator{}
	for _, n := range root.Children {
		v.validateNode(n)
	}
	return v.diags
}

func (v *validator) addDiag(msg string, n ast.Node, hint string) {
	span := n.NodeSpan()
	v.diags = append(v.diags, diagnostics.MakeDiag(diagnostics.EForm, msg, &span, hint))
}

func (v *validator) validateNode(n ast.Node) {
	switch node := n.(type) {
	case *ast.Keyword:
		v.addDiag(fmt.Sprintf("%s may only appear at the head of a form", node.Word), node,
			fmt.Sprintf("write (%s ...)", node.Word))
		return
	case *ast.Apply:
		if sym, ok := node.Callee().(*ast.Symbol); ok && sym.Name == parser.QuoteName {
			if len(node.Children) != 2 {
				v.addDiag("quote takes exactly one argument", node, "")
			}
			return
		}
	case *ast.Assign:
		v.validateAssign(node)
	case *ast.Condition:
		v.validateCondition(node)
	case *ast.Lambda:
		v.validateLambda(node)
	}
	if c, ok := n.(ast.Container); ok {
		for _, child := range c.Nodes() {
			v.validateNode(child)
		}
	}
}

func (v *validator) validateAssign(node *ast.Assign) {
	if len(node.Children) != 2 {
		v.addDiag(fmt.Sprintf("%s expects a target and a value, got %d", node.Keyword, len(node.Children)), node,
			fmt.Sprintf("(%s name value) or (%s (name param...) body)", node.Keyword, node.Keyword))
		return
	}
	switch target := node.Target().(type) {
	case *ast.Symbol:
	case *ast.Apply:
		if len(target.Children) == 0 {
			v.addDiag(fmt.Sprintf("%s target list needs a function name", node.Keyword), target, "")
			return
		}
		v.checkSymbols(target.Children, "function name and parameters")
	default:
		v.addDiag(fmt.Sprintf("%s target must be a symbol or (name param...), got %s", node.Keyword, target.Kind()), target, "")
	}
}

func (v *validator) validateCondition(node *ast.Condition) {
	for _, c := range node.Children {
		clause, ok := c.(*ast.Apply)
		if !ok || len(clause.Children) != 2 {
			v.addDiag(fmt.Sprintf("%s clause must be (predicate result)", node.Keyword), c, "")
		}
	}
}

func (v *validator) validateLambda(node *ast.Lambda) {
	if len(node.Children) != 2 {
		v.addDiag(fmt.Sprintf("lambda expects a parameter list and a body, got %d", len(node.Children)), node,
			"(lambda (param...) body)")
		return
	}
	params, ok := node.Params().(*ast.Apply)
	if !ok {
		v.addDiag(fmt.Sprintf("lambda parameters must be a list, got %s", node.Params().Kind()), node.Params(), "")
		return
	}
	v.checkSymbols(params.Children, "parameters")
}

// checkSymbols reports non-symbols in a parameter list. Repeated names are
// allowed; binding is positional and the last one wins.
func (v *validator) checkSymbols(nodes []ast.Node, what string) {
	for _, n := range nodes {
		if _, ok := n.(*ast.Symbol); !ok {
			v.addDiag(fmt.Sprintf("%s must be symbols, got %s", what, n.Kind()), n, "")
		}
	}
}
